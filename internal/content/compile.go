package content

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Compiler turns raw Markdown bodies into rendered HTML. GFM extensions
// cover the extended dialect the posts use (tables, strikethrough, task
// lists, autolinks). Compilation is a pure transformation.
type Compiler struct {
	md goldmark.Markdown
}

func NewCompiler() *Compiler {
	return &Compiler{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

func (c *Compiler) Compile(body string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("compile markdown: %w", err)
	}
	return buf.String(), nil
}
