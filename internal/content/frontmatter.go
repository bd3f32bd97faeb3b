package content

import "strings"

const frontmatterDelimiter = "---"

// SplitFrontmatter separates the YAML preamble from the body text. A file
// without a leading delimiter has no frontmatter; the whole input is body.
func SplitFrontmatter(raw string) (meta, body string) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return "", normalized
	}

	rest := normalized[len(frontmatterDelimiter)+1:]
	if end := strings.Index(rest, "\n"+frontmatterDelimiter+"\n"); end >= 0 {
		meta = rest[:end]
		body = rest[end+len(frontmatterDelimiter)+2:]
		return meta, body
	}
	if strings.HasSuffix(rest, "\n"+frontmatterDelimiter) {
		return strings.TrimSuffix(rest, "\n"+frontmatterDelimiter), ""
	}

	// Unterminated frontmatter block; treat everything as body.
	return "", normalized
}
