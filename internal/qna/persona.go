package qna

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jinlee/portfolio-server-go/internal/content"
)

// PersonaProfile is the grounding document for the Q&A assistant: ordered
// frontmatter metadata plus free-text notes. Loaded per request and never
// mutated by conversation turns.
type PersonaProfile struct {
	Metadata []MetadataField
	Notes    string
}

type MetadataField struct {
	Key   string
	Value string
}

// LoadPersona reads the profile document. Metadata keeps file order so the
// rendered system prompt is stable across calls. Values are JSON-encoded,
// which handles scalars and lists uniformly.
func LoadPersona(path string) (*PersonaProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	meta, body := content.SplitFrontmatter(string(raw))
	profile := &PersonaProfile{Notes: strings.TrimSpace(body)}
	if meta == "" {
		return profile, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(meta), &node); err != nil {
		return nil, fmt.Errorf("parse persona metadata: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return profile, nil
	}

	mapping := node.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode, valueNode := mapping.Content[i], mapping.Content[i+1]

		var value any
		if err := valueNode.Decode(&value); err != nil {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		profile.Metadata = append(profile.Metadata, MetadataField{
			Key:   keyNode.Value,
			Value: string(encoded),
		})
	}

	return profile, nil
}
