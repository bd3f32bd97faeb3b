package qna

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const aboutFixture = `---
name: Jin Lee
role: Software Engineer
languages:
  - English
  - Korean
---

I build web services and write about them.
`

func writeAboutFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "about.md")
	if err := os.WriteFile(path, []byte(aboutFixture), 0644); err != nil {
		t.Fatalf("write about file: %v", err)
	}
	return path
}

func TestLoadPersonaKeepsMetadataOrder(t *testing.T) {
	profile, err := LoadPersona(writeAboutFile(t))
	if err != nil {
		t.Fatalf("LoadPersona failed: %v", err)
	}

	if len(profile.Metadata) != 3 {
		t.Fatalf("expected 3 metadata fields, got %d", len(profile.Metadata))
	}
	keys := []string{profile.Metadata[0].Key, profile.Metadata[1].Key, profile.Metadata[2].Key}
	if keys[0] != "name" || keys[1] != "role" || keys[2] != "languages" {
		t.Errorf("metadata order not preserved: %v", keys)
	}
	if profile.Metadata[0].Value != `"Jin Lee"` {
		t.Errorf("expected JSON-encoded value, got %s", profile.Metadata[0].Value)
	}
	if profile.Metadata[2].Value != `["English","Korean"]` {
		t.Errorf("expected JSON-encoded list, got %s", profile.Metadata[2].Value)
	}
	if profile.Notes != "I build web services and write about them." {
		t.Errorf("unexpected notes: %q", profile.Notes)
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	if _, err := LoadPersona(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Fatal("expected an error for a missing persona file")
	}
}

func TestSystemPromptGroundsTheModel(t *testing.T) {
	profile, err := LoadPersona(writeAboutFile(t))
	if err != nil {
		t.Fatalf("LoadPersona failed: %v", err)
	}

	prompt := SystemPrompt(profile)

	if !strings.Contains(prompt, `say "I don't know based on the provided info."`) {
		t.Error("prompt must instruct the model to use the fixed fallback phrase")
	}
	if !strings.Contains(prompt, "Answer ONLY using the information provided below.") {
		t.Error("prompt must restrict answers to supplied information")
	}
	if !strings.Contains(prompt, `name: "Jin Lee"`) {
		t.Errorf("prompt missing metadata line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "I build web services") {
		t.Error("prompt missing persona notes")
	}
	if strings.Index(prompt, "[Profile Metadata]") > strings.Index(prompt, "[Profile Notes]") {
		t.Error("metadata section must precede notes")
	}
}

func TestBuildPromptOrdering(t *testing.T) {
	profile := &PersonaProfile{Notes: "notes"}
	history := []Message{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
	}

	messages := BuildPrompt(profile, history, "second question")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != RoleSystem {
		t.Errorf("expected system message first, got %q", messages[0].Role)
	}
	if messages[1].Content != "first question" || messages[2].Content != "first answer" {
		t.Error("history order not preserved")
	}
	if messages[3].Role != RoleUser || messages[3].Content != "second question" {
		t.Errorf("expected new user message last, got %+v", messages[3])
	}
}

func TestTruncateHistory(t *testing.T) {
	history := make([]Message, 10)
	for i := range history {
		history[i] = Message{Role: RoleUser, Content: string(rune('a' + i))}
	}

	truncated := TruncateHistory(history, 6)
	if len(truncated) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(truncated))
	}
	if truncated[0].Content != "e" || truncated[5].Content != "j" {
		t.Errorf("expected the last 6 turns, got %v", truncated)
	}

	if got := TruncateHistory(history[:3], 6); len(got) != 3 {
		t.Errorf("short history must pass through, got %d", len(got))
	}
	if got := TruncateHistory(history, 0); got != nil {
		t.Errorf("zero limit must drop history, got %v", got)
	}
}
