package qna

import (
	"fmt"
	"strings"
)

// Message roles accepted over the chat API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FallbackAnswer is the fixed phrase returned whenever the assistant has
// nothing grounded to say. Its wording appears verbatim in the system
// prompt, so the model and the gateway degrade to the same sentence.
const FallbackAnswer = "I don't know based on the provided info."

const systemPromptFormat = `You are Jin Lee's portfolio Q&A assistant.
Answer ONLY using the information provided below.
If the answer is not in the provided information, say %q.
Keep responses concise, helpful, and conversational.

[Profile Metadata]
%s

[Profile Notes]
%s
`

// Message is one role-tagged conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemPrompt renders the persona into the grounding instruction: metadata
// as key: value lines in file order, followed by the free-text notes.
func SystemPrompt(profile *PersonaProfile) string {
	lines := make([]string, 0, len(profile.Metadata))
	for _, field := range profile.Metadata {
		lines = append(lines, fmt.Sprintf("%s: %s", field.Key, field.Value))
	}
	return fmt.Sprintf(systemPromptFormat, FallbackAnswer, strings.Join(lines, "\n"), profile.Notes)
}

// BuildPrompt assembles the ordered message sequence: system grounding
// first, history in original order, the new user message last. History is
// expected to be pre-truncated by the caller.
func BuildPrompt(profile *PersonaProfile, history []Message, message string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt(profile)})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})
	return messages
}

// TruncateHistory keeps the last limit turns to bound prompt size.
func TruncateHistory(history []Message, limit int) []Message {
	if limit <= 0 {
		return nil
	}
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
