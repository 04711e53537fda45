// Package llm abstracts text generation behind a small client interface so
// the conversation pipelines never depend on a concrete provider.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// Response carries the generated text.
type Response struct {
	Text       string
	StopReason string
}

// Client produces a completion for a request.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
