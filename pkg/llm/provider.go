// Package llm defines the provider abstraction for the external generation
// service. Providers stream text plus a final usage report; the core only
// ever sends a system prompt and one user message.
package llm

import (
	"context"
	"strings"
)

// EventType classifies streamed provider events.
type EventType string

const (
	EventText     EventType = "text"
	EventThinking EventType = "thinking"
	EventUsage    EventType = "usage"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// Usage is the token accounting a provider reports for one call.
type Usage struct {
	InputTokens    int
	OutputTokens   int
	ThinkingTokens int
	CachedTokens   int
}

// Total returns the combined token count of the call.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens + u.ThinkingTokens + u.CachedTokens
}

// StreamEvent is one streamed response fragment.
type StreamEvent struct {
	Type    EventType
	Content string
	Usage   *Usage
	Err     error
	Done    bool
}

// ChatRequest represents a request to the LLM
type ChatRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

// Model describes a generation model a provider offers.
type Model struct {
	ID          string
	Name        string
	ContextSize int
	InputCost   float64 // $ per million input tokens
	OutputCost  float64 // $ per million output tokens
}

// Provider is the interface all LLM providers must implement
type Provider interface {
	ID() string
	Name() string
	Models() []Model

	// Chat sends the request and returns a streaming response
	Chat(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)
}

// Collect drains a stream into the full response text and final usage.
// The first error event aborts collection.
func Collect(events <-chan StreamEvent) (string, *Usage, error) {
	var sb strings.Builder
	var usage *Usage
	for event := range events {
		switch event.Type {
		case EventText:
			sb.WriteString(event.Content)
		case EventUsage:
			usage = event.Usage
		case EventError:
			return sb.String(), usage, event.Err
		}
	}
	return sb.String(), usage, nil
}

// ProviderRegistry holds all available providers
type ProviderRegistry struct {
	providers map[string]Provider
}

func NewRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

func (r *ProviderRegistry) Register(p Provider) {
	r.providers[p.ID()] = p
}

func (r *ProviderRegistry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

func (r *ProviderRegistry) List() []Provider {
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}
