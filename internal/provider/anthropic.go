// Package provider implements streaming HTTP clients for the generation
// service backends.
package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/joss/promptforge/pkg/llm"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

type Anthropic struct {
	apiKey  string
	baseURL string
	client  HTTPClient
}

func NewAnthropic(apiKey, baseURL string) *Anthropic {
	return NewAnthropicWithClient(apiKey, baseURL, &http.Client{})
}

func NewAnthropicWithClient(apiKey, baseURL string, client HTTPClient) *Anthropic {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if baseURL == "" {
		baseURL = anthropicAPIURL
	} else {
		if baseURL[len(baseURL)-1] == '/' {
			baseURL = baseURL[:len(baseURL)-1]
		}
		if !strings.HasSuffix(baseURL, "/messages") {
			baseURL = baseURL + "/messages"
		}
	}
	return &Anthropic{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

func (a *Anthropic) ID() string   { return "anthropic" }
func (a *Anthropic) Name() string { return "Anthropic" }

func (a *Anthropic) Models() []llm.Model {
	return []llm.Model{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", ContextSize: 200000, InputCost: 3, OutputCost: 15},
		{ID: "claude-opus-4-20250514", Name: "Claude Opus 4", ContextSize: 200000, InputCost: 15, OutputCost: 75},
		{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", ContextSize: 200000, InputCost: 0.8, OutputCost: 4},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Stream      bool               `json:"stream"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicStreamEvent struct {
	Type  string          `json:"type"`
	Delta json.RawMessage `json:"delta,omitempty"`
	Usage *anthropicUsage `json:"usage,omitempty"`
	Message *struct {
		Usage *anthropicUsage `json:"usage,omitempty"`
	} `json:"message,omitempty"`
}

type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}

func (a *Anthropic) Chat(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
		Stream:      true,
		Temperature: req.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic API error %d: %s", resp.StatusCode, string(body))
	}

	events := make(chan llm.StreamEvent, 100)
	go a.streamResponse(resp.Body, events)
	return events, nil
}

func (a *Anthropic) streamResponse(body io.ReadCloser, events chan<- llm.StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	// Input tokens arrive on message_start, output tokens on message_delta;
	// accumulate and emit a single usage event before done.
	var usage llm.Usage
	haveUsage := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line == "event: ping" {
			continue
		}

		if len(line) > 6 && line[:6] == "data: " {
			data := line[6:]

			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue
			}

			switch event.Type {
			case "message_start":
				if event.Message != nil && event.Message.Usage != nil {
					usage.InputTokens = event.Message.Usage.InputTokens
					usage.CachedTokens = event.Message.Usage.CacheReadInputTokens
					haveUsage = true
				}

			case "content_block_delta":
				var delta struct {
					Type     string `json:"type"`
					Text     string `json:"text"`
					Thinking string `json:"thinking"`
				}
				json.Unmarshal(event.Delta, &delta)

				switch delta.Type {
				case "text_delta":
					if delta.Text != "" {
						events <- llm.StreamEvent{Type: llm.EventText, Content: delta.Text}
					}
				case "thinking_delta":
					if delta.Thinking != "" {
						events <- llm.StreamEvent{Type: llm.EventThinking, Content: delta.Thinking}
					}
				}

			case "message_delta":
				if event.Usage != nil {
					usage.OutputTokens = event.Usage.OutputTokens
					haveUsage = true
				}

			case "message_stop":
				if haveUsage {
					u := usage
					events <- llm.StreamEvent{Type: llm.EventUsage, Usage: &u}
				}
				events <- llm.StreamEvent{Type: llm.EventDone, Done: true}
				return
			}
		}
	}

	if haveUsage {
		u := usage
		events <- llm.StreamEvent{Type: llm.EventUsage, Usage: &u}
	}
	events <- llm.StreamEvent{Type: llm.EventDone, Done: true}
}

var _ llm.Provider = (*Anthropic)(nil)
