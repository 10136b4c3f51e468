// Package generate wraps the provider stream behind the three generation
// calls the editor makes: prompt optimization, session titles, and change
// summaries. Every successful call reports its token usage to the ingest
// sink before returning.
package generate

import (
	"context"
	"time"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/logging"
	"github.com/joss/promptforge/internal/metrics"
	"github.com/joss/promptforge/pkg/llm"
)

// UsageSink receives one record per completed generation call.
type UsageSink func(domain.UsageRecord)

// Service issues generation calls against a single provider/model pair.
type Service struct {
	provider llm.Provider
	model    string
	ingest   UsageSink
	log      *logging.Logger
	now      func() time.Time
}

func NewService(provider llm.Provider, model string, ingest UsageSink) *Service {
	return &Service{
		provider: provider,
		model:    model,
		ingest:   ingest,
		log:      logging.New("generate"),
		now:      time.Now,
	}
}

// Model returns the model id this service generates with.
func (s *Service) Model() string { return s.model }

func newRequest(system, prompt string, maxTokens int) *llm.ChatRequest {
	return &llm.ChatRequest{
		SystemPrompt: system,
		Prompt:       prompt,
		MaxTokens:    maxTokens,
	}
}

// call runs one request to completion and reports usage under actionType.
func (s *Service) call(ctx context.Context, actionType string, req *llm.ChatRequest) (string, error) {
	req.Model = s.model

	start := s.now()
	events, err := s.provider.Chat(ctx, req)
	if err != nil {
		metrics.Global().RecordGeneration(false, s.now().Sub(start).Milliseconds())
		return "", err
	}

	text, usage, err := llm.Collect(events)
	if err != nil {
		metrics.Global().RecordGeneration(false, s.now().Sub(start).Milliseconds())
		return "", err
	}
	metrics.Global().RecordGeneration(true, s.now().Sub(start).Milliseconds())

	if usage != nil && s.ingest != nil {
		s.ingest(domain.UsageRecord{
			Model:               s.model,
			ActionType:          actionType,
			PromptTokens:        usage.InputTokens,
			CandidatesTokens:    usage.OutputTokens,
			ThinkingTokens:      usage.ThinkingTokens,
			CachedContentTokens: usage.CachedTokens,
			TotalTokens:         usage.Total(),
			Timestamp:           s.now(),
		})
	}

	s.log.TimedEvent("generation_complete", start, map[string]any{
		"action": actionType,
		"model":  s.model,
	})
	return text, nil
}
