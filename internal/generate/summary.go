package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/joss/promptforge/internal/domain"
)

const summarySystemPrompt = `You describe edits between two revisions of a prompt.
Summarize what changed in one short sentence (max 80 characters).
Respond with the sentence only.`

// Summary asks the model to describe the delta between the previous and the
// new prompt text. Failures fall back to the fixed manual-update summary so
// a save never fails on a summary call.
func (s *Service) Summary(ctx context.Context, previous, current string) string {
	prompt := fmt.Sprintf("PREVIOUS:\n%s\n\nCURRENT:\n%s", previous, current)
	text, err := s.call(ctx, domain.ActionSummary, newRequest(summarySystemPrompt, prompt, 120))
	if err != nil {
		s.log.Warn("summary_generation_failed", nil, err)
		return domain.SummaryManual
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		return domain.SummaryManual
	}
	if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
		summary = strings.TrimSpace(summary[:idx])
	}
	return summary
}
