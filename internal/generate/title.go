package generate

import (
	"context"
	"strings"

	"github.com/joss/promptforge/internal/domain"
)

const titleSystemPrompt = `You name prompt-drafting sessions.
Generate a short title (max 50 characters) capturing the essence of the idea below.
Respond with the title only. No quotes, no markdown, no trailing punctuation.`

// fallbackTitleLimit is the truncation point for locally derived titles.
const fallbackTitleLimit = 30

// Title asks the model to name a session after its idea text. On any
// provider failure or empty response the local fallback is returned
// instead; titling never blocks a save.
func (s *Service) Title(ctx context.Context, idea string) string {
	text, err := s.call(ctx, domain.ActionTitle, newRequest(titleSystemPrompt, idea, 80))
	if err != nil {
		s.log.Warn("title_generation_failed", nil, err)
		return FallbackTitle(idea)
	}

	title := sanitizeTitle(text)
	if title == "" {
		return FallbackTitle(idea)
	}
	return title
}

// FallbackTitle derives a title from the idea text without a model call:
// the first 30 characters, with an ellipsis only when text was cut off.
// Lengths count runes so multibyte ideas are never cut mid-character.
func FallbackTitle(idea string) string {
	runes := []rune(strings.TrimSpace(idea))
	if len(runes) <= fallbackTitleLimit {
		return string(runes)
	}
	return string(runes[:fallbackTitleLimit]) + "..."
}

func sanitizeTitle(text string) string {
	title := strings.TrimSpace(text)
	// Models occasionally quote the title despite instructions.
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
