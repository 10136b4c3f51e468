package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/joss/promptforge/internal/domain"
)

const optimizeSystemPrompt = `You are an expert prompt engineer.
Rewrite the user's rough idea into a polished prompt structured with the %s framework (%s).
Cover each component: %s.
Respond with the optimized prompt only, no commentary.`

// Optimize rewrites a rough idea into a framework-structured prompt.
// Unlike titles and summaries there is no silent fallback: the caller
// surfaces the error to the user.
func (s *Service) Optimize(ctx context.Context, idea, useCase, frameworkAcronym string) (string, error) {
	fw := domain.FindFramework(frameworkAcronym)
	if fw == nil {
		return "", fmt.Errorf("unknown framework %q", frameworkAcronym)
	}

	system := fmt.Sprintf(optimizeSystemPrompt, fw.Acronym, fw.Name, strings.Join(fw.Components, ", "))
	prompt := idea
	if useCase != "" {
		prompt = fmt.Sprintf("IDEA:\n%s\n\nINTENDED USE:\n%s", idea, useCase)
	}

	text, err := s.call(ctx, domain.ActionOptimize, newRequest(system, prompt, 2048))
	if err != nil {
		return "", fmt.Errorf("optimize prompt: %w", err)
	}

	result := strings.TrimSpace(text)
	if result == "" {
		return "", fmt.Errorf("optimize prompt: model returned empty response")
	}
	return result, nil
}
