// Package render provides output formatting for terminal consumption.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/joss/promptforge/internal/analytics"
	"github.com/joss/promptforge/internal/domain"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Sessions formats the session collection, newest first. The active
// session is marked.
func (r *Renderer) Sessions(sessions []*domain.Session, activeID string) string {
	if len(sessions) == 0 {
		return "No sessions found"
	}

	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Sessions\n"))
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}

	for _, s := range sessions {
		r.formatSession(&sb, s, s.ID == activeID)
	}

	return sb.String()
}

func (r *Renderer) formatSession(sb *strings.Builder, s *domain.Session, active bool) {
	name := s.Name
	if name == "" {
		name = "(unnamed)"
	}

	marker := " "
	if active {
		marker = color.GreenString("▸")
	}

	latest := s.Latest()
	fw := ""
	if latest != nil {
		fw = latest.FrameworkAcronym
	}

	if r.pretty {
		fmt.Fprintf(sb, "%s %s %s\n", marker, color.HiBlackString(s.CreatedAt.Format("2006-01-02 15:04")), name)
		fmt.Fprintf(sb, "    %s  %d version(s)  %s\n",
			s.ID, len(s.Versions), color.HiBlackString(fw))
	} else {
		fmt.Fprintf(sb, "%s  %s  versions=%d  framework=%s\n", s.ID, name, len(s.Versions), fw)
	}
}

// SessionDetail formats one session's full version history.
func (r *Renderer) SessionDetail(s *domain.Session) string {
	var sb strings.Builder

	name := s.Name
	if name == "" {
		name = "(unnamed)"
	}

	if r.pretty {
		sb.WriteString(color.CyanString(name) + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
		fmt.Fprintf(&sb, "Base idea: %s\n\n", Truncate(s.BaseIdea, 70))
	} else {
		fmt.Fprintf(&sb, "%s (%s)\n", name, s.ID)
	}

	count := len(s.Versions)
	for i, v := range s.Versions {
		r.formatVersion(&sb, v, i, count)
	}

	return sb.String()
}

func (r *Renderer) formatVersion(sb *strings.Builder, v *domain.Version, index, count int) {
	// Display-only distance from the end of the history: v1 is the
	// oldest, vN the latest.
	ordinal := count - index

	marker := "○"
	if index == 0 {
		marker = color.GreenString("●")
	}

	if r.pretty {
		fmt.Fprintf(sb, "%s v%d %s %s\n", marker, ordinal,
			color.HiBlackString(v.CreatedAt.Format("2006-01-02 15:04")), v.ChangeSummary)
		fmt.Fprintf(sb, "    %s  [%s]  %s\n", v.ID, v.FrameworkAcronym, Truncate(v.OptimizedPrompt, 60))
	} else {
		fmt.Fprintf(sb, "v%d %s [%s] %s\n", ordinal, v.ID, v.FrameworkAcronym, v.ChangeSummary)
	}
}

// Stats formats the usage analytics summary with a per-model breakdown.
func (r *Renderer) Stats(stats analytics.Stats, perModel []analytics.ModelStats) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Usage\n"))
		sb.WriteString(strings.Repeat("─", 40) + "\n")
		fmt.Fprintf(&sb, "  Calls:       %d\n", stats.Calls)
		fmt.Fprintf(&sb, "  Input:       %s\n", domain.FormatTokens(stats.TotalInput))
		fmt.Fprintf(&sb, "  Output:      %s\n", domain.FormatTokens(stats.TotalOutput))
		if stats.TotalThinking > 0 {
			fmt.Fprintf(&sb, "  Thinking:    %s\n", domain.FormatTokens(stats.TotalThinking))
		}
		fmt.Fprintf(&sb, "  Cached:      %s\n", domain.FormatTokens(stats.TotalCached))
		fmt.Fprintf(&sb, "  Cache hits:  %.1f%%\n", stats.CacheHitRate)
		fmt.Fprintf(&sb, "  Est. cost:   %s\n", domain.FormatCost(stats.TotalCost))
	} else {
		fmt.Fprintf(&sb, "calls=%d input=%d output=%d cached=%d hit_rate=%.1f%% cost=%s\n",
			stats.Calls, stats.TotalInput, stats.TotalOutput, stats.TotalCached,
			stats.CacheHitRate, domain.FormatCost(stats.TotalCost))
	}

	if len(perModel) > 0 {
		if r.pretty {
			sb.WriteString("\n" + color.CyanString("By model\n"))
		}
		for _, ms := range perModel {
			if r.pretty {
				fmt.Fprintf(&sb, "  %-28s %4d calls  in=%s out=%s  %s\n",
					ms.Model, ms.Calls,
					domain.FormatTokens(ms.InputTokens), domain.FormatTokens(ms.OutputTokens),
					domain.FormatCost(ms.Cost))
			} else {
				fmt.Fprintf(&sb, "model=%s calls=%d input=%d output=%d cost=%s\n",
					ms.Model, ms.Calls, ms.InputTokens, ms.OutputTokens, domain.FormatCost(ms.Cost))
			}
		}
	}

	return sb.String()
}

// Recent formats the trailing usage records ascending by time.
func (r *Renderer) Recent(records []domain.UsageRecord) string {
	if len(records) == 0 {
		return "No usage recorded"
	}

	var sb strings.Builder
	for _, rec := range records {
		timeStr := rec.Timestamp.Format("01-02 15:04")
		if r.pretty {
			fmt.Fprintf(&sb, "%s %-9s %s  in=%s out=%s\n",
				color.HiBlackString(timeStr), rec.ActionType, rec.Model,
				domain.FormatTokens(rec.PromptTokens), domain.FormatTokens(rec.CandidatesTokens))
		} else {
			fmt.Fprintf(&sb, "[%s] %s %s in=%d out=%d total=%d\n",
				timeStr, rec.ActionType, rec.Model,
				rec.PromptTokens, rec.CandidatesTokens, rec.TotalTokens)
		}
	}
	return sb.String()
}

// Notification formats one notification line with a severity icon.
func (r *Renderer) Notification(message, severity string) string {
	icon := SeverityIcon(severity)
	if r.pretty {
		switch severity {
		case "success":
			icon = color.GreenString(icon)
		case "error":
			icon = color.RedString(icon)
		case "warning":
			icon = color.YellowString(icon)
		}
	}
	return fmt.Sprintf("%s %s", icon, message)
}
