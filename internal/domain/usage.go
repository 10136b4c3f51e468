package domain

import (
	"fmt"
	"time"
)

// UsageRecord is one immutable log entry describing token consumption of a
// single generation call. Records are append-only; the analytics aggregator
// never mutates one after ingestion.
type UsageRecord struct {
	Model               string    `json:"model"`
	ActionType          string    `json:"actionType"`
	PromptTokens        int       `json:"promptTokens"`
	CandidatesTokens    int       `json:"candidatesTokens"`
	ThinkingTokens      int       `json:"thinkingTokens,omitempty"`
	CachedContentTokens int       `json:"cachedContentTokens,omitempty"`
	TotalTokens         int       `json:"totalTokens"`
	Timestamp           time.Time `json:"timestamp"`
}

// Action types stamped on usage records by the generation call sites.
const (
	ActionOptimize = "optimize"
	ActionTitle    = "title"
	ActionSummary  = "summary"
)

// FormatCost returns a human-readable cost string.
func FormatCost(cost float64) string {
	if cost == 0 {
		return "$0.00"
	}
	if cost < 0.01 {
		return fmt.Sprintf("$%.4f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatTokens returns a human-readable token count.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}
