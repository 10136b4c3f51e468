package analytics

import (
	"sort"
	"strings"
)

// Rate is a pricing pair in dollars per million tokens.
type Rate struct {
	Input  float64
	Output float64
}

// pricing maps model-id fragments to rates. Lookup scans keys in sorted
// order and takes the first fragment contained in the model id, so more
// specific fragments must sort before the generic ones they overlap
// ("4o-mini" before "gpt-4o").
var pricing = map[string]Rate{
	"4o-mini":        {Input: 0.15, Output: 0.6},
	"flash":          {Input: 0.075, Output: 0.3},
	"gemini-2.5-pro": {Input: 1.25, Output: 10},
	"gpt-4o":         {Input: 2.5, Output: 10},
	"haiku":          {Input: 0.8, Output: 4},
	"opus":           {Input: 15, Output: 75},
	"sonnet":         {Input: 3, Output: 15},
}

// defaultRate covers models absent from the table.
var defaultRate = Rate{Input: 1, Output: 3}

var sortedFragments = func() []string {
	keys := make([]string, 0, len(pricing))
	for k := range pricing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// RateFor returns the pricing pair for a model id: the first table fragment
// (in sorted order) that is a substring of the id, or the default pair.
func RateFor(model string) Rate {
	for _, frag := range sortedFragments {
		if strings.Contains(model, frag) {
			return pricing[frag]
		}
	}
	return defaultRate
}

// Cost prices one call given its token counts.
func Cost(model string, promptTokens, candidatesTokens int) float64 {
	rate := RateFor(model)
	return float64(promptTokens)/1e6*rate.Input + float64(candidatesTokens)/1e6*rate.Output
}
