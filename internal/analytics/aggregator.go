// Package analytics aggregates token usage records into totals, per-model
// breakdowns, and cost estimates. The aggregator is append-only: records
// are never mutated or reordered after ingestion, and every derived view
// is recomputed from the full sequence.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/logging"
	"github.com/joss/promptforge/internal/storage"
)

// Stats is the aggregate view over all ingested records.
type Stats struct {
	Calls         int
	TotalInput    int
	TotalOutput   int
	TotalThinking int
	TotalCached   int
	TotalTokens   int
	TotalCost     float64
	CacheHitRate  float64
}

// ModelStats is the per-model slice of the aggregate.
type ModelStats struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Aggregator holds the usage record sequence and persists it to the blob
// store under the usage-log key.
type Aggregator struct {
	mu      sync.Mutex
	records []domain.UsageRecord
	store   domain.BlobStore
	log     *logging.Logger
}

// NewAggregator creates an aggregator. The store may be nil for a purely
// in-memory aggregator (tests, one-shot runs).
func NewAggregator(store domain.BlobStore) *Aggregator {
	return &Aggregator{
		store: store,
		log:   logging.New("analytics"),
	}
}

// Load restores the persisted record sequence. A missing key yields an
// empty sequence; a malformed blob is logged and discarded rather than
// blocking startup.
func (a *Aggregator) Load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}

	data, err := a.store.Get(ctx, storage.KeyUsageLog)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var records []domain.UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.log.Warn("usage_log_malformed", nil, err)
		return nil
	}

	a.mu.Lock()
	a.records = records
	a.mu.Unlock()
	return nil
}

// Ingest appends one record and persists the sequence. Persistence
// failures are logged; the in-memory sequence keeps the record either way.
func (a *Aggregator) Ingest(rec domain.UsageRecord) {
	a.mu.Lock()
	a.records = append(a.records, rec)
	snapshot := make([]domain.UsageRecord, len(a.records))
	copy(snapshot, a.records)
	a.mu.Unlock()

	if a.store == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err == nil {
		err = a.store.Set(context.Background(), storage.KeyUsageLog, data)
	}
	if err != nil {
		a.log.Warn("usage_log_persist_failed", nil, err)
	}
}

// Records returns a copy of the full sequence in ingestion order.
func (a *Aggregator) Records() []domain.UsageRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.UsageRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Summary recomputes the aggregate totals over all records.
func (a *Aggregator) Summary() Stats {
	records := a.Records()

	var s Stats
	s.Calls = len(records)
	for _, r := range records {
		s.TotalInput += r.PromptTokens
		s.TotalOutput += r.CandidatesTokens
		s.TotalThinking += r.ThinkingTokens
		s.TotalCached += r.CachedContentTokens
		s.TotalTokens += r.TotalTokens
		s.TotalCost += Cost(r.Model, r.PromptTokens, r.CandidatesTokens)
	}

	denom := s.TotalInput + s.TotalCached
	if denom > 0 {
		s.CacheHitRate = float64(s.TotalCached) / float64(denom) * 100
	}
	return s
}

// PerModel groups records by model id, sorted by descending cost.
func (a *Aggregator) PerModel() []ModelStats {
	records := a.Records()

	byModel := make(map[string]*ModelStats)
	for _, r := range records {
		ms, ok := byModel[r.Model]
		if !ok {
			ms = &ModelStats{Model: r.Model}
			byModel[r.Model] = ms
		}
		ms.Calls++
		ms.InputTokens += r.PromptTokens
		ms.OutputTokens += r.CandidatesTokens
		ms.Cost += Cost(r.Model, r.PromptTokens, r.CandidatesTokens)
	}

	out := make([]ModelStats, 0, len(byModel))
	for _, ms := range byModel {
		out = append(out, *ms)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// Recent returns the last n records sorted ascending by timestamp.
func (a *Aggregator) Recent(n int) []domain.UsageRecord {
	records := a.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records
}
