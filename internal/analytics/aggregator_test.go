package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/storage"
)

// memStore is an in-memory BlobStore for aggregator persistence tests.
type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.blobs[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func rec(model string, in, out, cached int, ts time.Time) domain.UsageRecord {
	return domain.UsageRecord{
		Model:               model,
		ActionType:          domain.ActionOptimize,
		PromptTokens:        in,
		CandidatesTokens:    out,
		CachedContentTokens: cached,
		TotalTokens:         in + out + cached,
		Timestamp:           ts,
	}
}

func TestSummaryTotalsAndCost(t *testing.T) {
	a := NewAggregator(nil)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a.Ingest(rec("x-flash", 100, 50, 0, t0))
	a.Ingest(rec("x-flash", 200, 0, 50, t0.Add(time.Minute)))
	a.Ingest(rec("x-flash", 0, 300, 0, t0.Add(2*time.Minute)))

	s := a.Summary()
	assert.Equal(t, 3, s.Calls)
	assert.Equal(t, 300, s.TotalInput)
	assert.Equal(t, 350, s.TotalOutput)
	assert.Equal(t, 50, s.TotalCached)

	wantCost := 300.0/1e6*0.075 + 350.0/1e6*0.30
	assert.InDelta(t, wantCost, s.TotalCost, 1e-12)
	assert.InDelta(t, 50.0/350.0*100, s.CacheHitRate, 1e-9)
}

func TestCacheHitRateZeroDenominator(t *testing.T) {
	a := NewAggregator(nil)
	a.Ingest(rec("x-flash", 0, 300, 0, time.Now()))

	s := a.Summary()
	assert.Equal(t, 0.0, s.CacheHitRate)
}

func TestEmptyAggregator(t *testing.T) {
	a := NewAggregator(nil)

	s := a.Summary()
	assert.Equal(t, 0, s.Calls)
	assert.Equal(t, 0.0, s.TotalCost)
	assert.Equal(t, 0.0, s.CacheHitRate)
	assert.Empty(t, a.PerModel())
	assert.Empty(t, a.Recent(20))
}

func TestRateForSubstringMatch(t *testing.T) {
	tests := []struct {
		model string
		want  Rate
	}{
		{"gemini-2.5-flash", Rate{0.075, 0.3}},
		{"models/gemini-2.5-flash-latest", Rate{0.075, 0.3}},
		{"gpt-4o", Rate{2.5, 10}},
		{"gpt-4o-mini", Rate{0.15, 0.6}},
		{"claude-sonnet-4-20250514", Rate{3, 15}},
		{"mystery-model", defaultRate},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, RateFor(tt.model))
		})
	}
}

func TestPerModelGrouping(t *testing.T) {
	a := NewAggregator(nil)
	now := time.Now()

	a.Ingest(rec("x-flash", 100, 50, 0, now))
	a.Ingest(rec("x-flash", 200, 100, 0, now))
	a.Ingest(rec("claude-opus-4", 10, 10, 0, now))

	perModel := a.PerModel()
	require.Len(t, perModel, 2)

	// opus rates dwarf flash rates, so it sorts first despite fewer tokens.
	assert.Equal(t, "claude-opus-4", perModel[0].Model)
	assert.Equal(t, 1, perModel[0].Calls)

	assert.Equal(t, "x-flash", perModel[1].Model)
	assert.Equal(t, 2, perModel[1].Calls)
	assert.Equal(t, 300, perModel[1].InputTokens)
	assert.Equal(t, 150, perModel[1].OutputTokens)
}

func TestRecentSortsAscendingAndTruncates(t *testing.T) {
	a := NewAggregator(nil)
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Ingest out of chronological order.
	a.Ingest(rec("x-flash", 3, 0, 0, t0.Add(3*time.Hour)))
	a.Ingest(rec("x-flash", 1, 0, 0, t0.Add(1*time.Hour)))
	a.Ingest(rec("x-flash", 2, 0, 0, t0.Add(2*time.Hour)))

	recent := a.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].PromptTokens)
	assert.Equal(t, 3, recent[1].PromptTokens)
}

func TestIngestPersistsAndLoadRestores(t *testing.T) {
	store := newMemStore()
	a := NewAggregator(store)
	a.Ingest(rec("x-flash", 100, 50, 0, time.Now().UTC()))

	fresh := NewAggregator(store)
	require.NoError(t, fresh.Load(context.Background()))

	s := fresh.Summary()
	assert.Equal(t, 1, s.Calls)
	assert.Equal(t, 100, s.TotalInput)
}

func TestLoadMissingKey(t *testing.T) {
	a := NewAggregator(newMemStore())
	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, 0, a.Summary().Calls)
}

func TestLoadMalformedBlob(t *testing.T) {
	store := newMemStore()
	store.blobs[storage.KeyUsageLog] = []byte("{not json")

	a := NewAggregator(store)
	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, 0, a.Summary().Calls)
}
