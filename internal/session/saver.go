package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/generate"
	"github.com/joss/promptforge/internal/logging"
	"github.com/joss/promptforge/internal/metrics"
	"github.com/joss/promptforge/internal/notify"
)

// titleSynthesisMinChars is the idea length above which a new session's
// title is synthesized by the model instead of derived locally.
const titleSynthesisMinChars = 15

// Generator is the collaborator surface the saver needs: titles and change
// summaries. Both calls degrade internally and never fail a save.
type Generator interface {
	Title(ctx context.Context, idea string) string
	Summary(ctx context.Context, previous, current string) string
}

var _ Generator = (*generate.Service)(nil)

// Saver sequences a save as an explicit pipeline: classify, resolve the
// title, resolve the change summary, mutate, notify. Saves serialize
// behind one mutex so a manual save can never interleave with a
// concurrently firing autosave, and collaborator results are discarded
// when the active iteration moved while the call was outstanding.
type Saver struct {
	mu       sync.Mutex
	mgr      *Manager
	gen      Generator
	notifier *notify.Notifier
	log      *logging.Logger
}

func NewSaver(mgr *Manager, gen Generator, notifier *notify.Notifier) *Saver {
	return &Saver{
		mgr:      mgr,
		gen:      gen,
		notifier: notifier,
		log:      logging.New("saver"),
	}
}

// Save runs one save through the pipeline. An empty buffer is a no-op.
func (s *Saver) Save(ctx context.Context, data domain.PromptData, mode domain.SaveMode, sessionName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(data.Idea) == "" && strings.TrimSpace(data.OptimizedPrompt) == "" {
		return
	}

	start := time.Now()
	activeID := s.mgr.ActiveID()
	epoch := s.mgr.Epoch()

	title := s.resolveTitle(ctx, data, activeID, sessionName)
	summary := s.resolveSummary(ctx, data, activeID, mode)

	// The title or summary call may have taken long enough for the user
	// to switch or delete sessions; a stale result must not land.
	if s.mgr.Epoch() != epoch {
		s.log.Info("stale_save_discarded", map[string]any{"mode": string(mode)})
		metrics.Global().RecordStaleSave()
		return
	}

	out := s.mgr.CreateOrUpdate(ctx, data, mode, sessionName, title, summary)
	metrics.Global().RecordSave(mode == domain.SaveManual, time.Since(start).Milliseconds())

	if !out.Persisted {
		s.notifier.Notify("Save kept in memory only: persistence failed", notify.SeverityWarning)
	}
	if out.Message != "" {
		s.notifier.Notify(out.Message, notify.SeveritySuccess)
	}
	s.log.TimedEvent("save_complete", start, map[string]any{
		"mode":    string(mode),
		"session": out.SessionID,
		"created": out.Created,
	})
}

// resolveTitle names a brand-new session when no explicit name was given.
// Ideas longer than the synthesis threshold get a model-generated title;
// shorter ones use the local derivation directly.
func (s *Saver) resolveTitle(ctx context.Context, data domain.PromptData, activeID, sessionName string) string {
	if activeID != "" || sessionName != "" {
		return ""
	}
	idea := strings.TrimSpace(data.Idea)
	if utf8.RuneCountInString(idea) > titleSynthesisMinChars && s.gen != nil {
		return s.gen.Title(ctx, idea)
	}
	return generate.FallbackTitle(idea)
}

// resolveSummary computes the change summary for a manual checkpoint on an
// existing session. Drafts and first-prompt saves get the fixed manual
// label; autosaves and new sessions need no summary at all.
func (s *Saver) resolveSummary(ctx context.Context, data domain.PromptData, activeID string, mode domain.SaveMode) string {
	if mode != domain.SaveManual || activeID == "" {
		return ""
	}
	if data.IsDraft() {
		return domain.SummaryManual
	}

	var previous string
	if sess := s.mgr.Find(activeID); sess != nil {
		if v := sess.Latest(); v != nil {
			previous = v.OptimizedPrompt
		}
	}
	if previous == "" {
		return domain.SummaryManual
	}
	if s.gen == nil {
		return domain.SummaryManual
	}
	return s.gen.Summary(ctx, previous, data.EffectivePrompt())
}
