package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/notify"
)

// stubGenerator returns canned values and records its inputs. onTitle runs
// before the title is returned, letting tests interleave state changes the
// way a slow collaborator call would.
type stubGenerator struct {
	title        string
	summary      string
	titleCalls   []string
	summaryCalls [][2]string
	onTitle      func()
}

func (g *stubGenerator) Title(_ context.Context, idea string) string {
	g.titleCalls = append(g.titleCalls, idea)
	if g.onTitle != nil {
		g.onTitle()
	}
	return g.title
}

func (g *stubGenerator) Summary(_ context.Context, previous, current string) string {
	g.summaryCalls = append(g.summaryCalls, [2]string{previous, current})
	return g.summary
}

func captureNotifications(n *notify.Notifier) *[]notify.Notification {
	var got []notify.Notification
	n.Subscribe(func(nt notify.Notification) { got = append(got, nt) })
	return &got
}

func TestAutosaveCreatesTitledDraftSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{title: "Landing Page Builder"}
	notifier := notify.New()
	got := captureNotifications(notifier)
	saver := NewSaver(m, gen, notifier)

	saver.Save(ctx, draftData("Write me a landing page"), domain.SaveAutosave, "")

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "Landing Page Builder", s.Name)
	require.Len(t, s.Versions, 1)
	assert.Equal(t, domain.DraftFramework, s.Versions[0].FrameworkAcronym)

	require.Len(t, gen.titleCalls, 1, "idea above threshold triggers title synthesis")
	assert.Empty(t, *got, "autosave emits no notifications")
}

func TestShortIdeaSkipsTitleSynthesis(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{title: "unused"}
	saver := NewSaver(m, gen, notify.New())

	saver.Save(ctx, draftData("short idea"), domain.SaveAutosave, "")

	require.Len(t, m.Sessions(), 1)
	assert.Equal(t, "short idea", m.Sessions()[0].Name, "fallback keeps the full short idea")
	assert.Empty(t, gen.titleCalls)
}

func TestTitleSynthesisThresholdCountsRunes(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{title: "unused"}
	saver := NewSaver(m, gen, notify.New())

	// 12 runes but 36 bytes: still under the synthesis threshold.
	idea := "猫猫猫猫猫猫猫猫猫猫猫猫"
	saver.Save(ctx, draftData(idea), domain.SaveAutosave, "")

	require.Len(t, m.Sessions(), 1)
	assert.Equal(t, idea, m.Sessions()[0].Name)
	assert.Empty(t, gen.titleCalls)
}

func TestExplicitNameSkipsTitleSynthesis(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{title: "unused"}
	saver := NewSaver(m, gen, notify.New())

	saver.Save(ctx, draftData("an idea long enough for synthesis"), domain.SaveManual, "Chosen name")

	assert.Equal(t, "Chosen name", m.Sessions()[0].Name)
	assert.Empty(t, gen.titleCalls)
}

func TestManualSaveComputesSummaryFromPreviousPrompt(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{summary: "Sharper call to action"}
	notifier := notify.New()
	got := captureNotifications(notifier)
	saver := NewSaver(m, gen, notifier)

	saver.Save(ctx, promptData("idea", "old prompt text"), domain.SaveManual, "S")
	saver.Save(ctx, promptData("idea", "new prompt text"), domain.SaveManual, "")

	s := m.Sessions()[0]
	require.Len(t, s.Versions, 2)
	assert.Equal(t, "Sharper call to action", s.Versions[0].ChangeSummary)

	require.Len(t, gen.summaryCalls, 1)
	assert.Equal(t, "old prompt text", gen.summaryCalls[0][0])
	assert.Equal(t, "new prompt text", gen.summaryCalls[0][1])

	require.NotEmpty(t, *got)
	assert.Equal(t, notify.SeveritySuccess, (*got)[len(*got)-1].Severity)
}

func TestManualDraftSaveUsesFixedSummary(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	gen := &stubGenerator{summary: "unused"}
	saver := NewSaver(m, gen, notify.New())

	saver.Save(ctx, promptData("idea", "first prompt"), domain.SaveManual, "S")
	saver.Save(ctx, draftData("reworked idea only"), domain.SaveManual, "")

	s := m.Sessions()[0]
	require.Len(t, s.Versions, 2)
	assert.Equal(t, domain.SummaryManual, s.Versions[0].ChangeSummary)
	assert.Empty(t, gen.summaryCalls, "drafts never call the summarizer")
}

func TestEmptyBufferIsNoOp(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())
	saver := NewSaver(m, &stubGenerator{}, notify.New())

	saver.Save(ctx, domain.PromptData{Idea: "   "}, domain.SaveAutosave, "")
	assert.Empty(t, m.Sessions())
}

func TestStaleSaveDiscardedWhenIterationMoves(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore())

	gen := &stubGenerator{title: "Too late"}
	// The user loads a different session while the title call is in flight.
	gen.onTitle = func() {
		m.CreateOrUpdate(ctx, draftData("interleaved"), domain.SaveManual, "Other", "", "")
	}
	saver := NewSaver(m, gen, notify.New())

	saver.Save(ctx, draftData("an idea long enough for synthesis"), domain.SaveAutosave, "")

	sessions := m.Sessions()
	require.Len(t, sessions, 1, "stale result must not create a second session")
	assert.Equal(t, "Other", sessions[0].Name)
}

func TestPersistFailureNotifiesWarning(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.failWrites = true
	m := newTestManager(store)
	notifier := notify.New()
	got := captureNotifications(notifier)
	saver := NewSaver(m, &stubGenerator{}, notifier)

	saver.Save(ctx, draftData("short idea"), domain.SaveManual, "S")

	require.NotEmpty(t, *got)
	assert.Equal(t, notify.SeverityWarning, (*got)[0].Severity)
	assert.Len(t, m.Sessions(), 1, "save still applies in memory")
}
