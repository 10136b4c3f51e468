package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginNewSessionEmptyBufferSkipsModal(t *testing.T) {
	var w Workflow

	action := w.Begin(ModeNewSession, true)
	assert.Equal(t, ActionReset, action.Kind)
	assert.False(t, w.Open(), "no modal when there is nothing to name")
}

func TestBeginNewSessionWithContentOpensModal(t *testing.T) {
	var w Workflow

	action := w.Begin(ModeNewSession, false)
	assert.Equal(t, ActionNone, action.Kind)
	assert.True(t, w.Open())
	assert.Equal(t, ModeNewSession, w.Mode())
}

func TestConfirmNewSession(t *testing.T) {
	var w Workflow
	w.Begin(ModeNewSession, false)

	action := w.Confirm("Landing page draft")
	assert.Equal(t, ActionSaveAs, action.Kind)
	assert.Equal(t, "Landing page draft", action.Name)
	assert.False(t, w.Open())
}

func TestConfirmRename(t *testing.T) {
	var w Workflow
	w.Begin(ModeRename, false)

	action := w.Confirm("  Better name  ")
	assert.Equal(t, ActionRename, action.Kind)
	assert.Equal(t, "Better name", action.Name)
	assert.False(t, w.Open())
}

func TestConfirmBlankNameKeepsModalOpen(t *testing.T) {
	var w Workflow
	w.Begin(ModeNewSession, false)

	action := w.Confirm("   ")
	assert.Equal(t, ActionNone, action.Kind)
	assert.True(t, w.Open())
}

func TestDiscardNewSessionResetsBuffer(t *testing.T) {
	var w Workflow
	w.Begin(ModeNewSession, false)

	action := w.Discard()
	assert.Equal(t, ActionReset, action.Kind)
	assert.False(t, w.Open())
}

func TestDiscardRenameDoesNothing(t *testing.T) {
	var w Workflow
	w.Begin(ModeRename, false)

	action := w.Discard()
	assert.Equal(t, ActionNone, action.Kind)
	assert.False(t, w.Open())
}

func TestCancelLeavesEverythingUntouched(t *testing.T) {
	var w Workflow
	w.Begin(ModeNewSession, false)

	action := w.Cancel()
	assert.Equal(t, ActionNone, action.Kind)
	assert.False(t, w.Open())
}

func TestBeginWhileOpenIsIgnored(t *testing.T) {
	var w Workflow
	w.Begin(ModeRename, false)

	action := w.Begin(ModeNewSession, true)
	assert.Equal(t, ActionNone, action.Kind)
	assert.Equal(t, ModeRename, w.Mode(), "open modal keeps its original mode")
}

func TestClosedWorkflowIgnoresOutcomes(t *testing.T) {
	var w Workflow

	assert.Equal(t, ActionNone, w.Confirm("name").Kind)
	assert.Equal(t, ActionNone, w.Discard().Kind)
	assert.Equal(t, ActionNone, w.Cancel().Kind)
}
