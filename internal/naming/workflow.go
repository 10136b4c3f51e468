// Package naming implements the session naming modal workflow: one small
// state machine that turns modal outcomes into explicit actions for the
// session manager, so the UI layer never mutates sessions directly.
package naming

import "strings"

// Mode selects what the open modal is naming.
type Mode int

const (
	// ModeNewSession names a fresh session carved out of the edit buffer.
	ModeNewSession Mode = iota
	// ModeRename renames an existing session in place.
	ModeRename
)

// ActionKind classifies what the caller must do after a modal interaction.
type ActionKind int

const (
	// ActionNone means nothing changes (modal still open, or cancelled).
	ActionNone ActionKind = iota
	// ActionSaveAs performs a manual save under Name, then resets the
	// edit buffer.
	ActionSaveAs
	// ActionRename renames the target session to Name. Versions and the
	// active iteration are untouched.
	ActionRename
	// ActionReset resets the edit buffer without saving.
	ActionReset
)

// Action is the workflow's instruction to the session manager.
type Action struct {
	Kind ActionKind
	Name string
}

// Workflow tracks the modal's open/closed state and mode. The zero value
// is a closed workflow.
type Workflow struct {
	open bool
	mode Mode
}

// Open reports whether the modal is showing.
func (w *Workflow) Open() bool { return w.open }

// Mode returns the mode of the open modal. Only meaningful while Open.
func (w *Workflow) Mode() Mode { return w.mode }

// Begin requests the modal. Starting a new session over an already-empty
// buffer skips the modal entirely: there is nothing to name or lose, so
// the reset happens immediately.
func (w *Workflow) Begin(mode Mode, bufferEmpty bool) Action {
	if w.open {
		return Action{Kind: ActionNone}
	}
	if mode == ModeNewSession && bufferEmpty {
		return Action{Kind: ActionReset}
	}
	w.open = true
	w.mode = mode
	return Action{Kind: ActionNone}
}

// Confirm closes the modal with a name. A blank name keeps the modal open
// so the user can correct it.
func (w *Workflow) Confirm(name string) Action {
	if !w.open {
		return Action{Kind: ActionNone}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Action{Kind: ActionNone}
	}

	mode := w.mode
	w.open = false
	if mode == ModeRename {
		return Action{Kind: ActionRename, Name: name}
	}
	return Action{Kind: ActionSaveAs, Name: name}
}

// Discard closes the modal without saving. In new-session mode the edit
// buffer is still reset; a rename discard changes nothing.
func (w *Workflow) Discard() Action {
	if !w.open {
		return Action{Kind: ActionNone}
	}
	mode := w.mode
	w.open = false
	if mode == ModeNewSession {
		return Action{Kind: ActionReset}
	}
	return Action{Kind: ActionNone}
}

// Cancel closes the modal leaving everything untouched.
func (w *Workflow) Cancel() Action {
	w.open = false
	return Action{Kind: ActionNone}
}
