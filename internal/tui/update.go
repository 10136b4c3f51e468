package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/naming"
	"github.com/joss/promptforge/internal/notify"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.workflow.Open() {
			return m.updateModal(msg)
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.idea.SetWidth(msg.Width - 8)
		m.viewport = viewport.New(msg.Width-8, max(4, msg.Height-18))
		m.viewport.SetContent(m.optimized)

	case autosaveMsg:
		return m, m.autosaveCmd()

	case savedMsg:
		m.sessions = m.deps.Manager.Sessions()

	case notifyMsg:
		m.status = statusLine{text: msg.Message, severity: msg.Severity}

	case optimizedMsg:
		m.generating = false
		if msg.err != nil {
			m.status = statusLine{text: msg.err.Error(), severity: notify.SeverityError}
		} else {
			m.optimized = msg.text
			m.viewport.SetContent(m.optimized)
			m.viewport.GotoTop()
			m.scheduler.Touch()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.view == ViewEditor && !m.workflow.Open() {
		before := m.idea.Value()
		var cmd tea.Cmd
		m.idea, cmd = m.idea.Update(msg)
		cmds = append(cmds, cmd)
		if m.idea.Value() != before {
			m.scheduler.Touch()
		}

		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes global key bindings. Returns handled=false for keys
// that should fall through to the focused component.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.scheduler.Stop()
		return m, tea.Quit, true

	case "ctrl+s":
		if m.view == ViewEditor && !m.bufferEmpty() {
			return m, m.manualSaveCmd(""), true
		}

	case "ctrl+g":
		if m.view == ViewEditor && !m.generating && m.idea.Value() != "" {
			m.generating = true
			return m, tea.Batch(m.spinner.Tick, m.optimizeCmd()), true
		}

	case "ctrl+n":
		action := m.workflow.Begin(naming.ModeNewSession, m.bufferEmpty())
		if action.Kind == naming.ActionReset {
			m.resetBuffer()
		} else if m.workflow.Open() {
			m.nameInput.Focus()
			m.idea.Blur()
		}
		return m, nil, true

	case "ctrl+r":
		if m.deps.Manager.ActiveID() != "" {
			m.workflow.Begin(naming.ModeRename, false)
			if m.workflow.Open() {
				m.nameInput.Focus()
				m.idea.Blur()
			}
		}
		return m, nil, true

	case "ctrl+a":
		enabled := !m.scheduler.Enabled()
		m.scheduler.SetEnabled(enabled)
		m.deps.Manager.SetAutosaveEnabled(context.Background(), enabled)
		if enabled {
			m.status = statusLine{text: "Autosave on", severity: notify.SeverityInfo}
		} else {
			m.status = statusLine{text: "Autosave off", severity: notify.SeverityInfo}
		}
		return m, nil, true

	case "ctrl+f":
		if m.view == ViewEditor {
			m.framework = (m.framework + 1) % len(domain.Frameworks)
		}
		return m, nil, true

	case "ctrl+l":
		if m.view == ViewEditor {
			m.view = ViewSessions
			m.sessions = m.deps.Manager.Sessions()
			m.selectedIdx = 0
			m.idea.Blur()
		} else {
			m.view = ViewEditor
			m.idea.Focus()
		}
		return m, nil, true

	case "ctrl+h":
		if m.view == ViewHelp {
			m.view = ViewEditor
			m.idea.Focus()
		} else {
			m.view = ViewHelp
			m.idea.Blur()
		}
		return m, nil, true

	case "esc":
		if m.view != ViewEditor {
			m.view = ViewEditor
			m.idea.Focus()
			return m, nil, true
		}

	case "up", "k":
		if m.view == ViewSessions {
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
			return m, nil, true
		}

	case "down", "j":
		if m.view == ViewSessions {
			if m.selectedIdx < len(m.sessions)-1 {
				m.selectedIdx++
			}
			return m, nil, true
		}

	case "x":
		if m.view == ViewSessions && len(m.sessions) > 0 {
			id := m.sessions[m.selectedIdx].ID
			_, wasActive := m.deps.Manager.DeleteSession(context.Background(), id)
			if wasActive {
				m.resetBuffer()
			}
			m.sessions = m.deps.Manager.Sessions()
			if m.selectedIdx >= len(m.sessions) && m.selectedIdx > 0 {
				m.selectedIdx--
			}
			m.status = statusLine{text: "Session deleted", severity: notify.SeverityInfo}
			return m, nil, true
		}

	case "enter":
		if m.view == ViewSessions && len(m.sessions) > 0 {
			m.loadSession(m.sessions[m.selectedIdx].ID)
			m.view = ViewEditor
			m.idea.Focus()
			return m, nil, true
		}
	}

	return m, nil, false
}

// updateModal routes keys to the naming modal while it is open.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		action := m.workflow.Confirm(m.nameInput.Value())
		return m.applyAction(action)

	case "ctrl+d":
		action := m.workflow.Discard()
		return m.applyAction(action)

	case "esc":
		action := m.workflow.Cancel()
		return m.applyAction(action)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// applyAction executes a naming workflow outcome.
func (m Model) applyAction(action naming.Action) (tea.Model, tea.Cmd) {
	if !m.workflow.Open() {
		m.nameInput.Reset()
		m.nameInput.Blur()
		m.idea.Focus()
	}

	switch action.Kind {
	case naming.ActionSaveAs:
		data := m.bufferData()
		m.resetBuffer()
		return m, m.saveAsCmd(data, action.Name)

	case naming.ActionRename:
		m.deps.Manager.Rename(context.Background(), m.deps.Manager.ActiveID(), action.Name)
		m.sessions = m.deps.Manager.Sessions()
		m.status = statusLine{text: "Session renamed", severity: notify.SeveritySuccess}

	case naming.ActionReset:
		m.resetBuffer()
	}
	return m, nil
}

// loadSession makes a session the active iteration and fills the edit
// buffer from its latest version.
func (m *Model) loadSession(id string) {
	v, _, ok := m.deps.Manager.SelectForIteration(id, "")
	if !ok {
		return
	}
	m.idea.SetValue(v.Idea)
	m.useCase = v.UseCase
	m.optimized = ""
	if v.OptimizedPrompt != v.Idea || v.FrameworkAcronym != domain.DraftFramework {
		m.optimized = v.OptimizedPrompt
	}
	m.viewport.SetContent(m.optimized)
	for i, fw := range domain.Frameworks {
		if fw.Acronym == v.FrameworkAcronym {
			m.framework = i
			break
		}
	}
	m.scheduler.Stop()
}

// Commands

func (m Model) autosaveCmd() tea.Cmd {
	data := m.bufferData()
	return func() tea.Msg {
		m.deps.Saver.Save(context.Background(), data, domain.SaveAutosave, "")
		return savedMsg{}
	}
}

func (m Model) manualSaveCmd(name string) tea.Cmd {
	data := m.bufferData()
	return func() tea.Msg {
		m.deps.Saver.Save(context.Background(), data, domain.SaveManual, name)
		return savedMsg{}
	}
}

func (m Model) saveAsCmd(data domain.PromptData, name string) tea.Cmd {
	mgr := m.deps.Manager
	saver := m.deps.Saver
	return func() tea.Msg {
		// Naming a new session always checkpoints the buffer as a fresh
		// session, regardless of what was active before.
		mgr.CancelIteration()
		saver.Save(context.Background(), data, domain.SaveManual, name)
		mgr.CancelIteration()
		return savedMsg{}
	}
}

func (m Model) optimizeCmd() tea.Cmd {
	idea := m.idea.Value()
	useCase := m.useCase
	fw := domain.Frameworks[m.framework].Acronym
	gen := m.deps.Generator
	return func() tea.Msg {
		text, err := gen.Optimize(context.Background(), idea, useCase, fw)
		return optimizedMsg{text: text, err: err}
	}
}
