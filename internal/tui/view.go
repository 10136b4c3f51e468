package tui

import (
	"fmt"
	"strings"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/naming"
	"github.com/joss/promptforge/internal/notify"
	"github.com/joss/promptforge/internal/render"
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return fmt.Sprintf("\n  %s Loading...", m.spinner.View())
	}

	if m.workflow.Open() {
		return m.viewModal()
	}

	switch m.view {
	case ViewSessions:
		return m.viewSessions()
	case ViewHelp:
		return m.viewHelp()
	default:
		return m.viewEditor()
	}
}

func (m Model) viewEditor() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("✎ PromptForge") + "\n\n")

	// Status bar: active session, framework, autosave state.
	sessionLabel := "no session"
	if id := m.deps.Manager.ActiveID(); id != "" {
		if s := m.deps.Manager.Find(id); s != nil {
			sessionLabel = s.Name
			if sessionLabel == "" {
				sessionLabel = s.ID
			}
		}
	}
	autosaveLabel := "autosave off"
	if m.scheduler.Enabled() {
		autosaveLabel = "autosave on"
	}
	status := fmt.Sprintf("%s │ %s │ %s",
		render.Truncate(sessionLabel, 30),
		domain.Frameworks[m.framework].Acronym,
		autosaveLabel,
	)
	b.WriteString(infoStyle.Render("  "+status) + "\n\n")

	b.WriteString("  " + m.idea.View() + "\n\n")

	if m.generating {
		b.WriteString(fmt.Sprintf("  %s Optimizing...\n", m.spinner.View()))
	} else if m.optimized != "" {
		box := boxStyle.Width(m.width - 6).Render(m.viewport.View())
		b.WriteString(box + "\n")
	}

	if m.status.text != "" {
		style := infoStyle
		switch m.status.severity {
		case notify.SeverityError:
			style = errorStyle
		case notify.SeverityWarning:
			style = warnStyle
		case notify.SeveritySuccess:
			style = activeStyle
		}
		b.WriteString("\n" + style.Render("  "+m.status.text) + "\n")
	}

	help := "ctrl+g: optimize │ ctrl+s: save │ ctrl+n: new │ ctrl+l: sessions │ ctrl+h: help │ ctrl+c: quit"
	b.WriteString(helpStyle.Render("  " + help))

	return b.String()
}

func (m Model) viewSessions() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📋 Sessions") + "\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(infoStyle.Render("  No sessions yet\n"))
	} else {
		activeID := m.deps.Manager.ActiveID()
		for i, s := range m.sessions {
			cursor := "  "
			style := infoStyle
			if i == m.selectedIdx {
				cursor = "▶ "
				style = activeStyle
			}

			name := s.Name
			if name == "" {
				name = "(unnamed)"
			}
			marker := " "
			if s.ID == activeID {
				marker = "●"
			}

			line := fmt.Sprintf("%s%s %-30s %s (%d versions)",
				cursor,
				marker,
				render.Truncate(name, 30),
				s.CreatedAt.Format("Jan 02 15:04"),
				len(s.Versions),
			)
			b.WriteString(style.Render(line) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("\n  enter: load │ x: delete │ j/k: navigate │ esc: back"))

	return b.String()
}

func (m Model) viewModal() string {
	var b strings.Builder

	title := "Name this session"
	hint := "enter: save │ ctrl+d: discard │ esc: cancel"
	if m.workflow.Mode() == naming.ModeRename {
		title = "Rename session"
		hint = "enter: rename │ esc: cancel"
	}

	content := titleStyle.Render(title) + "\n\n  " + m.nameInput.View() + "\n\n" + helpStyle.Render(hint)
	b.WriteString("\n\n" + modalStyle.Render(content))

	return b.String()
}

func (m Model) viewHelp() string {
	help := `
  ✎ PromptForge - Help

  EDITOR
    ctrl+g    Optimize the idea with the selected framework
    ctrl+s    Manual save (new version checkpoint)
    ctrl+f    Cycle framework
    ctrl+a    Toggle autosave

  SESSIONS
    ctrl+n    Start a new session (names the current buffer first)
    ctrl+r    Rename the active session
    ctrl+l    Browse sessions
    j/k       Navigate, enter loads, x deletes

  Autosave silently refreshes the latest version after 2s of idle
  typing; it never creates history. Manual saves are checkpoints.
`
	return titleStyle.Render("Help") + "\n" + infoStyle.Render(help) + helpStyle.Render("\n  press esc to return")
}
