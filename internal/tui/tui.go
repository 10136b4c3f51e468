// Package tui provides the interactive prompt-drafting studio using Bubble Tea.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joss/promptforge/internal/analytics"
	"github.com/joss/promptforge/internal/autosave"
	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/generate"
	"github.com/joss/promptforge/internal/naming"
	"github.com/joss/promptforge/internal/notify"
	"github.com/joss/promptforge/internal/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

// View represents the current view mode
type View int

const (
	ViewEditor View = iota
	ViewSessions
	ViewHelp
)

// Deps carries the wired core the TUI drives. The TUI holds no domain
// state of its own beyond the edit buffer.
type Deps struct {
	Manager   *session.Manager
	Saver     *session.Saver
	Generator *generate.Service
	Analytics *analytics.Aggregator
	Notifier  *notify.Notifier
	Clock     autosave.Clock
}

// Model is the main TUI model
type Model struct {
	deps      Deps
	scheduler *autosave.Scheduler
	workflow  naming.Workflow

	view        View
	sessions    []*domain.Session
	selectedIdx int
	framework   int
	useCase     string
	generating  bool
	status      statusLine
	ready       bool
	quitting    bool
	width       int
	height      int

	// Edit buffer
	idea      textarea.Model
	optimized string

	// Components
	spinner   spinner.Model
	nameInput textinput.Model
	viewport  viewport.Model
}

type statusLine struct {
	text     string
	severity notify.Severity
}

// Message types
type autosaveMsg struct{}
type notifyMsg notify.Notification
type optimizedMsg struct {
	text string
	err  error
}
type savedMsg struct{}

// New creates the TUI model. The send function delivers messages from
// outside the Bubble Tea loop (the autosave timer, the notifier).
func New(deps Deps, send func(tea.Msg)) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Describe the prompt you want..."
	ta.CharLimit = 4000
	ta.SetWidth(70)
	ta.SetHeight(6)
	ta.Focus()

	ni := textinput.New()
	ni.Placeholder = "Session name"
	ni.CharLimit = 80
	ni.Width = 40

	scheduler := autosave.New(deps.Clock, func() { send(autosaveMsg{}) })
	scheduler.SetEnabled(deps.Manager.AutosaveEnabled())

	deps.Notifier.Subscribe(func(n notify.Notification) { send(notifyMsg(n)) })

	return Model{
		deps:      deps,
		scheduler: scheduler,
		spinner:   s,
		idea:      ta,
		nameInput: ni,
		sessions:  deps.Manager.Sessions(),
	}
}

// Init initializes the TUI
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Shutdown cancels the pending autosave timer. Called when the program exits.
func (m Model) Shutdown() {
	m.scheduler.Stop()
}

// bufferData snapshots the edit buffer as save input.
func (m Model) bufferData() domain.PromptData {
	return domain.PromptData{
		Idea:             m.idea.Value(),
		UseCase:          m.useCase,
		FrameworkAcronym: m.frameworkAcronym(),
		OptimizedPrompt:  m.optimized,
		Model:            m.deps.Generator.Model(),
	}
}

func (m Model) frameworkAcronym() string {
	if m.optimized == "" {
		return ""
	}
	return domain.Frameworks[m.framework].Acronym
}

func (m Model) bufferEmpty() bool {
	return strings.TrimSpace(m.idea.Value()) == "" && m.optimized == ""
}

// resetBuffer clears the editor for a fresh session and cancels any
// pending autosave so a stale timer cannot fire into the new buffer.
func (m *Model) resetBuffer() {
	m.idea.Reset()
	m.optimized = ""
	m.useCase = ""
	m.framework = 0
	m.viewport.SetContent("")
	m.scheduler.Stop()
	m.deps.Manager.CancelIteration()
}

// Run wires the model into a Bubble Tea program and blocks until exit.
func Run(deps Deps) error {
	var p *tea.Program
	m := New(deps, func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Shutdown()
	}
	return err
}
