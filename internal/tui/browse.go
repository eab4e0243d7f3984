package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
)

// Widget is the part of widget.Controller the browser drives.
type Widget interface {
	Init(ctx context.Context) error
	Refresh(ctx context.Context) bool
	GoTo(ctx context.Context, n int) bool
	Next(ctx context.Context) bool
	Prev(ctx context.Context) bool
	Snapshot() widget.Snapshot
	LastError() error
}

// LoadedMsg is sent when the first load settles.
type LoadedMsg struct {
	Err error
}

// RefreshedMsg is sent when a refresh settles. Manual marks a refresh the
// user asked for; only periodic refreshes schedule the next tick.
type RefreshedMsg struct {
	Changed bool
	Manual  bool
}

// TickMsg triggers a periodic refresh.
type TickMsg time.Time

// BrowseModel is the Bubble Tea model for `wishboard browse`.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowseModel struct {
	ctx      context.Context
	widget   Widget
	renderer *render.Renderer
	interval time.Duration

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	snapshot widget.Snapshot
	err      error
	loading  bool
	quitting bool
	width    int
	height   int
}

// NewBrowseModel returns a model that initializes w when the program starts
// and refreshes it every interval.
func NewBrowseModel(ctx context.Context, w Widget, r *render.Renderer, interval time.Duration) BrowseModel {
	if interval <= 0 {
		interval = config.DefaultRefreshInterval
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	return BrowseModel{
		ctx:      ctx,
		widget:   w,
		renderer: r,
		interval: interval,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		snapshot: w.Snapshot(),
		loading:  true,
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

// Init starts the spinner and the first load (Bubble Tea interface).
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initCmd())
}

func (m BrowseModel) initCmd() tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Err: m.widget.Init(m.ctx)}
	}
}

func (m BrowseModel) refreshCmd(manual bool) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Changed: m.widget.Refresh(m.ctx), Manual: manual}
	}
}

func (m BrowseModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case LoadedMsg:
		m.loading = false
		m.sync()
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		return m, m.tickCmd()

	case RefreshedMsg:
		m.loading = false
		m.sync()
		if msg.Manual {
			return m, nil
		}
		return m, m.tickCmd()

	case TickMsg:
		if m.loading {
			return m, m.tickCmd()
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd(false))

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeypress(msg)
	}
	return m, nil
}

func (m BrowseModel) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		if m.widget.Prev(m.ctx) {
			m.sync()
		}
	case key.Matches(msg, m.keys.Next):
		if m.widget.Next(m.ctx) {
			m.sync()
		}
	case key.Matches(msg, m.keys.Page):
		if n, ok := pageKey(msg.String()); ok && m.widget.GoTo(m.ctx, n) {
			m.sync()
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd(true))
	}
	return m, nil
}

// sync copies the widget state into the model.
func (m *BrowseModel) sync() {
	m.snapshot = m.widget.Snapshot()
	if err := m.widget.LastError(); err != nil {
		m.err = err
	} else {
		m.err = nil
	}
}

// View renders the current page (Bubble Tea interface).
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}
	body := RenderText(m.renderer, View{Snapshot: m.snapshot, Err: m.err, Width: m.width})

	status := ""
	if m.loading {
		status = m.spinner.View() + " " + SubtleStyle.Render(m.renderer.Message(render.MsgLoading))
	} else if !m.snapshot.LastUpdated.IsZero() {
		status = SubtleStyle.Render("updated " + m.snapshot.LastUpdated.Format(time.Kitchen))
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", status, m.help.View(m.keys)) + "\n"
}

// Snapshot returns the state the model is showing.
func (m BrowseModel) Snapshot() widget.Snapshot {
	return m.snapshot
}

// Loading reports whether a fetch is in flight.
func (m BrowseModel) Loading() bool {
	return m.loading
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(ctx context.Context, w Widget, r *render.Renderer, interval time.Duration, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(NewBrowseModel(ctx, w, r, interval), opts...)
	_, err := p.Run()
	return err
}
