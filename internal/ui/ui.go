package ui

import (
	"context"
	"fmt"

	"github.com/KrishivGubba/MoodMelody/internal/capture"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines the key bindings for the dashboard.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "stop and quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

// eventMsg wraps a capture loop event for the Update cycle.
type eventMsg capture.Event

// Model represents the capture dashboard state.
type Model struct {
	ctx     context.Context
	loop    *capture.Loop
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int

	activity  string
	samples   int
	lastTrack string
	lastErr   error
	stopped   bool
}

// NewModel creates a dashboard model for a running capture loop.
func NewModel(ctx context.Context, loop *capture.Loop) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:     ctx,
		loop:    loop,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and begins draining loop events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.loop.Stop()
			m.stopped = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		switch msg.Kind {
		case capture.EventSampled:
			m.samples = m.loop.Samples()
		case capture.EventActivity:
			m.activity = msg.Activity
		case capture.EventPlayback:
			if msg.Track != nil {
				m.lastTrack = fmt.Sprintf("%s by %s", msg.Track.Name, msg.Track.Artist)
			}
		case capture.EventError:
			m.lastErr = msg.Err
		case capture.EventStopped:
			m.stopped = true
			return m, tea.Quit
		}
		return m, m.waitForEvent()
	}

	return m, nil
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.stopped {
		return styles.help.Render("Capture stopped.\n")
	}

	title := styles.title.Render("MoodMelody")
	status := fmt.Sprintf("%s sampling your screen", m.spinner.View())

	activity := "waiting for first classification..."
	if m.activity != "" {
		activity = styles.ok.Render(m.activity)
	}

	body := fmt.Sprintf("Activity: %s\nSamples:  %d", activity, m.samples)
	if m.lastTrack != "" {
		body += fmt.Sprintf("\nPlaying:  %s", m.lastTrack)
	}
	if m.lastErr != nil {
		body += fmt.Sprintf("\n%s", styles.warn.Render(fmt.Sprintf("Last error: %v", m.lastErr)))
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, status, body, helpView)
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-m.loop.Events():
			return eventMsg(event)
		case <-m.ctx.Done():
			return eventMsg(capture.Event{Kind: capture.EventStopped})
		}
	}
}

// Run blocks on the dashboard until the user quits or the loop stops.
func Run(ctx context.Context, loop *capture.Loop) error {
	program := tea.NewProgram(NewModel(ctx, loop))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
