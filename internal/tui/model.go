package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

const (
	pollInterval   = time.Second
	requestTimeout = 15 * time.Second
)

// editMode selects what the text input is collecting.
type editMode int

const (
	editNone editMode = iota
	editURL
	editToken
)

// --- Bubble Tea messages ---

// snapshotMsg carries the result of an API call.
type snapshotMsg struct {
	snap types.Snapshot
	err  error
}

// systemsMsg carries the OS catalog.
type systemsMsg struct {
	systems []types.OSOption
	err     error
}

type tickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	client *Client
	ctx    context.Context
	cancel context.CancelFunc

	keys  KeyMap
	help  help.Model
	input textinput.Model
	mode  editMode
	width int

	snap    types.Snapshot
	loaded  bool
	systems []types.OSOption
	status  string
	err     error
}

// New creates the root model.
func New(client *Client) Model {
	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 2048

	return Model{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		input:  input,
	}
}

// Init loads the catalog and the first snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSystems(), m.refresh(), tick())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.mode != editNone {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		m.loaded = true
		return m, nil

	case systemsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.systems = msg.systems
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.snap.Controls
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextOS):
		next, ok := m.nextOS()
		if !c.SelectOS || !ok {
			return m.unavailable("OS selection")
		}
		return m, m.call(func(ctx context.Context) (types.Snapshot, error) {
			return m.client.SelectOS(ctx, next)
		})

	case key.Matches(msg, m.keys.Power):
		switch {
		case c.PowerOn:
			return m, m.call(m.client.PowerOn)
		case c.PowerOff:
			return m, m.call(m.client.PowerOff)
		}
		return m.unavailable("Power")

	case key.Matches(msg, m.keys.Restart):
		if !c.Restart {
			return m.unavailable("Restart")
		}
		return m, m.call(m.client.Restart)

	case key.Matches(msg, m.keys.Pause):
		if !c.Pause {
			return m.unavailable("Pause")
		}
		return m, m.call(m.client.TogglePause)

	case key.Matches(msg, m.keys.EditURL):
		if !c.URLInput {
			return m.unavailable("URL editing")
		}
		m.mode = editURL
		m.input.EchoMode = textinput.EchoNormal
		m.input.Placeholder = "Enter a URL"
		m.input.SetValue(m.snap.BrowserURL)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Token):
		if !m.snap.TokenRequired {
			return m.unavailable("Token entry")
		}
		m.mode = editToken
		m.input.EchoMode = textinput.EchoPassword
		m.input.Placeholder = "Session API token"
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Submit):
		if !c.Go {
			return m.unavailable("Go")
		}
		return m, m.call(func(ctx context.Context) (types.Snapshot, error) {
			return m.client.Navigate(ctx, "")
		})
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		value := m.input.Value()
		mode := m.mode
		m.stopEditing()

		if mode == editToken {
			return m, m.call(func(ctx context.Context) (types.Snapshot, error) {
				return m.client.SetToken(ctx, value)
			})
		}
		if m.snap.Controls.Go {
			return m, m.call(func(ctx context.Context) (types.Snapshot, error) {
				return m.client.Navigate(ctx, value)
			})
		}
		return m, m.call(func(ctx context.Context) (types.Snapshot, error) {
			return m.client.SetURL(ctx, value)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.mode = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) unavailable(control string) (tea.Model, tea.Cmd) {
	m.status = control + " is not available in the current state"
	return m, nil
}

// nextOS returns the catalog entry after the selected one, wrapping around.
func (m Model) nextOS() (string, bool) {
	if len(m.systems) == 0 {
		return "", false
	}
	for i, opt := range m.systems {
		if opt.ID == m.snap.SelectedOS {
			return m.systems[(i+1)%len(m.systems)].ID, true
		}
	}
	return m.systems[0].ID, true
}

func (m Model) call(fn func(context.Context) (types.Snapshot, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		snap, err := fn(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	return m.call(m.client.Snapshot)
}

func (m Model) loadSystems() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		systems, err := client.Systems(ctx)
		return systemsMsg{systems: systems, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
