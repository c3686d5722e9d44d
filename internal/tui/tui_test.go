package tui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

type recordedCall struct {
	Method string
	Path   string
	Body   string
}

// fakeConsole answers every API call with the same snapshot and records it.
type fakeConsole struct {
	mu     sync.Mutex
	calls  []recordedCall
	snap   types.Snapshot
	status int
}

func newFakeConsole(t *testing.T, snap types.Snapshot) (*fakeConsole, *Client) {
	t.Helper()
	f := &fakeConsole{snap: snap, status: http.StatusOK}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL)
}

func (f *fakeConsole) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	status, snap := f.status, f.snap
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "operation not permitted in current state"})
		return
	}
	if r.URL.Path == "/api/os" {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"systems": testSystems()})
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (f *fakeConsole) lastCall() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return recordedCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeConsole) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testSystems() []types.OSOption {
	return []types.OSOption{
		{ID: "windows10", Name: "Windows 10", Version: "Pro 22H2"},
		{ID: "windows11", Name: "Windows 11", Version: "Pro 23H2"},
		{ID: "android", Name: "Android", Version: "15.0"},
	}
}

func inactiveSnapshot() types.Snapshot {
	return types.Snapshot{
		SelectedOS: "windows10",
		OS:         testSystems()[0],
		State:      types.StateInactive,
		BrowserURL: "https://www.google.com",
		Controls: types.Controls{
			SelectOS:   true,
			PowerOn:    true,
			PauseLabel: "Pause",
			URLInput:   true,
		},
	}
}

func activeSnapshot() types.Snapshot {
	snap := inactiveSnapshot()
	snap.State = types.StateActive
	snap.SessionID = "ses_01J0000000000000000000000"
	snap.SessionBadge = "ses_01J00000..."
	snap.Controls = types.Controls{
		SelectOS:   true,
		PowerOff:   true,
		Restart:    true,
		Pause:      true,
		PauseLabel: "Pause",
		FullScreen: true,
		URLInput:   true,
		Go:         true,
	}
	return snap
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msg to the model and runs the resulting command, if any.
func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if cmd == nil {
		return model, nil
	}
	out := cmd()
	if snap, ok := out.(snapshotMsg); ok {
		next, _ = model.Update(snap)
		model = next.(Model)
	}
	return model, out
}

// update feeds msg to the model without running the resulting command.
func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func loadedModel(client *Client, snap types.Snapshot) Model {
	m := New(client)
	m.snap = snap
	m.loaded = true
	m.systems = testSystems()
	return m
}

func TestClientSnapshot(t *testing.T) {
	fake, client := newFakeConsole(t, activeSnapshot())

	snap, err := client.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Equal(t, types.StateActive, snap.State)
	assert.Equal(t, recordedCall{Method: "GET", Path: "/api/vm"}, fake.lastCall())

	systems, err := client.Systems(t.Context())
	require.NoError(t, err)
	assert.Len(t, systems, 3)
}

func TestClientErrorBody(t *testing.T) {
	fake, client := newFakeConsole(t, inactiveSnapshot())
	fake.status = http.StatusConflict

	_, err := client.PowerOff(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation not permitted")
}

func TestPowerKeyFollowsControls(t *testing.T) {
	fake, client := newFakeConsole(t, activeSnapshot())

	m := loadedModel(client, inactiveSnapshot())
	m, _ = press(t, m, runes("p"))
	assert.Equal(t, "/api/vm/power-on", fake.lastCall().Path)
	assert.Equal(t, types.StateActive, m.snap.State)

	m, _ = press(t, m, runes("p"))
	assert.Equal(t, "/api/vm/power-off", fake.lastCall().Path)
}

func TestDisabledControlsSendNothing(t *testing.T) {
	fake, client := newFakeConsole(t, inactiveSnapshot())
	m := loadedModel(client, inactiveSnapshot())

	for _, msg := range []tea.KeyMsg{runes("r"), {Type: tea.KeySpace}, {Type: tea.KeyEnter}, runes("t")} {
		var out tea.Msg
		m, out = press(t, m, msg)
		assert.Nil(t, out)
		assert.Contains(t, m.status, "not available")
	}
	assert.Equal(t, 0, fake.callCount())
}

func TestPauseAndRestart(t *testing.T) {
	fake, client := newFakeConsole(t, activeSnapshot())
	m := loadedModel(client, activeSnapshot())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, "/api/vm/toggle-pause", fake.lastCall().Path)

	_, _ = press(t, m, runes("r"))
	assert.Equal(t, "/api/vm/restart", fake.lastCall().Path)
}

func TestNextOSWraps(t *testing.T) {
	fake, client := newFakeConsole(t, inactiveSnapshot())

	snap := inactiveSnapshot()
	snap.SelectedOS = "android"
	m := loadedModel(client, snap)

	_, _ = press(t, m, runes("o"))
	call := fake.lastCall()
	assert.Equal(t, "/api/vm/os", call.Path)
	assert.JSONEq(t, `{"id":"windows10"}`, call.Body)
}

func TestEditURLWhileInactiveSetsURL(t *testing.T) {
	fake, client := newFakeConsole(t, inactiveSnapshot())
	m := loadedModel(client, inactiveSnapshot())

	m = update(m, runes("u"))
	require.Equal(t, editURL, m.mode)
	assert.Equal(t, "https://www.google.com", m.input.Value())

	m.input.SetValue("example.com")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, editNone, m.mode)

	call := fake.lastCall()
	assert.Equal(t, "PUT", call.Method)
	assert.Equal(t, "/api/vm/url", call.Path)
	assert.JSONEq(t, `{"url":"example.com"}`, call.Body)
}

func TestEditURLWhileActiveNavigates(t *testing.T) {
	fake, client := newFakeConsole(t, activeSnapshot())
	m := loadedModel(client, activeSnapshot())

	m = update(m, runes("u"))
	m.input.SetValue("https://go.dev")
	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	call := fake.lastCall()
	assert.Equal(t, "/api/vm/navigate", call.Path)
	assert.JSONEq(t, `{"url":"https://go.dev"}`, call.Body)
}

func TestEditCancel(t *testing.T) {
	fake, client := newFakeConsole(t, inactiveSnapshot())
	m := loadedModel(client, inactiveSnapshot())

	m = update(m, runes("u"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, editNone, m.mode)
	assert.Equal(t, 0, fake.callCount())
}

func TestTokenEntry(t *testing.T) {
	snap := inactiveSnapshot()
	snap.TokenRequired = true
	fake, client := newFakeConsole(t, snap)
	m := loadedModel(client, snap)

	assert.Contains(t, m.View(), "session API token")

	m = update(m, runes("t"))
	require.Equal(t, editToken, m.mode)
	m.input.SetValue("secret")
	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	call := fake.lastCall()
	assert.Equal(t, "PUT", call.Method)
	assert.Equal(t, "/api/vm/token", call.Path)
	assert.JSONEq(t, `{"token":"secret"}`, call.Body)
}

func TestErrorsAreShown(t *testing.T) {
	fake, client := newFakeConsole(t, activeSnapshot())
	fake.status = http.StatusConflict
	m := loadedModel(client, activeSnapshot())

	m, _ = press(t, m, runes("r"))
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "operation not permitted")
}

func TestQuit(t *testing.T) {
	m := loadedModel(nil, inactiveSnapshot())
	_, out := press(t, m, runes("q"))
	assert.IsType(t, tea.QuitMsg{}, out)
}

func TestView(t *testing.T) {
	m := New(nil)
	assert.Contains(t, m.View(), "Connecting")

	m = loadedModel(nil, activeSnapshot())
	m.snap.Stats = types.Stats{CPU: 25, RAM: 40, Network: 100}
	m.snap.Indicators = map[string]types.Indicator{"windows10": types.IndicatorActive}

	view := m.View()
	assert.Contains(t, view, "running")
	assert.Contains(t, view, "ses_01J00000...")
	assert.Contains(t, view, "Windows 11")
	assert.Contains(t, view, " 25%")
	assert.Contains(t, view, "100 KB/s")
	assert.True(t, strings.Contains(view, "https://www.google.com"))
}
