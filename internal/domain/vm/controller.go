package vm

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/VMConsole/internal/domain/catalog"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/config"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/logging"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Renderer builds the display document for an OS and URL.
type Renderer interface {
	Render(os types.OSOption, target string) (string, error)
}

// Options configures a Controller.
type Options struct {
	Mode          string
	DefaultOS     string
	InitialURL    string
	StatsInterval time.Duration
	StatsHistory  int
	// Source seeds the stats sampler; nil picks a random seed.
	Source rand.Source
}

var allStates = []string{
	string(types.StateInactive),
	string(types.StateActive),
	string(types.StatePaused),
}

// Controller owns the console state. All operations are serialized.
type Controller struct {
	mu    sync.Mutex
	state State // Protected by mu

	catalog  *catalog.Catalog
	backend  Backend
	renderer Renderer
	sampler  *Sampler
	history  *History
	interval time.Duration

	publisher Publisher
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	stopStats context.CancelFunc
	statsGen  uint64
}

// NewController creates a controller with the VM powered off.
func NewController(cat *catalog.Catalog, backend Backend, renderer Renderer, opts Options) (*Controller, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmpty
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeSkin
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 2 * time.Second
	}

	selected, ok := cat.Lookup(opts.DefaultOS)
	if !ok {
		if opts.DefaultOS != "" {
			return nil, fmt.Errorf("default OS: %w: %q", ErrUnknownOS, opts.DefaultOS)
		}
		selected = cat.First()
	}

	initial := opts.InitialURL
	if initial == "" {
		initial = selected.DefaultURL
	}
	browserURL, err := NormalizeURL(initial)
	if err != nil {
		return nil, fmt.Errorf("initial URL: %w", err)
	}

	c := &Controller{
		catalog:   cat,
		backend:   backend,
		renderer:  renderer,
		sampler:   NewSampler(opts.Source),
		history:   NewHistory(opts.StatsHistory),
		interval:  opts.StatsInterval,
		publisher: nopPublisher{},
		logger:    logging.NewNop(),
	}

	c.state = State{
		Mode:       opts.Mode,
		OS:         selected,
		VM:         types.StateInactive,
		BrowserURL: browserURL,
		Display:    types.Display{Kind: types.DisplayBlank},
	}
	if holder, ok := backend.(tokenHolder); ok {
		c.state.HasToken = holder.HasToken()
	}

	return c, nil
}

// WithLogger sets the logger
func (c *Controller) WithLogger(logger *logging.Logger) *Controller {
	c.logger = logger
	return c
}

// WithMetrics adds metrics tracking to the controller
func (c *Controller) WithMetrics(metrics *monitoring.Metrics) *Controller {
	c.metrics = metrics
	if metrics != nil {
		metrics.SetVMState(string(c.state.VM), allStates...)
	}
	return c
}

// WithPublisher sets the event sink
func (c *Controller) WithPublisher(p Publisher) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		p = nopPublisher{}
	}
	c.publisher = p
	return c
}

// Catalog returns the OS catalog.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// Snapshot returns the externally visible state.
func (c *Controller) Snapshot() types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Observe calls fn with the current snapshot while no event can be
// published, so a subscriber registered inside fn misses nothing after it.
// fn must not call back into the controller.
func (c *Controller) Observe(fn func(types.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.snapshotLocked())
}

// Display returns the display descriptor and, for document displays, the
// rendered document.
func (c *Controller) Display() (types.Display, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Display, c.state.Document
}

// SelectOS selects an OS and resets the browser URL to its default.
// A running (unpaused) VM is restarted on the new OS.
func (c *Controller) SelectOS(ctx context.Context, osID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opt, ok := c.catalog.Lookup(osID)
	if !ok {
		c.record("select_os", ErrUnknownOS)
		return fmt.Errorf("%w: %q", ErrUnknownOS, osID)
	}

	next := c.state
	next.OS = opt
	next.BrowserURL = opt.DefaultURL
	c.commit(next, newNotice(types.NoticeInfo, "Switched to "+opt.Name))

	if c.state.Active() {
		if err := c.restartLocked(ctx); err != nil {
			c.record("select_os", err)
			return err
		}
	}
	c.record("select_os", nil)
	return nil
}

// PowerOn starts a session. Only valid while inactive.
func (c *Controller) PowerOn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.powerOnLocked(ctx)
	c.record("power_on", err)
	return err
}

func (c *Controller) powerOnLocked(ctx context.Context) error {
	prev := c.state
	if prev.VM != types.StateInactive {
		return ErrNotPermitted
	}
	if prev.Mode == config.ModeRemote && !prev.HasToken {
		c.notify(newNotice(types.NoticeInfo, "Enter your session API token before starting the virtual machine"))
		return ErrTokenRequired
	}

	session, err := c.backend.Create(ctx, prev.OS, prev.BrowserURL)
	if err != nil {
		return c.backendFailure("Failed to create VM session", err)
	}

	next := prev
	next.VM = types.StateActive
	next.Session = &session
	if err := c.loadDisplay(&next); err != nil {
		c.discard(ctx, session)
		return err
	}

	c.commit(next, newNotice(types.NoticeSuccess, "Virtual machine started"))
	return nil
}

// PowerOff ends the session. A failing remote delete is reported but the
// VM still ends up inactive.
func (c *Controller) PowerOff(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.powerOffLocked(ctx)
	c.record("power_off", err)
	return err
}

func (c *Controller) powerOffLocked(ctx context.Context) error {
	prev := c.state
	if prev.VM == types.StateInactive {
		return ErrNotPermitted
	}

	var notices []types.Notice
	if prev.Session != nil {
		if err := c.backend.Destroy(ctx, *prev.Session); err != nil {
			c.logger.Error("Failed to destroy session",
				zap.String("session_id", prev.Session.ID),
				zap.Error(err))
			notices = append(notices, newNotice(types.NoticeError, "Failed to close VM session: "+err.Error()))
		}
	}

	next := prev
	next.VM = types.StateInactive
	next.Session = nil
	next.Stats = types.Stats{}
	next.Document = ""
	next.Display = displayFor(prev.Display, types.StateInactive)

	notices = append(notices, newNotice(types.NoticeSuccess, "Virtual machine powered off"))
	c.commit(next, notices...)
	return nil
}

// Restart replaces the session and reloads the display, keeping the
// active or paused state. The old session survives a failed restart.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.restartLocked(ctx)
	c.record("restart", err)
	return err
}

func (c *Controller) restartLocked(ctx context.Context) error {
	prev := c.state
	if prev.VM == types.StateInactive {
		return ErrNotPermitted
	}

	session, err := c.backend.Create(ctx, prev.OS, prev.BrowserURL)
	if err != nil {
		return c.backendFailure("Failed to restart virtual machine", err)
	}

	next := prev
	next.Session = &session
	if err := c.loadDisplay(&next); err != nil {
		c.discard(ctx, session)
		return err
	}

	notices := []types.Notice{newNotice(types.NoticeSuccess, "Virtual machine restarted")}
	if prev.Session != nil {
		if err := c.backend.Destroy(ctx, *prev.Session); err != nil {
			c.logger.Warn("Failed to destroy replaced session",
				zap.String("session_id", prev.Session.ID),
				zap.Error(err))
			notices = append(notices, newNotice(types.NoticeWarning, "Previous VM session could not be closed: "+err.Error()))
		}
	}

	c.commit(next, notices...)
	return nil
}

// Pause dims the display and stops the stats timer.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.pauseLocked()
	c.record("pause", err)
	return err
}

func (c *Controller) pauseLocked() error {
	if c.state.VM != types.StateActive {
		return ErrNotPermitted
	}
	next := c.state
	next.VM = types.StatePaused
	next.Display = displayFor(next.Display, types.StatePaused)
	c.commit(next, newNotice(types.NoticeWarning, "Virtual machine paused"))
	return nil
}

// Resume reverses Pause.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.resumeLocked()
	c.record("resume", err)
	return err
}

func (c *Controller) resumeLocked() error {
	if c.state.VM != types.StatePaused {
		return ErrNotPermitted
	}
	next := c.state
	next.VM = types.StateActive
	next.Display = displayFor(next.Display, types.StateActive)
	c.commit(next, newNotice(types.NoticeSuccess, "Virtual machine resumed"))
	return nil
}

// TogglePause pauses an active VM or resumes a paused one.
func (c *Controller) TogglePause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	op := "pause"
	switch c.state.VM {
	case types.StateActive:
		err = c.pauseLocked()
	case types.StatePaused:
		op = "resume"
		err = c.resumeLocked()
	default:
		err = ErrNotPermitted
	}
	c.record(op, err)
	return err
}

// SetURL updates the browser URL without reloading the display.
func (c *Controller) SetURL(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.setURLLocked(raw)
	c.record("set_url", err)
	return err
}

func (c *Controller) setURLLocked(raw string) error {
	u, err := NormalizeURL(raw)
	if err != nil {
		return err
	}
	next := c.state
	next.BrowserURL = u
	c.commit(next)
	return nil
}

// SubmitURL loads the browser URL into the running session.
func (c *Controller) SubmitURL(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.submitLocked(ctx)
	c.record("navigate", err)
	return err
}

// Navigate sets the URL (when raw is non-empty) and submits it.
func (c *Controller) Navigate(ctx context.Context, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if raw != "" {
		if err := c.setURLLocked(raw); err != nil {
			c.record("navigate", err)
			return err
		}
	}
	err := c.submitLocked(ctx)
	c.record("navigate", err)
	return err
}

func (c *Controller) submitLocked(ctx context.Context) error {
	prev := c.state
	if !prev.Active() || prev.Session == nil {
		return ErrNotPermitted
	}

	if err := c.backend.Navigate(ctx, *prev.Session, prev.BrowserURL); err != nil {
		return c.backendFailure("Failed to navigate", err)
	}

	next := prev
	if err := c.loadDisplay(&next); err != nil {
		return err
	}
	c.commit(next, newNotice(types.NoticeSuccess, "Navigated to new URL"))
	return nil
}

// SetToken stores the session API token. Only remote backends take one.
func (c *Controller) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	holder, ok := c.backend.(tokenHolder)
	if !ok {
		c.record("set_token", ErrNotPermitted)
		return fmt.Errorf("%w: backend takes no token", ErrNotPermitted)
	}
	holder.SetToken(token)

	next := c.state
	next.HasToken = holder.HasToken()
	notice := newNotice(types.NoticeSuccess, "Session API token saved")
	if !next.HasToken {
		notice = newNotice(types.NoticeInfo, "Session API token cleared")
	}
	c.commit(next, notice)
	c.record("set_token", nil)
	return nil
}

// Shutdown powers the VM off and stops the stats timer.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.state.VM != types.StateInactive {
		err = c.powerOffLocked(ctx)
	}
	c.stopStatsLocked()
	return err
}

// commit installs next as the current state, applies side effects and
// publishes the state event followed by any notices. Called with mu held.
func (c *Controller) commit(next State, notices ...types.Notice) {
	prev := c.state
	c.state = next
	c.apply(prev, next)

	c.publisher.Publish(stateEvent(c.snapshotLocked()))
	for _, n := range notices {
		c.notify(n)
	}
}

// apply performs the side effects of a transition.
func (c *Controller) apply(prev, next State) {
	if next.Active() && !prev.Active() {
		c.startStatsLocked()
	}
	if !next.Active() && prev.Active() {
		c.stopStatsLocked()
		c.state.Stats = types.Stats{}
		c.history.Reset()
	}

	prevID, nextID := sessionID(prev.Session), sessionID(next.Session)
	if prevID != nextID && c.metrics != nil {
		if prevID != "" {
			c.metrics.IncSessionsDestroyed()
		}
		if nextID != "" {
			c.metrics.IncSessionsCreated()
		}
	}

	if prev.VM != next.VM {
		if c.metrics != nil {
			c.metrics.SetVMState(string(next.VM), allStates...)
		}
		c.logger.Info("VM state changed",
			zap.String("from", string(prev.VM)),
			zap.String("to", string(next.VM)),
			zap.String("os", next.OS.ID),
			zap.String("session_id", nextID))
	}
}

func (c *Controller) notify(n types.Notice) {
	c.publisher.Publish(noticeEvent(n))
}

// loadDisplay (re)generates the display content for next.
func (c *Controller) loadDisplay(next *State) error {
	d := types.Display{Revision: next.Display.Revision + 1}

	if next.Session != nil && next.Session.ViewURL != "" {
		d.Kind = types.DisplayRemote
		d.URL = next.Session.ViewURL
		next.Document = ""
	} else {
		doc, err := c.renderer.Render(next.OS, next.BrowserURL)
		if err != nil {
			return fmt.Errorf("render display: %w", err)
		}
		d.Kind = types.DisplayDocument
		d.URL = next.BrowserURL
		next.Document = doc
	}

	next.Display = displayFor(d, next.VM)
	return nil
}

// discard destroys a session that never became current.
func (c *Controller) discard(ctx context.Context, s types.Session) {
	if err := c.backend.Destroy(ctx, s); err != nil {
		c.logger.Warn("Failed to discard session", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (c *Controller) backendFailure(message string, err error) error {
	c.logger.Error(message, zap.String("os", c.state.OS.ID), zap.Error(err))
	c.notify(newNotice(types.NoticeError, message+": "+err.Error()))
	return fmt.Errorf("%w: %w", ErrBackend, err)
}

func (c *Controller) record(op string, err error) {
	if c.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrBackend):
		result = "error"
	default:
		result = "rejected"
	}
	c.metrics.RecordTransition(op, result)
}

func (c *Controller) snapshotLocked() types.Snapshot {
	s := c.state
	snap := types.Snapshot{
		Mode:          s.Mode,
		SelectedOS:    s.OS.ID,
		OS:            s.OS,
		State:         s.VM,
		BrowserURL:    s.BrowserURL,
		Stats:         s.Stats,
		Averages:      c.history.Averages(),
		Controls:      DeriveControls(s.VM, s.Mode, s.HasToken),
		Display:       s.Display,
		Indicators:    Indicators(c.catalog.IDs(), s.OS.ID, s.VM),
		TokenRequired: s.Mode == config.ModeRemote,
		HasToken:      s.HasToken,
	}
	if s.Session != nil {
		snap.SessionID = s.Session.ID
		snap.SessionBadge = s.Session.Badge()
	}
	return snap
}

func (c *Controller) startStatsLocked() {
	c.stopStatsLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.stopStats = cancel
	c.statsGen++
	go c.runStats(ctx, c.statsGen)
}

func (c *Controller) stopStatsLocked() {
	if c.stopStats != nil {
		c.stopStats()
		c.stopStats = nil
	}
	c.statsGen++
}

func (c *Controller) runStats(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(gen)
		}
	}
}

// tick takes one reading; stale generations are ignored so a tick racing a
// stop never writes non-zero stats into a stopped VM.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.statsGen || !c.state.Active() {
		return
	}
	stats := c.sampler.Sample()
	c.state.Stats = stats
	c.history.Add(stats)
	c.publisher.Publish(statsEvent(stats, c.history.Averages()))
}

func sessionID(s *types.Session) string {
	if s == nil {
		return ""
	}
	return s.ID
}
