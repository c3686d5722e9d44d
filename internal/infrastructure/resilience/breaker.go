package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Options configures a Breaker.
type Options struct {
	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold uint32
	// Cooldown is how long the circuit stays open before a probe is allowed.
	Cooldown time.Duration
	// IsFailure decides whether an error counts against the circuit.
	// Nil means every non-nil error counts.
	IsFailure func(error) bool
	// OnStateChange is called (outside the lock) whenever the state changes.
	OnStateChange func(name string, from, to State)
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Breaker trips after consecutive failures and lets a single probe through
// once the cooldown has elapsed.
type Breaker struct {
	name string
	opts Options

	mu       sync.Mutex
	state    State
	failures uint32
	openedAt time.Time
	probing  bool
}

// New creates a breaker; zero options get defaults (5 failures, 30s cooldown).
func New(name string, opts Options) *Breaker {
	if opts.Threshold == 0 {
		opts.Threshold = 5
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.IsFailure == nil {
		opts.IsFailure = func(err error) bool { return err != nil }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Breaker{name: name, opts: opts}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, promoting open to half-open after the cooldown.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.refresh()
	state := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Allow reports whether a call may proceed. In half-open state only one
// probe is admitted until it is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	from, to := b.refresh()
	var err error
	switch b.state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			err = ErrCircuitOpen
		} else {
			b.probing = true
		}
	}
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

// Record feeds the outcome of an admitted call back into the breaker.
func (b *Breaker) Record(err error) {
	failed := err != nil && b.opts.IsFailure(err)

	b.mu.Lock()
	prev := b.state
	b.probing = false
	if failed {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.Threshold {
			b.state = StateOpen
			b.openedAt = b.opts.Now()
		}
	} else {
		b.failures = 0
		b.state = StateClosed
	}
	next := b.state
	b.mu.Unlock()

	if prev != next {
		b.notify(prev, next)
	}
}

// refresh must be called with mu held.
func (b *Breaker) refresh() (State, State) {
	if b.state == StateOpen && b.opts.Now().Sub(b.openedAt) >= b.opts.Cooldown {
		b.state = StateHalfOpen
		b.probing = false
		return StateOpen, StateHalfOpen
	}
	return b.state, b.state
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.opts.OnStateChange != nil {
		b.opts.OnStateChange(b.name, from, to)
	}
}

// Do runs fn through the breaker.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.Allow(); err != nil {
		return zero, err
	}
	result, err := fn()
	b.Record(err)
	return result, err
}
