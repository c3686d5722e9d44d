package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock, opts Options) *Breaker {
	opts.Now = clock.Now
	return New("test", opts)
}

func fail() (string, error)    { return "", errBoom }
func succeed() (string, error) { return "ok", nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		threshold     uint32
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{name: "stays closed on successes", threshold: 3, requests: []bool{true, true, true}, expectedState: StateClosed},
		{name: "opens after consecutive failures", threshold: 3, requests: []bool{false, false, false}, expectedState: StateOpen},
		{name: "success resets the streak", threshold: 3, requests: []bool{false, false, true, false, false}, expectedState: StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, Options{Threshold: tt.threshold, Cooldown: time.Minute})

			for _, success := range tt.requests {
				if success {
					_, _ = Do(breaker, succeed)
				} else {
					_, _ = Do(breaker, fail)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerOpenRejectsImmediately(t *testing.T) {
	breaker := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, Options{Threshold: 2, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		_, _ = Do(breaker, fail)
	}
	require.Equal(t, StateOpen, breaker.State())

	called := false
	_, err := Do(breaker, func() (string, error) {
		called = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, Options{Threshold: 1, Cooldown: 10 * time.Second})

	_, _ = Do(breaker, fail)
	require.Equal(t, StateOpen, breaker.State())

	clock.Advance(10 * time.Second)
	assert.Equal(t, StateHalfOpen, breaker.State())

	// Only one probe at a time
	require.NoError(t, breaker.Allow())
	assert.ErrorIs(t, breaker.Allow(), ErrCircuitOpen)

	breaker.Record(nil)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, uint32(0), breaker.Failures())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	breaker := newTestBreaker(clock, Options{Threshold: 3, Cooldown: time.Second})

	for i := 0; i < 3; i++ {
		_, _ = Do(breaker, fail)
	}
	clock.Advance(time.Second)

	_, err := Do(breaker, fail)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	errClient := errors.New("bad request")
	breaker := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, Options{
		Threshold: 1,
		IsFailure: func(err error) bool { return !errors.Is(err, errClient) },
	})

	_, err := Do(breaker, func() (int, error) { return 0, errClient })
	assert.ErrorIs(t, err, errClient)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerCallbacks(t *testing.T) {
	var transitions []string
	clock := &fakeClock{t: time.Unix(0, 0)}

	breaker := newTestBreaker(clock, Options{
		Threshold: 2,
		Cooldown:  time.Second,
		OnStateChange: func(name string, from, to State) {
			assert.Equal(t, "test", name)
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_, _ = Do(breaker, fail)
	_, _ = Do(breaker, fail)
	clock.Advance(time.Second)
	_, _ = Do(breaker, succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestBreakerStateCallbackRunsUnlocked(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var breaker *Breaker
	var seen []uint32
	breaker = newTestBreaker(clock, Options{
		Threshold: 1,
		Cooldown:  time.Second,
		OnStateChange: func(_ string, _, to State) {
			// re-entering the breaker must not deadlock
			seen = append(seen, breaker.Failures())
		},
	})

	_, _ = Do(breaker, fail)
	clock.Advance(time.Second)

	done := make(chan State, 1)
	go func() { done <- breaker.State() }()
	select {
	case state := <-done:
		assert.Equal(t, StateHalfOpen, state)
	case <-time.After(time.Second):
		t.Fatal("State blocked while notifying")
	}
	assert.Len(t, seen, 2)
}
