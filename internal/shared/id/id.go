// Package id mints prefixed ULIDs ("vm_01J...", "req_01J...") so session
// tokens and request ids sort by creation time and read clearly in logs.
package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	SessionPrefix = "vm"
	RequestPrefix = "req"
)

// SessionID is a local VM session token.
type SessionID string

// RequestID tags an API request or trace span.
type RequestID string

func (s SessionID) String() string { return string(s) }
func (r RequestID) String() string { return string(r) }

// Source hands out monotonic ULIDs. It is safe for concurrent use.
type Source struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewSource returns a Source reading entropy from crypto/rand.
func NewSource() *Source {
	return &Source{now: time.Now, entropy: ulid.Monotonic(rand.Reader, 0)}
}

var shared = NewSource()

// Shared returns the process-wide Source.
func Shared() *Source { return shared }

// ULID returns the next identifier.
func (s *Source) ULID() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy)
}

// Prefixed returns prefix + "_" + the next ULID.
func (s *Source) Prefixed(prefix string) string {
	return prefix + "_" + s.ULID().String()
}

// NewSessionID mints a session token from the shared Source.
func NewSessionID() SessionID { return SessionID(shared.Prefixed(SessionPrefix)) }

// NewRequestID mints a request id from the shared Source.
func NewRequestID() RequestID { return RequestID(shared.Prefixed(RequestPrefix)) }

// Split separates "prefix_ULID"; ok is false unless the ULID part parses.
func Split(prefixed string) (prefix, raw string, ok bool) {
	prefix, raw, found := strings.Cut(prefixed, "_")
	if !found {
		return "", "", false
	}
	if _, err := ulid.ParseStrict(raw); err != nil {
		return "", "", false
	}
	return prefix, raw, true
}

// Timestamp reports when a prefixed or bare ULID was minted.
func Timestamp(s string) (time.Time, error) {
	if _, raw, ok := Split(s); ok {
		s = raw
	}
	parsed, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
