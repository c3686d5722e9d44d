package sessionapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/logging"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

var windows11 = types.OSOption{ID: "windows11", Name: "Windows 11", Version: "Pro 23H2"}

type recordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      map[string]string
}

type fakeService struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	reply    string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method:    r.Method,
		Path:      r.URL.Path,
		Auth:      r.Header.Get("Authorization"),
		RequestID: r.Header.Get("X-Request-ID"),
	}
	_ = json.NewDecoder(r.Body).Decode(&rec.Body)

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply))
}

func (f *fakeService) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeService) respond(status int, reply string) {
	f.mu.Lock()
	f.status, f.reply = status, reply
	f.mu.Unlock()
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, svc *fakeService, token string) (*Client, *monitoring.Metrics) {
	t.Helper()
	server := httptest.NewServer(svc)
	t.Cleanup(server.Close)

	metrics := monitoring.NewMetrics()
	client := New(Options{
		BaseURL: server.URL + "/v1/",
		Token:   token,
		Logger:  &logging.Logger{Logger: zaptest.NewLogger(t)},
		Metrics: metrics,
	})
	return client, metrics
}

func TestCreate(t *testing.T) {
	svc := &fakeService{reply: `{"id":"sess-42","url":"https://view.example/sess-42"}`}
	client, _ := newTestClient(t, svc, "secret")

	session, err := client.Create(context.Background(), windows11, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "sess-42", session.ID)
	assert.Equal(t, "https://view.example/sess-42", session.ViewURL)
	assert.Equal(t, "windows11", session.OS)
	assert.False(t, session.CreatedAt.IsZero())

	req := svc.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/sessions", req.Path)
	assert.Equal(t, "Bearer secret", req.Auth)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, map[string]string{
		"os":      "windows11",
		"version": "Pro 23H2",
		"browser": "chrome",
		"url":     "https://example.com",
	}, req.Body)
}

func TestCreateWithoutIDFails(t *testing.T) {
	svc := &fakeService{reply: `{"url":"https://view.example"}`}
	client, _ := newTestClient(t, svc, "secret")

	_, err := client.Create(context.Background(), windows11, "https://example.com")
	assert.Error(t, err)
}

func TestNavigateAndDestroy(t *testing.T) {
	svc := &fakeService{reply: `{}`}
	client, _ := newTestClient(t, svc, "secret")
	session := types.Session{ID: "sess-42"}

	require.NoError(t, client.Navigate(context.Background(), session, "https://example.org"))
	req := svc.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/sessions/sess-42/navigate", req.Path)
	assert.Equal(t, "https://example.org", req.Body["url"])

	require.NoError(t, client.Destroy(context.Background(), session))
	req = svc.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/v1/sessions/sess-42", req.Path)
}

func TestRequestIDsAreUnique(t *testing.T) {
	svc := &fakeService{reply: `{}`}
	client, _ := newTestClient(t, svc, "secret")
	session := types.Session{ID: "s"}

	require.NoError(t, client.Navigate(context.Background(), session, "https://a.example"))
	first := svc.last(t).RequestID
	require.NoError(t, client.Navigate(context.Background(), session, "https://b.example"))

	assert.NotEqual(t, first, svc.last(t).RequestID)
}

func TestMissingToken(t *testing.T) {
	svc := &fakeService{}
	client, _ := newTestClient(t, svc, "")

	assert.False(t, client.HasToken())
	_, err := client.Create(context.Background(), windows11, "https://example.com")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, 0, svc.count())

	client.SetToken("  fresh  ")
	assert.True(t, client.HasToken())

	svc.respond(http.StatusCreated, `{"id":"s1"}`)
	_, err = client.Create(context.Background(), windows11, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", svc.last(t).Auth)
}

func TestAPIError(t *testing.T) {
	svc := &fakeService{status: http.StatusUnauthorized, reply: `{"error":"bad token"}`}
	client, metrics := newTestClient(t, svc, "wrong")

	_, err := client.Create(context.Background(), windows11, "https://example.com")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "create", apiErr.Operation)
	assert.Contains(t, apiErr.Error(), "bad token")
	assert.False(t, apiErr.Temporary())

	// client errors do not trip the breaker
	assert.Equal(t, resilience.StateClosed, client.BreakerState())
	assert.Equal(t, int64(1), metrics.Snapshot().RemoteFailures)
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	svc := &fakeService{status: http.StatusServiceUnavailable}
	client, _ := newTestClient(t, svc, "secret")
	session := types.Session{ID: "s"}

	for i := 0; i < 5; i++ {
		err := client.Navigate(context.Background(), session, "https://example.com")
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, client.BreakerState())

	err := client.Navigate(context.Background(), session, "https://example.com")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 5, svc.count())
}

func TestNoRetriesByDefault(t *testing.T) {
	svc := &fakeService{status: http.StatusBadGateway}
	client, _ := newTestClient(t, svc, "secret")

	err := client.Destroy(context.Background(), types.Session{ID: "s"})
	require.Error(t, err)
	assert.Equal(t, 1, svc.count())
}
