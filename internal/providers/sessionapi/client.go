package sessionapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/logging"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Browser string
	Timeout time.Duration
	Retries int
	RPS     float64

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
	Tracer  *tracing.Tracer
}

// Client talks to the remote session service. It satisfies vm.Backend.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	browser string

	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	mu    sync.RWMutex
	token string
}

// New creates a session API client
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Browser == "" {
		opts.Browser = "chrome"
	}

	// Pooled transport from retryablehttp; retries are driven by resty.
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetTransport(retryClient.HTTPClient.Transport).
		SetHeader("User-Agent", "VMConsole/1.0").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := int(opts.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	logger := opts.Logger
	breaker := resilience.New("session-api", resilience.Options{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		IsFailure: countsAgainstBreaker,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
		browser: opts.Browser,
		logger:  logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
		token:   strings.TrimSpace(opts.Token),
	}
}

// SetToken replaces the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) {
	token = strings.TrimSpace(token)
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Info("Session API token updated", logging.Fingerprint("token", token))
}

// HasToken reports whether a token is configured.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Create starts a remote session showing target on the given OS.
func (c *Client) Create(ctx context.Context, os types.OSOption, target string) (types.Session, error) {
	var out createResponse
	body := createRequest{OS: os.ID, Version: os.Version, Browser: c.browser, URL: target}

	err := c.call(ctx, "create", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(body).SetResult(&out).Post("/sessions")
	})
	if err != nil {
		return types.Session{}, err
	}
	if out.ID == "" {
		return types.Session{}, fmt.Errorf("session API create: response has no session id")
	}

	c.logger.Info("Remote session created",
		zap.String("session_id", out.ID),
		zap.String("os", os.ID))

	return types.Session{ID: out.ID, ViewURL: out.URL, OS: os.ID, CreatedAt: time.Now()}, nil
}

// Navigate points an existing session at target.
func (c *Client) Navigate(ctx context.Context, s types.Session, target string) error {
	return c.call(ctx, "navigate", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(navigateRequest{URL: target}).
			Post("/sessions/" + url.PathEscape(s.ID) + "/navigate")
	})
}

// Destroy ends a session.
func (c *Client) Destroy(ctx context.Context, s types.Session) error {
	err := c.call(ctx, "delete", func(req *resty.Request) (*resty.Response, error) {
		return req.Delete("/sessions/" + url.PathEscape(s.ID))
	})
	if err == nil {
		c.logger.Info("Remote session deleted", zap.String("session_id", s.ID))
	}
	return err
}

// call runs one request through the limiter, breaker, tracer and metrics.
func (c *Client) call(ctx context.Context, operation string, do func(*resty.Request) (*resty.Response, error)) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return ErrNoToken
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("session API %s: rate limit: %w", operation, err)
	}

	run := func(ctx context.Context) error {
		timer := monitoring.NewTimer(c.metrics, operation)
		_, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
			req := c.resty.R().
				SetContext(ctx).
				SetAuthToken(token).
				SetHeader("X-Request-ID", uuid.NewString())
			tracing.Inject(ctx, req.Header)

			resp, err := do(req)
			if err != nil {
				return nil, fmt.Errorf("session API %s: %w", operation, err)
			}
			if resp.IsError() {
				return resp, &APIError{
					Operation: operation,
					Status:    resp.StatusCode(),
					Body:      strings.TrimSpace(resp.String()),
				}
			}
			return resp, nil
		})

		status := "success"
		if err != nil {
			status = "error"
		}
		duration := timer.Stop(status)

		if err != nil {
			c.logger.Error("Session API call failed",
				zap.String("operation", operation),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			c.logger.Debug("Session API call",
				zap.String("operation", operation),
				zap.Duration("duration", duration))
		}
		return err
	}

	if c.tracer != nil {
		return c.tracer.Trace(ctx, "sessionapi."+operation, run)
	}
	return run(ctx)
}
