package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Client calls the console REST API.
type Client struct {
	resty *resty.Client
}

// apiError is the error body the console API returns.
type apiError struct {
	Error string `json:"error"`
}

// NewClient creates a client for the console at baseURL (e.g. "http://127.0.0.1:8000").
func NewClient(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &Client{resty: r}
}

// Snapshot fetches GET /api/vm.
func (c *Client) Snapshot(ctx context.Context) (types.Snapshot, error) {
	return c.do(ctx, "GET", "/api/vm", nil)
}

// Systems fetches the OS catalog.
func (c *Client) Systems(ctx context.Context) ([]types.OSOption, error) {
	var out struct {
		Systems []types.OSOption `json:"systems"`
	}
	var apiErr apiError
	resp, err := c.resty.R().SetContext(ctx).SetResult(&out).SetError(&apiErr).Get("/api/os")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list systems: %s", errorText(resp, apiErr))
	}
	return out.Systems, nil
}

// SelectOS sends POST /api/vm/os.
func (c *Client) SelectOS(ctx context.Context, id string) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/os", types.SelectOSRequest{ID: id})
}

// PowerOn sends POST /api/vm/power-on.
func (c *Client) PowerOn(ctx context.Context) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/power-on", nil)
}

// PowerOff sends POST /api/vm/power-off.
func (c *Client) PowerOff(ctx context.Context) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/power-off", nil)
}

// Restart sends POST /api/vm/restart.
func (c *Client) Restart(ctx context.Context) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/restart", nil)
}

// TogglePause sends POST /api/vm/toggle-pause.
func (c *Client) TogglePause(ctx context.Context) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/toggle-pause", nil)
}

// Navigate sends POST /api/vm/navigate with url.
func (c *Client) Navigate(ctx context.Context, url string) (types.Snapshot, error) {
	return c.do(ctx, "POST", "/api/vm/navigate", types.NavigateRequest{URL: url})
}

// SetToken sends PUT /api/vm/token.
func (c *Client) SetToken(ctx context.Context, token string) (types.Snapshot, error) {
	return c.do(ctx, "PUT", "/api/vm/token", types.TokenRequest{Token: token})
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (types.Snapshot, error) {
	var snap types.Snapshot
	var apiErr apiError

	req := c.resty.R().SetContext(ctx).SetResult(&snap).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return types.Snapshot{}, err
	}
	if resp.IsError() {
		return types.Snapshot{}, fmt.Errorf("%s %s: %s", method, path, errorText(resp, apiErr))
	}
	return snap, nil
}

func errorText(resp *resty.Response, apiErr apiError) string {
	if apiErr.Error != "" {
		return apiErr.Error
	}
	return resp.Status()
}

// SetURL sends PUT /api/vm/url.
func (c *Client) SetURL(ctx context.Context, url string) (types.Snapshot, error) {
	return c.do(ctx, "PUT", "/api/vm/url", types.URLRequest{URL: url})
}
