package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/VMConsole/internal/domain/skin"
	"github.com/GriffinCanCode/VMConsole/internal/domain/vm"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/logging"
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// ClientCounter reports connected stream clients.
type ClientCounter interface {
	ClientCount() int
}

// Handlers contains all HTTP handlers
type Handlers struct {
	controller *vm.Controller
	metrics    *monitoring.Metrics
	logger     *logging.Logger
	clients    ClientCounter
	console    *consolePage
	sandbox    string
}

// NewHandlers creates a new handler set
func NewHandlers(controller *vm.Controller, metrics *monitoring.Metrics, logger *logging.Logger, clients ClientCounter) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		controller: controller,
		metrics:    metrics,
		logger:     logger,
		clients:    clients,
		console:    newConsolePage(),
		sandbox:    skin.Sandbox(false),
	}
}

// WithSandbox sets the sandbox attribute of the console's display frame.
func (h *Handlers) WithSandbox(sandbox string) *Handlers {
	h.sandbox = sandbox
	return h
}

// Register mounts every console route on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Console)
	router.GET("/health", h.Health)
	router.GET("/vm/display", h.Display)

	api := router.Group("/api")
	api.GET("/os", h.ListOS)
	api.GET("/vm", h.GetVM)
	api.POST("/vm/os", h.SelectOS)
	api.POST("/vm/power-on", h.PowerOn)
	api.POST("/vm/power-off", h.PowerOff)
	api.POST("/vm/restart", h.Restart)
	api.POST("/vm/pause", h.Pause)
	api.POST("/vm/resume", h.Resume)
	api.POST("/vm/toggle-pause", h.TogglePause)
	api.PUT("/vm/url", h.SetURL)
	api.POST("/vm/navigate", h.Navigate)
	api.PUT("/vm/token", h.SetToken)
	api.POST("/logs", h.StreamLogs)
	api.GET("/metrics", h.MetricsSnapshot)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	snap := h.controller.Snapshot()
	clients := 0
	if h.clients != nil {
		clients = h.clients.ClientCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "vmconsole",
		"version":    Version,
		"mode":       snap.Mode,
		"vm_state":   snap.State,
		"ws_clients": clients,
	})
}

// ListOS lists the selectable operating systems
func (h *Handlers) ListOS(c *gin.Context) {
	snap := h.controller.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"systems":    h.controller.Catalog().List(),
		"selected":   snap.SelectedOS,
		"indicators": snap.Indicators,
	})
}

// GetVM returns the current snapshot
func (h *Handlers) GetVM(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Snapshot())
}

// SelectOS switches the operating system
func (h *Handlers) SelectOS(c *gin.Context) {
	var req types.SelectOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: id is required"})
		return
	}
	h.respond(c, h.controller.SelectOS(c.Request.Context(), req.ID))
}

// PowerOn starts the virtual machine
func (h *Handlers) PowerOn(c *gin.Context) {
	h.respond(c, h.controller.PowerOn(c.Request.Context()))
}

// PowerOff stops the virtual machine
func (h *Handlers) PowerOff(c *gin.Context) {
	h.respond(c, h.controller.PowerOff(c.Request.Context()))
}

// Restart replaces the running session
func (h *Handlers) Restart(c *gin.Context) {
	h.respond(c, h.controller.Restart(c.Request.Context()))
}

// Pause pauses the virtual machine
func (h *Handlers) Pause(c *gin.Context) {
	h.respond(c, h.controller.Pause())
}

// Resume resumes a paused virtual machine
func (h *Handlers) Resume(c *gin.Context) {
	h.respond(c, h.controller.Resume())
}

// TogglePause pauses or resumes depending on the current state
func (h *Handlers) TogglePause(c *gin.Context) {
	h.respond(c, h.controller.TogglePause())
}

// SetURL updates the address bar
func (h *Handlers) SetURL(c *gin.Context) {
	var req types.URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: url is required"})
		return
	}
	h.respond(c, h.controller.SetURL(req.URL))
}

// Navigate loads the current URL, or the given one, into the session
func (h *Handlers) Navigate(c *gin.Context) {
	var req types.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.respond(c, h.controller.Navigate(c.Request.Context(), req.URL))
}

// SetToken stores the session API token
func (h *Handlers) SetToken(c *gin.Context) {
	var req types.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.respond(c, h.controller.SetToken(req.Token))
}

// MetricsSnapshot returns the JSON metrics summary
func (h *Handlers) MetricsSnapshot(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// respond writes the snapshot on success or the mapped error.
func (h *Handlers) respond(c *gin.Context, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.controller.Snapshot())
}
