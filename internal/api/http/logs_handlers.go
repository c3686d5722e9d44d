package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	maxLogEntries    = 100
	maxLogMessageLen = 2048
)

// pageLog is one entry shipped by the console page's shipLog helper.
type pageLog struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
	Timestamp string         `json:"timestamp"`
}

// StreamLogs re-emits browser-side log entries through the server logger,
// tagged source=console.
func (h *Handlers) StreamLogs(c *gin.Context) {
	var body struct {
		Entries []pageLog `json:"entries"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log batch"})
		return
	}
	switch n := len(body.Entries); {
	case n == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty log batch"})
		return
	case n > maxLogEntries:
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "log batch too large"})
		return
	}

	page := h.logger.With(zap.String("source", "console"), zap.String("remote", c.ClientIP()))
	for _, e := range body.Entries {
		level, err := zapcore.ParseLevel(e.Level)
		if err != nil || level > zapcore.ErrorLevel {
			level = zapcore.InfoLevel
		}
		msg := e.Message
		if len(msg) > maxLogMessageLen {
			msg = msg[:maxLogMessageLen]
		}
		fields := []zap.Field{zap.String("page_time", e.Timestamp)}
		if len(e.Context) > 0 {
			fields = append(fields, zap.Any("context", e.Context))
		}
		page.Log(level, msg, fields...)
	}

	c.JSON(http.StatusOK, gin.H{"accepted": len(body.Entries)})
}
