package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // console may be embedded by other origins
	},
}

// SnapshotSource provides the current console state. Observe must hold off
// published events while fn runs.
type SnapshotSource interface {
	Snapshot() types.Snapshot
	Observe(fn func(types.Snapshot))
}

// Handler manages WebSocket connections
type Handler struct {
	hub    *Hub
	source SnapshotSource
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, source SnapshotSource) *Handler {
	return &Handler{hub: hub, source: source}
}

// HandleConnection upgrades the request, sends the current snapshot and
// then streams controller events until the client goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	// The client joins the hub in the same critical section that reads the
	// snapshot, so no transition can fall between the two.
	var (
		cl     *client
		encErr error
	)
	h.source.Observe(func(snap types.Snapshot) {
		var initial []byte
		if initial, encErr = encodeState(snap); encErr == nil {
			cl = h.hub.add(conn, initial)
		}
	})
	if encErr != nil {
		h.hub.logger.Error("Failed to encode snapshot", zap.Error(encErr))
		conn.Close()
		return
	}
	h.hub.recordOut(string(types.EventState))
	h.hub.logger.Debug("WebSocket client connected", zap.String("remote", c.ClientIP()))
	defer func() {
		h.hub.remove(cl)
		h.hub.logger.Debug("WebSocket client disconnected", zap.String("remote", c.ClientIP()))
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.reply(cl, "error", map[string]interface{}{"type": "error", "message": "invalid message"})
			continue
		}
		if h.hub.metrics != nil {
			h.hub.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "ping":
			h.reply(cl, "pong", map[string]interface{}{"type": "pong", "timestamp": time.Now().UnixMilli()})
		case "snapshot":
			if out, err := h.snapshotMessage(); err == nil {
				h.hub.sendTo(cl, string(types.EventState), out)
			}
		default:
			h.reply(cl, "error", map[string]interface{}{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *Handler) snapshotMessage() ([]byte, error) {
	return encodeState(h.source.Snapshot())
}

func encodeState(snap types.Snapshot) ([]byte, error) {
	return sonic.Marshal(types.Event{
		Type:      types.EventState,
		Snapshot:  &snap,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Handler) reply(cl *client, msgType string, payload map[string]interface{}) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return
	}
	h.hub.sendTo(cl, msgType, data)
}
