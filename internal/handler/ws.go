package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"wanderer/internal/broadcast"
)

// WSHandler streams change events to map clients. Each connection gets its
// own buffered hub subscription; a client that cannot keep up loses events
// rather than blocking the writers.
type WSHandler struct {
	Hub    *broadcast.Hub
	Logger *zap.Logger
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/ws", h.serve)
}

// @Summary Subscribe to map change events
// @Tags events
// @Param system_id query string false "only events for one system"
// @Router /api/v1/ws [get]
func (h *WSHandler) serve(c *gin.Context) {
	if h.Hub == nil {
		c.AbortWithStatus(500)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Debug("ws accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	systemFilter := strings.TrimSpace(c.Query("system_id"))

	id, events := h.Hub.Subscribe(32)
	defer h.Hub.Unsubscribe(id)

	ctx := c.Request.Context()
	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if systemFilter != "" && ev.SystemID != systemFilter {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
