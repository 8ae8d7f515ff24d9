// internal/app/features/live/handler.go
package live

import (
	"net/http"

	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/app/system/httpjson"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests to websocket connections and
// hands them to the hub.
type Handler struct {
	Hub *Hub
	Log *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler constructs a live Handler bound to the given hub.
func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Hub: hub,
		Log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from the SPA origin; same-host serving
			// makes the default same-origin check correct. Token auth
			// happens before the upgrade.
		},
	}
}

// Serve handles GET /ws. The caller must already be authenticated; the
// route wraps this in the token middleware, which also accepts a
// ?token= query parameter since browsers cannot set headers on
// websocket dials.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("sign in to subscribe to updates"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:    h.Hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		userID: ident.ID,
		log:    h.Log,
	}

	select {
	case h.Hub.register <- c:
	case <-h.Hub.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
