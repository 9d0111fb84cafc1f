package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/hestia/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and streams the user's
// change notifications until the connection closes. originPatterns limits
// cross-origin upgrades; an empty list allows same-origin only.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With("component", "websocket")
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("client connected", "user_id", userID)
		client := NewClient(hub, conn, userID)
		client.Run(r.Context())
		logger.Debug("client disconnected", "user_id", userID)
	}
}
