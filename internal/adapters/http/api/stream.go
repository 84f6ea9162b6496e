package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/headcount/pkg/logger"
	"github.com/okian/headcount/pkg/metrics"
)

const streamWriteWait = 5 * time.Second

// StreamHandler pushes one JSON snapshot per applied tick over a websocket.
type StreamHandler struct {
	feed     Feed
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(feed Feed) *StreamHandler {
	return &StreamHandler{feed: feed}
}

// HandleStream handles GET /stream websocket upgrades.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	sub, err := h.feed.Subscribe()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "feed_closed", WrapKind(op, ErrUnavailable, err))
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.RecordErrorByComponent("stream", "upgrade")
		logger.Get().Named("stream").Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()
	metrics.RecordHTTPRequest("stream", r.Method, "101", 0)

	// the read side only exists to notice the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case snap, ok := <-sub.C():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(streamWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
