package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cadastro/cmd/internal/activity"

	"github.com/coder/websocket"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPingTimeout  = 5 * time.Second
)

// handleLogStream pushes the caller's new activity entries over a websocket.
// The stream is server to client only; inbound frames are discarded.
func (h *Handler) handleLogStream(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	if p.UserID == 0 {
		writeError(w, http.StatusNotFound, "not_found", msgUserNotFound)
		return
	}

	// Subscribe before the upgrade so nothing recorded after the handshake is missed.
	entries, unsubscribe := h.activity.Subscribe(p.UserID)
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.StreamOrigins,
	})
	if err != nil {
		h.log.Info("ws.accept.fail", "user_id", p.UserID, "err", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	h.log.Info("ws.stream.open", "user_id", p.UserID)

	// CloseRead handles control frames and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ping := time.NewTicker(h.cfg.StreamPing)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("ws.stream.close", "user_id", p.UserID)
			return
		case e, open := <-entries:
			if !open {
				_ = conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			if err := writeEntry(ctx, conn, e); err != nil {
				h.log.Info("ws.write.fail", "user_id", p.UserID, "close_status", websocket.CloseStatus(err), "err", err)
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, streamPingTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Info("ws.ping.fail", "user_id", p.UserID, "err", err)
				_ = conn.Close(websocket.StatusGoingAway, "heartbeat failed")
				return
			}
		}
	}
}

func writeEntry(parent context.Context, conn *websocket.Conn, e activity.Entry) error {
	ctx, cancel := context.WithTimeout(parent, streamWriteTimeout)
	defer cancel()

	b, err := json.Marshal(toLogEntryResponse(e))
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
