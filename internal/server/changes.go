package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
)

const (
	changesWriteTimeout = 10 * time.Second
	changesPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The datastore serves a local companion UI only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChanges streams a collection's change feed over a websocket. The
// optional since query parameter selects the start point: "beginning"
// replays existing documents first, anything else starts live.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	col, ok := s.collections[r.PathValue("collection")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	from := docstore.FromNow
	if r.URL.Query().Get("since") == "beginning" {
		from = docstore.FromBeginning
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub, err := col.Subscribe(r.Context(), from)
	if err != nil {
		conn.Close()
		return
	}
	defer sub.Cancel()
	defer conn.Close()

	// The read loop exists only to observe the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(changesPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(changesWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(changesWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
