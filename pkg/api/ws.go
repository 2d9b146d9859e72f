package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/health"
	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamResult struct {
	Index int `json:"index"`
	health.Result
}

type streamDone struct {
	Done  bool `json:"done"`
	Count int  `json:"count"`
}

// GET /api/check/stream
//
// The client sends one {"urls": [...]} message and receives a result per
// relay as soon as its probe finishes, then a {"done": true} message.
// Browsers cannot set headers on websocket requests, so the token may also
// be passed as ?token=.
func (a *Admin) CheckStream(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(TokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if !a.authorized(token) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn("ws_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBody)

	var req urlsRequest
	if err := conn.ReadJSON(&req); err != nil {
		a.Logger.Warn("ws_client_read_error", zap.Error(err))
		return
	}

	var mu sync.Mutex
	send := func(v any) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	addrs, err := relayurl.ParseAll(cleanURLs(req.URLs))
	if err != nil {
		_ = send(map[string]string{"error": err.Error()})
		return
	}

	a.Prober.ProbeEach(r.Context(), addrs, func(i int, res health.Result) {
		if err := send(streamResult{Index: i, Result: res}); err != nil {
			a.Logger.Warn("ws_client_write_error", zap.Error(err))
		}
	})
	_ = send(streamDone{Done: true, Count: len(addrs)})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}
