package workeragent

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// dialPair spins up a loopback websocket server and returns both ends
// as wire.Conn, so Register/heartbeat/metrics-push logic can run
// against a real connection without a live controller.
func dialPair(t *testing.T) (client *wire.Conn, server *wire.Conn, closeAll func()) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverCh := make(chan *wire.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("server upgrade: %v", err)
			return
		}
		serverCh <- wire.NewConn(ws)
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientWS, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("client dial: %v", err)
	}
	client = wire.NewConn(clientWS)
	server = <-serverCh

	return client, server, func() {
		client.Close()
		server.Close()
		srv.Close()
	}
}
