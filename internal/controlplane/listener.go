package controlplane

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vajraedge/vajraedge/internal/wire"
)

var workerUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WorkerHandler upgrades an inbound HTTP request to a wire.Conn and runs
// it through HandleConn until the connection ends, the way
// internal/restapi's stream.go upgrades its metrics subscribers.
func (cs *ControllerServer) WorkerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := workerUpgrader.Upgrade(w, r, nil)
		if err != nil {
			cs.Logger.WithError(err).Warn("worker websocket upgrade failed")
			return
		}
		conn := wire.NewConn(ws)
		defer conn.Close()

		if err := cs.HandleConn(r.Context(), conn); err != nil {
			cs.Logger.WithError(err).Debug("worker connection ended")
		}
	}
}
