package restapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"

	"github.com/vajraedge/vajraedge/internal/eventbus"
)

// upgrader is permissive on Origin: VajraEdge's metrics stream carries
// no credentials and is read-only, the same trust model the wire
// protocol's controller↔worker socket uses.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamMetrics upgrades `GET /api/stream` to a websocket and relays
// every eventbus.MetricsSnapshot event to it until the client
// disconnects or the bus drops the subscriber (its channel fills,
// spec §9's "never block the MetricsEngine" rule) — grounded on
// SPEC_FULL.md's "500ms MetricsSnapshot push is a gorilla/websocket
// connection per subscriber" design.
func (s *Server) streamMetrics(ctx iris.Context) {
	conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		s.logger.WithError(err).Warn("restapi: websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, events := s.bus.Subscribe(eventbus.MetricsSnapshot)
	defer s.bus.Unsubscribe(id)

	for evt := range events {
		err := conn.WriteJSON(evt.Data)
		evt.Done()
		if err != nil {
			return
		}
	}
}
