// Package peer implements the peer-to-peer WebSocket surface: a
// single upgrade endpoint that reads framed request envelopes and
// dispatches them into the node's gossip handlers, one connection per
// remote peer.
package peer

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/chain/messaging"
	"github.com/Time0o/buenzlicoin/chain/node"
)

// Handlers manages the peer gossip socket.
type Handlers struct {
	Log  *zap.SugaredLogger
	Node *node.Node
	WS   websocket.Upgrader
}

// Gossip upgrades the connection and serves framed requests until the
// peer disconnects or a read or write fails.
func (h Handlers) Gossip(w http.ResponseWriter, r *http.Request) {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	conn, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Errorw("gossip", "status", "upgrade failed", "ERROR", err)
		return
	}
	defer conn.Close()

	for {
		var req messaging.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Errorw("gossip", "status", "read failed", "ERROR", err)
			}
			return
		}

		resp := h.Node.Dispatch(req)

		if err := conn.WriteJSON(resp); err != nil {
			h.Log.Errorw("gossip", "status", "write failed", "ERROR", err)
			return
		}
	}
}
