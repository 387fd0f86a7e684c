package admin

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/chain/node"
	"github.com/Time0o/buenzlicoin/foundation/web"
)

// Config contains all the mandatory systems required by the admin
// handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Node *node.Node
}

// Routes binds every admin REST route.
func Routes(app *web.App, cfg Config) {
	h := Handlers{
		Log:  cfg.Log,
		Node: cfg.Node,
	}

	app.Handle(http.MethodGet, "", "/blocks", h.Blocks)
	app.Handle(http.MethodGet, "", "/blocks/latest", h.LatestBlock)
	app.Handle(http.MethodPost, "", "/blocks", h.AddBlock)
	app.Handle(http.MethodGet, "", "/peers", h.Peers)
	app.Handle(http.MethodPost, "", "/peers", h.AddPeer)
	app.Handle(http.MethodGet, "", "/transactions/unconfirmed", h.Unconfirmed)
	app.Handle(http.MethodGet, "", "/transactions/unspent", h.Unspent)
	app.Handle(http.MethodGet, "", "/transactions/latest", h.LatestTransactions)
	app.Handle(http.MethodPost, "", "/transactions", h.SubmitTransaction)
}
