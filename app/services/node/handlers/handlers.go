// Package handlers wires the node's two server surfaces: the
// administrative REST API and the peer gossip WebSocket endpoint, plus
// a debug mux for health checks and profiling.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/app/services/node/handlers/admin"
	"github.com/Time0o/buenzlicoin/app/services/node/handlers/debug/checkgrp"
	"github.com/Time0o/buenzlicoin/app/services/node/handlers/peer"
	"github.com/Time0o/buenzlicoin/business/web/mid"
	"github.com/Time0o/buenzlicoin/chain/node"
	"github.com/Time0o/buenzlicoin/foundation/web"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Node     *node.Node
}

// AdminMux constructs the http.Handler serving the administrative
// REST surface.
func AdminMux(cfg MuxConfig) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h, mid.Cors("*"))

	admin.Routes(app, admin.Config{
		Log:  cfg.Log,
		Node: cfg.Node,
	})

	return app
}

// PeerMux constructs the http.Handler serving the peer gossip
// WebSocket endpoint.
func PeerMux(cfg MuxConfig) http.Handler {
	h := peer.Handlers{
		Log:  cfg.Log,
		Node: cfg.Node,
		WS:   websocket.Upgrader{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Gossip)

	return mux
}

// DebugStandardLibraryMux registers the standard library's debug
// routes into a new mux, bypassing the DefaultServeMux.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers the standard library debug routes plus the
// application's own health check endpoints.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := DebugStandardLibraryMux()

	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
