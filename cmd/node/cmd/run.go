package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/app/services/node/handlers"
	"github.com/Time0o/buenzlicoin/chain/block"
	chainnode "github.com/Time0o/buenzlicoin/chain/node"
	"github.com/Time0o/buenzlicoin/foundation/logger"
)

const shutdownTimeout = 20 * time.Second

// runOptions collects everything runE parsed from flags and config.
type runOptions struct {
	Name           string
	WebsocketHost  string
	WebsocketPort  uint16
	HTTPHost       string
	HTTPPort       uint16
	BlockchainFile string
	Verbose        bool
	Config         resolvedConfig
}

// run constructs the node and its two server reactors, and blocks
// until a server error occurs or SIGTERM is received.
func run(opts runOptions) error {
	newLogger := logger.New
	if opts.Verbose {
		newLogger = logger.NewVerbose
	}

	log, err := newLogger(opts.Name)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer log.Sync()

	log.Infow("starting service", "version", build, "pow_enabled", opts.Config.PoWEnabled)
	defer log.Infow("shutdown complete")

	n := chainnode.New(log, opts.Config.Config, opts.WebsocketHost, opts.WebsocketPort)

	if opts.BlockchainFile != "" {
		if err := loadInitialChain(n, opts.BlockchainFile); err != nil {
			return fmt.Errorf("loading initial chain: %w", err)
		}
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	peerMux := handlers.PeerMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Node:     n,
	})

	peerAddr := fmt.Sprintf("%s:%d", opts.WebsocketHost, opts.WebsocketPort)
	peerServer := http.Server{
		Addr:     peerAddr,
		Handler:  peerMux,
		ErrorLog: zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "peer gossip server started", "host", peerServer.Addr)
		if err := peerServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("peer server: %w", err)
		}
	}()

	adminMux := handlers.AdminMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Node:     n,
	})

	adminAddr := fmt.Sprintf("%s:%d", opts.HTTPHost, opts.HTTPPort)
	adminServer := http.Server{
		Addr:     adminAddr,
		Handler:  adminMux,
		ErrorLog: zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "admin api server started", "host", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("admin server: %w", err)
		}
	}()

	debugMux := handlers.DebugMux(build, log)
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:7080", opts.HTTPHost), debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "ERROR", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		n.Stop()

		ctx, cancelAdmin := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelAdmin()
		if err := adminServer.Shutdown(ctx); err != nil {
			adminServer.Close()
			return fmt.Errorf("could not stop admin server gracefully: %w", err)
		}

		ctx, cancelPeer := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelPeer()
		if err := peerServer.Shutdown(ctx); err != nil {
			peerServer.Close()
			return fmt.Errorf("could not stop peer server gracefully: %w", err)
		}
	}

	return nil
}

// loadInitialChain reads a JSON array of blocks from path and seeds n
// with it.
func loadInitialChain(n *chainnode.Node, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var blocks []block.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return n.LoadInitialChain(blocks)
}
