// Package admin implements the administrative REST surface described
// in the external interfaces section: block/peer/transaction
// inspection and submission, served as JSON over HTTP.
package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/node"
	"github.com/Time0o/buenzlicoin/chain/txn"
	"github.com/Time0o/buenzlicoin/foundation/web"
)

// Handlers manages the set of admin endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Node *node.Node
}

// Blocks returns the full committed chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Blocks(), http.StatusOK)
}

// LatestBlock returns the most recently committed block, or null if
// the chain is empty.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest, ok := h.Node.LatestBlock()
	if !ok {
		return web.Respond(ctx, w, json.RawMessage("null"), http.StatusOK)
	}

	return web.Respond(ctx, w, latest, http.StatusOK)
}

// AddBlock constructs the next block from the request body and
// broadcasts it to known peers.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req addBlockRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	b, err := h.Node.AddBlock(req.Data, req.RewardAddress)
	if err != nil {
		return mapChainError(err)
	}

	return web.Respond(ctx, w, b, http.StatusOK)
}

// Peers returns every known peer's host:port.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Peers(), http.StatusOK)
}

// AddPeer registers a peer and triggers an asynchronous pull of its
// latest block.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req addPeerRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	h.Node.AddPeer(req.Host, req.Port)

	return web.Respond(ctx, w, statusResponse{Status: "peer registered"}, http.StatusOK)
}

// Unconfirmed returns the mempool's pending transactions.
func (h Handlers) Unconfirmed(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Unconfirmed(), http.StatusOK)
}

// Unspent returns every unspent output.
func (h Handlers) Unspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.Unspent(), http.StatusOK)
}

// LatestTransactions returns the transaction list committed in the
// most recent block.
func (h Handlers) LatestTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans, ok := h.Node.LatestTransactions()
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusOK)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// SubmitTransaction validates and pools a transaction submitted by a
// client.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var t txn.Transaction
	if err := web.Decode(r, &t); err != nil {
		return err
	}

	if err := h.Node.SubmitTransaction(t); err != nil {
		return mapChainError(err)
	}

	return web.Respond(ctx, w, statusResponse{Status: "transaction pooled"}, http.StatusOK)
}

// mapChainError translates a chain package error into the
// appropriately status-coded trusted error for the web middleware to
// respond with; anything not recognized falls through as an internal
// error.
func mapChainError(err error) error {
	kind, ok := errs.As(err)
	if !ok {
		return err
	}

	switch kind {
	case errs.NotFound:
		return web.NewTrustedError(err, http.StatusNotFound)
	case errs.BadRequest, errs.InvalidTransaction, errs.DuplicateInput, errs.InvalidBlock,
		errs.InvalidGenesis, errs.InvalidDifficulty, errs.InvalidChain, errs.InvalidDigest,
		errs.InvalidKey, errs.CryptoError:
		return web.NewTrustedError(err, http.StatusBadRequest)
	default:
		return err
	}
}
