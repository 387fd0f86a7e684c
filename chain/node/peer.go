package node

import (
	"encoding/json"

	"github.com/Time0o/buenzlicoin/chain/block"
	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/messaging"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

// requestLatestBlockPayload is the reply to /request-latest-block.
type requestLatestBlockPayload struct {
	Block  block.Block       `json:"block"`
	Origin messaging.Origin  `json:"origin"`
}

// requestAllBlocksPayload is the reply to /request-all-blocks.
type requestAllBlocksPayload struct {
	Blockchain []block.Block    `json:"blockchain"`
	Origin     messaging.Origin `json:"origin"`
}

// receiveLatestBlockPayload is the body of a /receive-latest-block
// push.
type receiveLatestBlockPayload struct {
	Block  block.Block      `json:"block"`
	Origin messaging.Origin `json:"origin"`
}

// receiveAllBlocksPayload is the body of a /receive-all-blocks push.
type receiveAllBlocksPayload struct {
	Blockchain []block.Block `json:"blockchain"`
}

// Dispatch routes a raw request envelope's target to the matching
// handler and returns the framed response. It is the single entry
// point the WebSocket transport plumbing calls into.
func (n *Node) Dispatch(req messaging.Request) messaging.Response {
	switch req.Target {
	case "/request-latest-block":
		return n.handleRequestLatestBlock()

	case "/request-all-blocks":
		return n.handleRequestAllBlocks()

	case "/receive-latest-block":
		return n.handleReceiveLatestBlock(req.Data)

	case "/receive-all-blocks":
		return n.handleReceiveAllBlocks(req.Data)

	case "/receive-transaction":
		return n.handleReceiveTransaction(req.Data)

	default:
		return messaging.NewErrResponse("unknown target: " + req.Target)
	}
}

func (n *Node) handleRequestLatestBlock() messaging.Response {
	latest, ok := n.chain.Latest()
	if !ok {
		return messaging.NewErrResponse("blockchain is empty")
	}

	return messaging.NewOKResponse(requestLatestBlockPayload{Block: latest, Origin: n.Origin()})
}

func (n *Node) handleRequestAllBlocks() messaging.Response {
	return messaging.NewOKResponse(requestAllBlocksPayload{Blockchain: n.chain.Blocks(), Origin: n.Origin()})
}

// handleReceiveLatestBlock implements the branching logic of section
// 4.7: behind (pull the peer's full chain), equal (try to append as
// next), or stale (drop).
func (n *Node) handleReceiveLatestBlock(raw json.RawMessage) messaging.Response {
	var payload receiveLatestBlockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		n.log.Errorw("receive-latest-block", "status", "malformed payload", "ERROR", err)
		return messaging.NewErrResponse("malformed receive-latest-block request")
	}

	b := payload.Block
	localLen := uint64(n.chain.Len())

	switch {
	case b.Index > localLen:
		id := n.peers.Find(payload.Origin.Host, payload.Origin.Port)
		if id == 0 {
			id = n.peers.Add(payload.Origin.Host, payload.Origin.Port)
		}

		n.log.Infow("receive-latest-block", "status", "behind, pulling full chain", "peer", payload.Origin)

		n.pool.Submit(func() {
			n.requestAllBlocksFrom(id)
		})

	case b.Index == localLen:
		if err := n.chain.AppendNext(b, n.utxos); err != nil {
			n.log.Infow("receive-latest-block", "status", "rejected", "ERROR", err)
			return messaging.NewErrResponse(err.Error())
		}

		n.mempool.Prune(n.utxos)

	default:
		n.log.Infow("receive-latest-block", "status", "stale, ignoring")
	}

	return messaging.NewOKResponse(struct{}{})
}

func (n *Node) handleReceiveAllBlocks(raw json.RawMessage) messaging.Response {
	var payload receiveAllBlocksPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		n.log.Errorw("receive-all-blocks", "status", "malformed payload", "ERROR", err)
		return messaging.NewErrResponse("malformed receive-all-blocks request")
	}

	candidate := block.FromBlocks(payload.Blockchain, n.cfg.BlockParams(), n.cfg.PoWEnabled, n.cfg.DifficultyParams())

	replaced, err := n.chain.ReplaceFrom(candidate, n.utxos, n.mempool)
	if err != nil {
		n.log.Infow("receive-all-blocks", "status", "rejected", "ERROR", err)
		return messaging.NewErrResponse(err.Error())
	}

	if replaced {
		n.log.Infow("receive-all-blocks", "status", "replaced local chain", "length", len(payload.Blockchain))
	}

	return messaging.NewOKResponse(struct{}{})
}

func (n *Node) handleReceiveTransaction(raw json.RawMessage) messaging.Response {
	var t txn.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return messaging.NewErrResponse("malformed receive-transaction request")
	}

	if err := n.mempool.Add(t, n.utxos, n.cfg.Transaction.RewardAmount); err != nil {
		if kind, ok := errs.As(err); ok && kind == errs.DuplicateInput {
			// Duplicates are silently ignored per section 4.7.
			return messaging.NewOKResponse(struct{}{})
		}
		return messaging.NewErrResponse(err.Error())
	}

	return messaging.NewOKResponse(struct{}{})
}

// requestLatestBlockFrom pulls peerID's latest block and feeds it
// through the same handler inbound pushes use.
func (n *Node) requestLatestBlockFrom(peerID int) {
	p, ok := n.peers.Get(peerID)
	if !ok {
		return
	}

	req, err := messaging.NewRequest("/request-latest-block", struct{}{})
	if err != nil {
		return
	}

	resp, err := p.Send(req)
	if err != nil {
		n.log.Errorw("request-latest-block", "status", "failed", "peer", p.HostPort(), "ERROR", err)
		return
	}
	if !resp.OK() {
		n.log.Errorw("request-latest-block", "status", "rejected", "peer", p.HostPort(), "data", string(resp.Data))
		return
	}

	var payload requestLatestBlockPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return
	}

	pushed, err := json.Marshal(receiveLatestBlockPayload{Block: payload.Block, Origin: payload.Origin})
	if err != nil {
		return
	}

	n.handleReceiveLatestBlock(pushed)
}

// requestAllBlocksFrom pulls peerID's full chain and feeds it through
// the same handler inbound pushes use.
func (n *Node) requestAllBlocksFrom(peerID int) {
	p, ok := n.peers.Get(peerID)
	if !ok {
		return
	}

	req, err := messaging.NewRequest("/request-all-blocks", struct{}{})
	if err != nil {
		return
	}

	resp, err := p.Send(req)
	if err != nil {
		n.log.Errorw("request-all-blocks", "status", "failed", "peer", p.HostPort(), "ERROR", err)
		return
	}
	if !resp.OK() {
		n.log.Errorw("request-all-blocks", "status", "rejected", "peer", p.HostPort(), "data", string(resp.Data))
		return
	}

	var payload requestAllBlocksPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return
	}

	pushed, err := json.Marshal(receiveAllBlocksPayload{Blockchain: payload.Blockchain})
	if err != nil {
		return
	}

	n.handleReceiveAllBlocks(pushed)
}
