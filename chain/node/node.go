// Package node orchestrates the local chain/UTXO/mempool/difficulty
// state and the peer gossip protocol described by the messaging
// package. It is the component the administrative HTTP surface and
// the peer WebSocket surface both sit on top of.
package node

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/chain/block"
	"github.com/Time0o/buenzlicoin/chain/config"
	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/messaging"
	"github.com/Time0o/buenzlicoin/chain/txn"
	"github.com/Time0o/buenzlicoin/chain/worker"
)

// broadcastWorkers bounds how many outbound broadcasts/pulls may run
// concurrently; it replaces the source's unbounded detached threads.
const broadcastWorkers = 8

// Node owns the Blockchain, UTXO set, Mempool, DifficultyAdjuster and
// PeerRegistry for one running process.
type Node struct {
	log *zap.SugaredLogger
	cfg config.Config

	host string
	port uint16

	chain   *block.Chain
	utxos   *txn.Set
	mempool *txn.Mempool
	peers   *messaging.Registry

	pool *worker.Pool

	mu       sync.Mutex
	stopped  bool
}

// New constructs a Node listening (for peer gossip purposes) on
// host:port. host/port are self-reported in Origin fields; section
// 4.7 notes a NATed peer may observe a different address.
func New(log *zap.SugaredLogger, cfg config.Config, host string, port uint16) *Node {
	return &Node{
		log:     log,
		cfg:     cfg,
		host:    host,
		port:    port,
		chain:   block.New(cfg.BlockParams(), cfg.PoWEnabled, cfg.DifficultyParams()),
		utxos:   txn.NewSet(),
		mempool: txn.New(),
		peers:   messaging.NewRegistry(),
		pool:    worker.New(broadcastWorkers),
	}
}

// Stop drains outstanding broadcasts/pulls and is idempotent.
func (n *Node) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	n.mu.Unlock()

	n.pool.Stop()

	for _, p := range n.peers.All() {
		p.Close()
	}
}

// Origin returns the node's self-reported address.
func (n *Node) Origin() messaging.Origin {
	return messaging.Origin{Host: n.host, Port: n.port}
}

// Blocks returns the full committed chain.
func (n *Node) Blocks() []block.Block {
	return n.chain.Blocks()
}

// LatestBlock returns the most recently committed block, if any.
func (n *Node) LatestBlock() (block.Block, bool) {
	return n.chain.Latest()
}

// Peers returns every known peer's host:port.
func (n *Node) Peers() []string {
	var out []string
	for _, p := range n.peers.All() {
		out = append(out, p.HostPort())
	}
	return out
}

// Unconfirmed returns the mempool's pending transactions.
func (n *Node) Unconfirmed() []txn.Transaction {
	return n.mempool.All()
}

// Unspent returns every unspent output.
func (n *Node) Unspent() []txn.UTxO {
	return n.utxos.All()
}

// LatestTransactions returns the transaction list committed in the
// most recent block, if any.
func (n *Node) LatestTransactions() ([]txn.Transaction, bool) {
	b, ok := n.chain.Latest()
	if !ok {
		return nil, false
	}
	return b.Data.Transactions, true
}

// AddBlock constructs the next block from the given payload and
// broadcasts it. dataStr is the opaque block payload for the plain
// variant; rewardAddress is the PEM-encoded address to credit for the
// block's reward transaction in the transaction variant. Exactly one
// of the two is used depending on cfg.PoWEnabled.
func (n *Node) AddBlock(dataStr string, rewardAddress string) (block.Block, error) {
	index := uint64(n.chain.Len())

	var list txn.TransactionList

	if n.cfg.PoWEnabled {
		if rewardAddress == "" {
			return block.Block{}, errs.New(errs.BadRequest, "reward address is required in the transaction variant")
		}

		pending := n.mempool.All()
		list = txn.NewTransactionList(index, rewardAddress, pending, n.cfg.TransactionParams())
	} else {
		list = txn.TransactionList{
			Transactions: []txn.Transaction{{
				Type:  txn.Reward,
				Index: index,
				Outputs: []txn.TxO{{
					Amount:  0,
					Address: dataStr,
				}},
			}},
		}
		list.Transactions[0].Hash = list.Transactions[0].ComputeHash()
	}

	b, err := n.chain.ConstructNext(list, n.utxos)
	if err != nil {
		return block.Block{}, err
	}

	n.mempool.Prune(n.utxos)

	n.broadcastLatestBlock()

	return b, nil
}

// LoadInitialChain seeds the node from a chain read at startup (the
// CLI's --blockchain file), replacing the current local chain if the
// loaded one validates and is richer under the usual comparison rule.
// Intended for use only before any peers are attached.
func (n *Node) LoadInitialChain(blocks []block.Block) error {
	candidate := block.FromBlocks(blocks, n.cfg.BlockParams(), n.cfg.PoWEnabled, n.cfg.DifficultyParams())

	_, err := n.chain.ReplaceFrom(candidate, n.utxos, n.mempool)
	return err
}

// AddPeer registers host:port and asynchronously pulls its latest
// block so the two nodes start converging immediately.
func (n *Node) AddPeer(host string, port uint16) int {
	id := n.peers.Add(host, port)

	n.pool.Submit(func() {
		n.requestLatestBlockFrom(id)
	})

	return id
}

// SubmitTransaction validates t against the current UTXO snapshot and
// adds it to the mempool. A transaction whose index is not the next
// block index is rejected. Duplicate submissions (already pooled, by
// hash) are silently ignored.
func (n *Node) SubmitTransaction(t txn.Transaction) error {
	if next := uint64(n.chain.Len()); t.Index != next {
		return errs.New(errs.InvalidTransaction, "transaction index %d does not match next block index %d", t.Index, next)
	}
	return n.mempool.Add(t, n.utxos, n.cfg.Transaction.RewardAmount)
}

// broadcastLatestBlock sends the current latest block to every known
// peer in parallel via the worker pool. Per-peer errors are logged
// and aggregated but never surfaced to the caller: delivery is
// best-effort, as section 4.7 specifies.
func (n *Node) broadcastLatestBlock() {
	latest, ok := n.chain.Latest()
	if !ok {
		return
	}

	req, err := messaging.NewRequest("/receive-latest-block", receiveLatestBlockPayload{
		Block:  latest,
		Origin: n.Origin(),
	})
	if err != nil {
		n.log.Errorw("broadcast", "status", "failed to marshal request", "ERROR", err)
		return
	}

	peers := n.peers.All()

	n.pool.Submit(func() {
		var (
			mu       sync.Mutex
			wg       sync.WaitGroup
			combined error
		)

		for _, p := range peers {
			wg.Add(1)
			go func(p *messaging.Peer) {
				defer wg.Done()

				resp, err := p.Send(req)
				switch {
				case err != nil:
					n.log.Errorw("broadcast", "status", "failed", "peer", p.HostPort(), "ERROR", err)
					mu.Lock()
					combined = multierr.Append(combined, fmt.Errorf("peer %s: %w", p.HostPort(), err))
					mu.Unlock()
				case !resp.OK():
					n.log.Errorw("broadcast", "status", "rejected", "peer", p.HostPort(), "data", string(resp.Data))
				}
			}(p)
		}

		wg.Wait()

		if combined != nil {
			n.log.Infow("broadcast", "status", "completed with errors", "errors", combined.Error())
		}
	})
}
