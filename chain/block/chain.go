package block

import (
	"sync"

	"github.com/Time0o/buenzlicoin/chain/difficulty"
	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

// Chain is the ordered sequence of committed blocks. A Chain owns no
// UTXO/mempool state of its own — those are owned by the Node and
// kept consistent with the chain by the caller. Internal methods that
// run under the lock (ConstructNext, AppendNext) touch only the raw
// fields directly rather than calling back into the locking
// accessors below, so a plain, non-reentrant mutex suffices.
type Chain struct {
	mu     sync.Mutex
	blocks []Block

	params         Params
	powEnabled     bool
	adjusterParams difficulty.Params
	adjuster       *difficulty.Adjuster
}

// New constructs an empty chain. Call ConstructNext with a genesis
// payload (or ReplaceFrom with a full chain) before it is usable.
func New(params Params, powEnabled bool, adjusterParams difficulty.Params) *Chain {
	return &Chain{
		params:         params,
		powEnabled:     powEnabled,
		adjusterParams: adjusterParams,
		adjuster:       difficulty.New(adjusterParams),
	}
}

// FromBlocks constructs an unvalidated candidate chain directly from a
// block sequence, typically received whole from a peer. The difficulty
// controller is replayed over the blocks' timestamps so that
// CumulativeDifficulty reflects the candidate. The caller must still
// check Valid (ReplaceFrom does this) before trusting it.
func FromBlocks(blocks []Block, params Params, powEnabled bool, adjusterParams difficulty.Params) *Chain {
	c := New(params, powEnabled, adjusterParams)
	c.blocks = blocks
	for _, b := range blocks {
		c.adjuster.Adjust(b.Timestamp)
	}
	return c
}

// Len returns the number of committed blocks.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.blocks)
}

// Empty reports whether the chain has no committed blocks yet.
func (c *Chain) Empty() bool {
	return c.Len() == 0
}

// Latest returns the most recently committed block, or (Block{}, false)
// if the chain is empty.
func (c *Chain) Latest() (Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.blocks) == 0 {
		return Block{}, false
	}

	return c.blocks[len(c.blocks)-1], true
}

// Blocks returns a copy of the committed block sequence.
func (c *Chain) Blocks() []Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)

	return out
}

// DifficultyLog2 returns the current proof-of-work target.
func (c *Chain) DifficultyLog2() uint {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.adjuster.DifficultyLog2()
}

// CumulativeDifficulty returns the chain's running difficulty total,
// used to compare chains under PoW.
func (c *Chain) CumulativeDifficulty() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.adjuster.CumulativeDifficulty()
}

// Valid reports whether the chain, taken as a whole, satisfies every
// linkage, timestamp and (if enabled) proof-of-work invariant. An
// empty chain is never valid.
func (c *Chain) Valid() bool {
	blocks := c.Blocks()

	if len(blocks) == 0 {
		return false
	}

	if !blocks[0].IsGenesis() {
		return false
	}

	for i := 1; i < len(blocks); i++ {
		if !blocks[i].IsSuccessorOf(blocks[i-1], c.params) {
			return false
		}
	}

	if c.powEnabled {
		replay := difficulty.New(c.adjusterParams)

		for _, b := range blocks {
			if !b.MeetsDifficulty(replay.DifficultyLog2()) {
				return false
			}
			replay.Adjust(b.Timestamp)
		}
	}

	return true
}

// ConstructNext validates data against the current UTXO snapshot,
// builds a block linked to the latest committed block (or a genesis
// block if the chain is empty), mines it to the currently required
// target, then advances the difficulty controller and commits it.
func (c *Chain) ConstructNext(data txn.TransactionList, utxos *txn.Set) (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := utxos.TakeSnapshot()

	var next Block

	if len(c.blocks) == 0 {
		if err := data.ValidateSized(utxos, c.params.Params); err != nil {
			return Block{}, err
		}

		next = Block{Data: data, Index: 0, HashPrev: nil}
	} else {
		prev := c.blocks[len(c.blocks)-1]

		if err := data.ValidateSized(utxos, c.params.Params); err != nil {
			return Block{}, err
		}

		prevHash := prev.Hash
		next = Block{Data: data, Index: prev.Index + 1, HashPrev: &prevHash}
	}

	next = next.Mine(c.adjuster.DifficultyLog2(), c.powEnabled)

	c.adjuster.Adjust(next.Timestamp)

	if err := utxos.ApplyList(next.Data, c.params.RewardAmount); err != nil {
		utxos.Revert(snapshot)
		return Block{}, err
	}

	c.blocks = append(c.blocks, next)

	return next, nil
}

// AppendNext validates and commits a block received from a peer.
// Under PoW, the block must already satisfy the currently-required
// difficulty before the controller advances, so that a received block
// is judged against the target active at receipt time.
func (c *Chain) AppendNext(b Block, utxos *txn.Set) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := utxos.TakeSnapshot()

	if len(c.blocks) == 0 {
		if !b.IsGenesis() {
			return errs.New(errs.InvalidGenesis, "first block must be genesis")
		}
	} else {
		prev := c.blocks[len(c.blocks)-1]
		if !b.IsSuccessorOf(prev, c.params) {
			return errs.New(errs.InvalidBlock, "not a valid successor of the current latest block")
		}
	}

	if err := b.validateStandalone(utxos, c.params); err != nil {
		return err
	}

	if c.powEnabled && !b.MeetsDifficulty(c.adjuster.DifficultyLog2()) {
		return errs.New(errs.InvalidDifficulty, "block does not meet required difficulty %d", c.adjuster.DifficultyLog2())
	}

	if err := utxos.ApplyList(b.Data, c.params.RewardAmount); err != nil {
		utxos.Revert(snapshot)
		return err
	}

	c.adjuster.Adjust(b.Timestamp)
	c.blocks = append(c.blocks, b)

	return nil
}

// ReplaceFrom atomically replaces this chain with other if other is
// valid and strictly richer under the chain-comparison rule: greater
// cumulative difficulty under PoW, otherwise greater length. Ties
// favor the chain already held. utxos is rebuilt by replaying other
// from genesis and mempool is then pruned against it; on any replay
// failure the original chain, UTXO set and mempool are left untouched.
func (c *Chain) ReplaceFrom(other *Chain, utxos *txn.Set, mempool *txn.Mempool) (bool, error) {
	if !other.Valid() {
		return false, errs.New(errs.InvalidChain, "candidate chain is not valid")
	}

	if !other.richerThan(c) {
		return false, nil
	}

	candidateUTXO := txn.NewSet()
	candidateAdjuster := difficulty.New(other.adjusterParams)

	otherBlocks := other.Blocks()

	for _, b := range otherBlocks {
		if err := candidateUTXO.ApplyList(b.Data, other.params.RewardAmount); err != nil {
			return false, errs.New(errs.InvalidChain, "replay failed at block %d: %s", b.Index, err)
		}
		candidateAdjuster.Adjust(b.Timestamp)
	}

	c.mu.Lock()
	c.blocks = otherBlocks
	c.adjuster = candidateAdjuster
	c.mu.Unlock()

	utxos.Revert(candidateUTXO.TakeSnapshot())
	mempool.Prune(utxos)

	return true, nil
}

// richerThan reports whether other (the receiver) is a richer chain
// than base, under the rule: greater cumulative difficulty under PoW,
// otherwise greater length; ties favor base.
func (other *Chain) richerThan(base *Chain) bool {
	baseLen := base.Len()
	otherLen := other.Len()

	if base.powEnabled {
		return other.CumulativeDifficulty() > base.CumulativeDifficulty()
	}

	return otherLen > baseLen
}
