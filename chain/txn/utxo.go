package txn

import (
	"sync"
)

// Set is the unspent-output ledger. It is mutated only by the commit
// of a validated block; its lifecycle matches the owning chain's.
type Set struct {
	mu    sync.RWMutex
	utxos map[utxoKey]UTxO
}

// NewSet constructs an empty UTXO set.
func NewSet() *Set {
	return &Set{utxos: make(map[utxoKey]UTxO)}
}

// find looks up the UTxO matching key without taking the lock; callers
// must hold (at least) the read lock.
func (s *Set) find(k utxoKey) (UTxO, bool) {
	u, ok := s.utxos[k]
	return u, ok
}

// Find looks up the unspent output matching (hash, index).
func (s *Set) Find(in TxI) (UTxO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.find(in.key())
}

// snapshot returns an independent copy of the current UTXO map, used
// both as the validation snapshot ("before" state) and to support
// block-granularity revert.
func (s *Set) snapshot() map[utxoKey]UTxO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copy := make(map[utxoKey]UTxO, len(s.utxos))
	for k, v := range s.utxos {
		copy[k] = v
	}

	return copy
}

// restore replaces the set's contents with snap.
func (s *Set) restore(snap map[utxoKey]UTxO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.utxos = snap
}

// All returns every unspent output currently held.
func (s *Set) All() []UTxO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]UTxO, 0, len(s.utxos))
	for _, u := range s.utxos {
		all = append(all, u)
	}

	return all
}

// Total sums the amount of every unspent output, used by tests to
// verify the "sum of all UTxO amounts" invariant.
func (s *Set) Total() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, u := range s.utxos {
		total += u.Output.Amount
	}

	return total
}

// apply removes every UTxO consumed by t's inputs and appends the
// UTxOs produced by t's outputs. Caller must hold the write lock.
func (s *Set) apply(t Transaction) {
	for _, in := range t.Inputs {
		delete(s.utxos, in.key())
	}

	for i, out := range t.Outputs {
		u := UTxO{OutputHash: t.Hash, OutputIndex: uint(i), Output: out}
		s.utxos[u.key()] = u
	}
}

// ApplyList validates every transaction in list against the snapshot
// taken before the list's first transaction, then applies them all in
// order. The operation is atomic at block granularity: if any
// transaction fails validation, the set is left exactly as it was
// before this call.
func (s *Set) ApplyList(list TransactionList, rewardAmount uint64) error {
	if err := list.Validate(s, rewardAmount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range list.Transactions {
		s.apply(t)
	}

	return nil
}

// Revert restores the set to snap, a value previously obtained from
// TakeSnapshot. Used when a caller needs to back out a speculative
// application (e.g. a block whose transaction list fails to apply),
// and to install a replayed set wholesale on chain replacement.
func (s *Set) Revert(snap *Snapshot) {
	s.restore(snap.utxos)
}

// Snapshot is an opaque, independently-held copy of a UTXO set's
// contents, taken before attempting a mutation that might need to be
// undone.
type Snapshot struct {
	utxos map[utxoKey]UTxO
}

// TakeSnapshot captures the set's current contents.
func (s *Set) TakeSnapshot() *Snapshot {
	return &Snapshot{utxos: s.snapshot()}
}
