package txn

import (
	"sync"

	"github.com/Time0o/buenzlicoin/chain/digest"
	"github.com/Time0o/buenzlicoin/chain/errs"
)

// Mempool is the FIFO queue of accepted-but-unconfirmed standard
// transactions. It is pruned whenever its inputs are spent or the
// referenced UTXOs disappear.
type Mempool struct {
	mu     sync.RWMutex
	order  []digest.Digest
	byHash map[digest.Digest]Transaction
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{byHash: make(map[digest.Digest]Transaction)}
}

// Count returns the number of pooled transactions.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.order)
}

// Add validates t standalone against snapshot and, if it passes,
// appends it to the tail of the queue. Fails with errs.DuplicateInput
// if any already-pooled transaction shares an input with t, or with
// whatever error t.Validate returns otherwise.
func (mp *Mempool) Add(t Transaction, snapshot *Set, rewardAmount uint64) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.byHash[t.Hash]; exists {
		return nil
	}

	for _, in := range t.Inputs {
		for _, pooled := range mp.byHash {
			for _, pooledIn := range pooled.Inputs {
				if pooledIn.key() == in.key() {
					return errs.New(errs.DuplicateInput, "input (%s, %d) already spent by a pooled transaction", in.OutputHash, in.OutputIndex)
				}
			}
		}
	}

	if err := t.Validate(snapshot, rewardAmount); err != nil {
		return err
	}

	mp.byHash[t.Hash] = t
	mp.order = append(mp.order, t.Hash)

	return nil
}

// Next returns the transaction at the head of the queue without
// removing it, and whether the pool was non-empty.
func (mp *Mempool) Next() (Transaction, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if len(mp.order) == 0 {
		return Transaction{}, false
	}

	return mp.byHash[mp.order[0]], true
}

// PopNext removes and returns the transaction at the head of the
// queue.
func (mp *Mempool) PopNext() (Transaction, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if len(mp.order) == 0 {
		return Transaction{}, false
	}

	h := mp.order[0]
	mp.order = mp.order[1:]
	t := mp.byHash[h]
	delete(mp.byHash, h)

	return t, true
}

// Remove purges the transaction with the given hash, if pooled.
func (mp *Mempool) Remove(hash digest.Digest) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.removeLocked(hash)
}

func (mp *Mempool) removeLocked(hash digest.Digest) {
	if _, exists := mp.byHash[hash]; !exists {
		return
	}

	delete(mp.byHash, hash)

	for i, h := range mp.order {
		if h == hash {
			mp.order = append(mp.order[:i], mp.order[i+1:]...)
			break
		}
	}
}

// All returns the pooled transactions in FIFO order.
func (mp *Mempool) All() []Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	all := make([]Transaction, 0, len(mp.order))
	for _, h := range mp.order {
		all = append(all, mp.byHash[h])
	}

	return all
}

// Prune drops every pooled transaction at least one of whose inputs
// is no longer present in utxos — either because it was just
// confirmed by a committed block, or because the UTXO it referenced
// no longer exists (e.g. after a chain replacement).
func (mp *Mempool) Prune(utxos *Set) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var toRemove []digest.Digest

	for _, h := range mp.order {
		t := mp.byHash[h]

		for _, in := range t.Inputs {
			if _, ok := utxos.Find(in); !ok {
				toRemove = append(toRemove, h)
				break
			}
		}
	}

	for _, h := range toRemove {
		mp.removeLocked(h)
	}
}
