// Package block implements the hashed, linked block sequence and its
// validation, mining and chain-replacement rules.
package block

import (
	"encoding/json"

	"github.com/Time0o/buenzlicoin/chain/clock"
	"github.com/Time0o/buenzlicoin/chain/digest"
	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

// TimeMaxDelta bounds how far a block's timestamp may drift from the
// receiver's clock. Configured via Params, not a compile-time
// constant, per the redesign away from the source's singleton config.
type Params struct {
	TimeMaxDelta int64 // milliseconds
	txn.Params
}

// Block is a single, immutable entry in the chain. Once committed it
// is never mutated; hash_prev is a plain data field, not a pointer
// into shared storage.
type Block struct {
	Data      txn.TransactionList `json:"data"`
	Timestamp clock.Timestamp     `json:"timestamp"`
	Nonce     uint64              `json:"nonce"`
	Index     uint64              `json:"index"`
	HashPrev  *digest.Digest      `json:"hash_prev,omitempty"`
	Hash      digest.Digest       `json:"hash"`
}

// hashPayload is the subset of fields a block's hash covers.
type hashPayload struct {
	Data      txn.TransactionList `json:"data"`
	Timestamp clock.Timestamp     `json:"timestamp"`
	Nonce     uint64              `json:"nonce"`
	Index     uint64              `json:"index"`
	HashPrev  *digest.Digest      `json:"hash_prev,omitempty"`
}

// ComputeHash derives the block's content hash.
func (b Block) ComputeHash() digest.Digest {
	data, err := json.Marshal(hashPayload{
		Data:      b.Data,
		Timestamp: b.Timestamp,
		Nonce:     b.Nonce,
		Index:     b.Index,
		HashPrev:  b.HashPrev,
	})
	if err != nil {
		return digest.Digest{}
	}

	return digest.Sum(data)
}

// IsGenesis reports whether b is a valid genesis candidate: index 0
// and no previous hash link.
func (b Block) IsGenesis() bool {
	return b.Index == 0 && b.HashPrev == nil
}

// IsSuccessorOf reports whether b correctly follows prev: consecutive
// index, correct hash_prev link, and a timestamp strictly later than
// prev's minus the configured tolerance.
func (b Block) IsSuccessorOf(prev Block, params Params) bool {
	if b.Index != prev.Index+1 {
		return false
	}
	if b.HashPrev == nil || *b.HashPrev != prev.Hash {
		return false
	}
	if int64(b.Timestamp) <= int64(prev.Timestamp)-params.TimeMaxDelta {
		return false
	}

	return true
}

// validateStandalone checks everything about b that requires no chain
// context: transaction-list shape/validity, clock skew, and hash
// integrity.
func (b Block) validateStandalone(snapshot *txn.Set, params Params) error {
	if err := b.Data.ValidateSized(snapshot, params.Params); err != nil {
		return err
	}

	for _, t := range b.Data.Transactions {
		if t.Index != b.Index {
			return errs.New(errs.InvalidBlock, "transaction index %d does not match block index %d", t.Index, b.Index)
		}
	}

	maxTimestamp := clock.Now() + clock.Timestamp(params.TimeMaxDelta)
	if int64(b.Timestamp) > int64(maxTimestamp) {
		return errs.New(errs.InvalidBlock, "timestamp %d exceeds now()+max_delta", b.Timestamp)
	}

	if b.Hash != b.ComputeHash() {
		return errs.New(errs.InvalidBlock, "hash mismatch")
	}

	return nil
}

// MeetsDifficulty reports whether b's hash satisfies the proof-of-work
// target requiring at least requiredLog2 leading zero bits.
func (b Block) MeetsDifficulty(requiredLog2 uint) bool {
	return uint(b.Hash.LeadingZeroBits()) >= requiredLog2
}

// Mine repeatedly bumps the nonce and timestamp until the block's hash
// meets requiredLog2 leading zero bits. Deterministic only in the
// sense that it terminates with a block satisfying the predicate; no
// guarantee on wall-clock duration. When powEnabled is false the loop
// runs exactly once (PoW is a configuration flag, not compiled out).
func (b Block) Mine(requiredLog2 uint, powEnabled bool) Block {
	for {
		b.Timestamp = clock.Now()
		b.Hash = b.ComputeHash()

		if !powEnabled || b.MeetsDifficulty(requiredLog2) {
			return b
		}

		b.Nonce++
	}
}
