// Package txn implements the UTXO-based transaction model: standard
// and reward transactions, the unspent-output ledger, and the pending
// transaction mempool.
package txn

import (
	"encoding/binary"
	"encoding/json"

	"github.com/Time0o/buenzlicoin/chain/digest"
	"github.com/Time0o/buenzlicoin/chain/errs"
	"github.com/Time0o/buenzlicoin/chain/keypair"
)

// Type distinguishes a block's single reward transaction from the
// standard, user-submitted transactions that follow it.
type Type string

// The two transaction kinds.
const (
	Standard Type = "standard"
	Reward   Type = "reward"
)

// TxI references the unspent output it consumes and carries the
// signature authorizing the spend.
type TxI struct {
	OutputHash  digest.Digest `json:"output_hash"`
	OutputIndex uint          `json:"output_index"`
	Signature   []byte        `json:"signature"`
}

// key identifies the UTxO this input consumes, independent of the
// signature.
func (in TxI) key() utxoKey {
	return utxoKey{hash: in.OutputHash, index: in.OutputIndex}
}

// TxO is a value assigned to an address.
type TxO struct {
	Amount  uint64 `json:"amount"`
	Address string `json:"address"`
}

// UTxO is an unspent output, addressable by the hash and index of the
// transaction that produced it.
type UTxO struct {
	OutputHash  digest.Digest `json:"output_hash"`
	OutputIndex uint          `json:"output_index"`
	Output      TxO           `json:"output"`
}

// key identifies this UTxO for set membership.
func (u UTxO) key() utxoKey {
	return utxoKey{hash: u.OutputHash, index: u.OutputIndex}
}

// Matches reports whether in consumes u.
func (u UTxO) Matches(in TxI) bool {
	return u.key() == in.key()
}

// Transaction is either the block's single reward entry or a
// standard, user-signed value transfer.
type Transaction struct {
	Type    Type          `json:"type"`
	Index   uint64        `json:"index"`
	Hash    digest.Digest `json:"hash"`
	Inputs  []TxI         `json:"inputs"`
	Outputs []TxO         `json:"outputs"`
}

// hashPayload is the subset of a transaction's fields that its hash
// covers. Signatures are deliberately excluded: they sign the hash,
// so they cannot be part of it.
type hashPayload struct {
	Index   uint64 `json:"index"`
	Inputs  []struct {
		OutputHash  digest.Digest `json:"output_hash"`
		OutputIndex uint          `json:"output_index"`
	} `json:"inputs"`
	Outputs []TxO `json:"outputs"`
}

// ComputeHash derives the transaction's content hash, deterministic
// over index, input coordinates and outputs.
func (t Transaction) ComputeHash() digest.Digest {
	payload := hashPayload{Index: t.Index}

	for _, in := range t.Inputs {
		payload.Inputs = append(payload.Inputs, struct {
			OutputHash  digest.Digest `json:"output_hash"`
			OutputIndex uint          `json:"output_index"`
		}{OutputHash: in.OutputHash, OutputIndex: in.OutputIndex})
	}
	payload.Outputs = t.Outputs

	data, err := json.Marshal(payload)
	if err != nil {
		// json.Marshal cannot fail on this payload shape; fall back to
		// a deterministic digest of the index rather than panicking.
		var idx [8]byte
		binary.BigEndian.PutUint64(idx[:], t.Index)
		return digest.Sum(idx[:])
	}

	return digest.Sum(data)
}

// NewReward constructs the ready-to-commit reward transaction for
// block index, crediting address with amount. Reward construction is
// a static constructor rather than a general transaction builder: it
// always yields a transaction whose validity depends only on amount
// matching the configured reward.
func NewReward(index uint64, address string, amount uint64) Transaction {
	t := Transaction{
		Type:    Reward,
		Index:   index,
		Outputs: []TxO{{Amount: amount, Address: address}},
	}
	t.Hash = t.ComputeHash()

	return t
}

// NewStandard constructs and signs a standard transaction spending
// the given inputs (already-resolved UTxOs) into outputs. signers
// must have the same length as refs; signers[i] must be the private
// key matching refs[i].Output.Address.
func NewStandard(index uint64, refs []UTxO, outputs []TxO, signers []keypair.PrivateKey) (Transaction, error) {
	if len(refs) != len(signers) {
		return Transaction{}, errs.New(errs.InvalidTransaction, "need exactly one signer per input")
	}

	t := Transaction{
		Type:    Standard,
		Index:   index,
		Outputs: outputs,
	}

	for _, ref := range refs {
		t.Inputs = append(t.Inputs, TxI{OutputHash: ref.OutputHash, OutputIndex: ref.OutputIndex})
	}

	t.Hash = t.ComputeHash()

	for i, signer := range signers {
		_, sig, err := signer.Sign(t.Hash)
		if err != nil {
			return Transaction{}, err
		}
		t.Inputs[i].Signature = sig
	}

	return t, nil
}

// validateHash reports whether the transaction's stored hash matches
// its recomputed content hash.
func (t Transaction) validateHash() error {
	if t.Hash != t.ComputeHash() {
		return errs.New(errs.InvalidTransaction, "hash mismatch")
	}
	return nil
}

// validateShape checks everything about t that does not require
// context: hash integrity and, for reward transactions, shape and
// amount. Standard transactions still need UTXO-snapshot validation
// via Validate.
func (t Transaction) validateShape(rewardAmount uint64) error {
	if err := t.validateHash(); err != nil {
		return err
	}

	switch t.Type {
	case Reward:
		if len(t.Inputs) != 0 {
			return errs.New(errs.InvalidTransaction, "reward transaction must have no inputs")
		}
		if len(t.Outputs) != 1 {
			return errs.New(errs.InvalidTransaction, "reward transaction must have exactly one output")
		}
		if t.Outputs[0].Amount != rewardAmount {
			return errs.New(errs.InvalidTransaction, "reward amount %d does not match configured %d", t.Outputs[0].Amount, rewardAmount)
		}
	case Standard:
		if len(t.Inputs) == 0 {
			return errs.New(errs.InvalidTransaction, "standard transaction must have at least one input")
		}
	default:
		return errs.New(errs.InvalidTransaction, "unknown transaction type %q", t.Type)
	}

	return nil
}

// Validate checks t against snapshot, the UTXO set as it existed
// before t is applied. For standard transactions this verifies every
// input resolves to a UTxO in the snapshot, every input signature
// verifies against that UTxO's address, and inputs sum to outputs.
func (t Transaction) Validate(snapshot *Set, rewardAmount uint64) error {
	if err := t.validateShape(rewardAmount); err != nil {
		return err
	}

	if t.Type == Reward {
		return nil
	}

	var totalIn, totalOut uint64

	for _, in := range t.Inputs {
		u, ok := snapshot.Find(in)
		if !ok {
			return errs.New(errs.InvalidTransaction, "input (%s, %d) not found in utxo set", in.OutputHash, in.OutputIndex)
		}

		addr, err := keypair.ParsePublicKeyPEM(u.Output.Address)
		if err != nil {
			return errs.New(errs.InvalidTransaction, "input (%s, %d) has unparsable address: %s", in.OutputHash, in.OutputIndex, err)
		}

		ok, err = addr.Verify(t.Hash, in.Signature)
		if err != nil {
			return errs.New(errs.InvalidTransaction, "input (%s, %d) has malformed signature: %s", in.OutputHash, in.OutputIndex, err)
		}
		if !ok {
			return errs.New(errs.InvalidTransaction, "invalid signature for input (%s, %d)", in.OutputHash, in.OutputIndex)
		}

		totalIn += u.Output.Amount
	}

	for _, out := range t.Outputs {
		totalOut += out.Amount
	}

	if totalIn != totalOut {
		return errs.New(errs.InvalidTransaction, "input total %d does not equal output total %d", totalIn, totalOut)
	}

	return nil
}

// utxoKey is the map key identifying a UTxO.
type utxoKey struct {
	hash  digest.Digest
	index uint
}
