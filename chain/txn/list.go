package txn

import (
	"github.com/Time0o/buenzlicoin/chain/errs"
)

// Params are the configuration values a block's transaction payload is
// validated against.
type Params struct {
	// NumPerBlock is the maximum number of standard transactions a
	// block may carry, not counting the reward transaction.
	NumPerBlock uint

	// RewardAmount is the fixed payout of the block's reward
	// transaction.
	RewardAmount uint64
}

// TransactionList is a block's transaction payload: exactly one
// reward transaction followed by zero or more standard transactions,
// all sharing the block's index.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// NewTransactionList builds a payload for block index from a pending
// set of standard transactions and the miner's reward address. At
// most params.NumPerBlock standard transactions are taken, in the
// order supplied.
func NewTransactionList(index uint64, rewardAddress string, pending []Transaction, params Params) TransactionList {
	if uint(len(pending)) > params.NumPerBlock {
		pending = pending[:params.NumPerBlock]
	}

	list := TransactionList{
		Transactions: make([]Transaction, 0, len(pending)+1),
	}

	list.Transactions = append(list.Transactions, NewReward(index, rewardAddress, params.RewardAmount))
	list.Transactions = append(list.Transactions, pending...)

	return list
}

// Validate enforces the block-level TransactionList rules: size bound,
// reward-first shape, shared index, per-entry validity against
// snapshot, and no duplicate-input entries.
func (list TransactionList) Validate(snapshot *Set, rewardAmount uint64) error {
	if len(list.Transactions) == 0 {
		return errs.New(errs.InvalidTransaction, "transaction list must have at least the reward entry")
	}

	if list.Transactions[0].Type != Reward {
		return errs.New(errs.InvalidTransaction, "first transaction must be of type reward")
	}

	index := list.Transactions[0].Index

	seen := make(map[utxoKey]bool)

	for i, t := range list.Transactions {
		if i > 0 && t.Type != Standard {
			return errs.New(errs.InvalidTransaction, "transaction %d must be of type standard", i)
		}

		if t.Index != index {
			return errs.New(errs.InvalidTransaction, "transaction %d has index %d, expected %d", i, t.Index, index)
		}

		if err := t.Validate(snapshot, rewardAmount); err != nil {
			return err
		}

		for _, in := range t.Inputs {
			k := in.key()
			if seen[k] {
				return errs.New(errs.DuplicateInput, "input (%s, %d) spent by more than one transaction in the list", in.OutputHash, in.OutputIndex)
			}
			seen[k] = true
		}
	}

	return nil
}

// ValidateSized additionally enforces the configured maximum length
// (transaction_num_per_block + 1). Validate alone does not know the
// bound; block construction/append call this variant.
func (list TransactionList) ValidateSized(snapshot *Set, params Params) error {
	if uint(len(list.Transactions)) > params.NumPerBlock+1 {
		return errs.New(errs.InvalidTransaction, "transaction list has %d entries, exceeds limit of %d", len(list.Transactions), params.NumPerBlock+1)
	}

	return list.Validate(snapshot, params.RewardAmount)
}
