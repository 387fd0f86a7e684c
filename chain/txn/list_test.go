package txn_test

import (
	"testing"

	"github.com/Time0o/buenzlicoin/chain/keypair"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

func TestNewTransactionListPutsRewardFirst(t *testing.T) {
	params := txn.Params{NumPerBlock: 5, RewardAmount: 10}

	list := txn.NewTransactionList(2, "miner", nil, params)

	if len(list.Transactions) != 1 {
		t.Fatalf("len(Transactions) = %d, want 1", len(list.Transactions))
	}
	if list.Transactions[0].Type != txn.Reward {
		t.Fatalf("first transaction type = %q, want %q", list.Transactions[0].Type, txn.Reward)
	}
}

func TestNewTransactionListTruncatesToNumPerBlock(t *testing.T) {
	set, priv, ref := setupUTXO(t, 300)
	_ = set

	pending := make([]txn.Transaction, 0, 3)
	for i := 0; i < 3; i++ {
		tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 300, Address: "bob"}}, []keypair.PrivateKey{priv})
		if err != nil {
			t.Fatalf("NewStandard() error = %v", err)
		}
		pending = append(pending, tx)
	}

	params := txn.Params{NumPerBlock: 1, RewardAmount: 10}
	list := txn.NewTransactionList(1, "miner", pending, params)

	if len(list.Transactions) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2 (reward + 1 truncated pending)", len(list.Transactions))
	}
}

func TestTransactionListValidateEnforcesSharedIndex(t *testing.T) {
	set, priv, ref := setupUTXO(t, 100)

	tx, err := txn.NewStandard(99, []txn.UTxO{ref}, []txn.TxO{{Amount: 100, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	list := txn.TransactionList{
		Transactions: []txn.Transaction{
			txn.NewReward(1, "miner", 10),
			tx,
		},
	}

	if err := list.Validate(set, 10); err == nil {
		t.Fatal("Validate() error = nil for a list with mismatched indices, want error")
	}
}

func TestTransactionListValidateRejectsDuplicateInputsAcrossEntries(t *testing.T) {
	set, priv, ref := setupUTXO(t, 200)

	out := []txn.TxO{{Amount: 200, Address: "bob"}}

	tx1, err := txn.NewStandard(1, []txn.UTxO{ref}, out, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}
	tx2, err := txn.NewStandard(1, []txn.UTxO{ref}, out, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	list := txn.TransactionList{
		Transactions: []txn.Transaction{
			txn.NewReward(1, "miner", 10),
			tx1,
			tx2,
		},
	}

	err = list.Validate(set, 10)
	if err == nil {
		t.Fatal("Validate() error = nil for a double-spend across list entries, want error")
	}
}

func TestTransactionListValidateRejectsMissingReward(t *testing.T) {
	set, priv, ref := setupUTXO(t, 100)

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 100, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	list := txn.TransactionList{Transactions: []txn.Transaction{tx}}

	if err := list.Validate(set, 10); err == nil {
		t.Fatal("Validate() error = nil for a list not starting with a reward transaction, want error")
	}
}

func TestValidateSizedEnforcesBound(t *testing.T) {
	params := txn.Params{NumPerBlock: 0, RewardAmount: 10}
	list := txn.NewTransactionList(1, "miner", nil, params)

	// Manually append an extra entry to exceed NumPerBlock+1.
	list.Transactions = append(list.Transactions, txn.NewReward(1, "miner", 10))

	if err := list.ValidateSized(txn.NewSet(), params); err == nil {
		t.Fatal("ValidateSized() error = nil for a list exceeding the size bound, want error")
	}
}

func TestApplyListIsAtomicOnFailure(t *testing.T) {
	set := txn.NewSet()

	badList := txn.TransactionList{
		Transactions: []txn.Transaction{
			txn.NewReward(0, "miner", 999), // wrong reward amount
		},
	}

	if err := set.ApplyList(badList, 10); err == nil {
		t.Fatal("ApplyList() error = nil for an invalid list, want error")
	}

	if len(set.All()) != 0 {
		t.Fatal("ApplyList() mutated the set despite failing validation")
	}
}

func TestApplyListUpdatesUTXOSet(t *testing.T) {
	set := txn.NewSet()
	list := txn.TransactionList{Transactions: []txn.Transaction{txn.NewReward(0, "miner", 10)}}

	if err := set.ApplyList(list, 10); err != nil {
		t.Fatalf("ApplyList() error = %v", err)
	}

	if got := set.Total(); got != 10 {
		t.Fatalf("Total() = %d, want 10", got)
	}
}
