package txn_test

import (
	"testing"

	"github.com/Time0o/buenzlicoin/chain/keypair"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

func TestMempoolAddAndNext(t *testing.T) {
	set, priv, ref := setupUTXO(t, 50)

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 50, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx, set, 50); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got := mp.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}

	next, ok := mp.Next()
	if !ok {
		t.Fatal("Next() ok = false, want true")
	}
	if next.Hash != tx.Hash {
		t.Fatal("Next() returned a different transaction than was added")
	}
	if got := mp.Count(); got != 1 {
		t.Fatal("Next() should not remove the transaction")
	}
}

func TestMempoolAddRejectsDuplicateInput(t *testing.T) {
	set, priv, ref := setupUTXO(t, 200)

	tx1, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 200, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}
	tx2, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 200, Address: "carol"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx1, set, 200); err != nil {
		t.Fatalf("Add(tx1) error = %v", err)
	}
	if err := mp.Add(tx2, set, 200); err == nil {
		t.Fatal("Add(tx2) error = nil for a transaction double-spending a pooled input, want error")
	}
}

func TestMempoolAddIsIdempotentForSameTransaction(t *testing.T) {
	set, priv, ref := setupUTXO(t, 50)

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 50, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx, set, 50); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := mp.Add(tx, set, 50); err != nil {
		t.Fatalf("re-Add() error = %v, want nil (idempotent)", err)
	}
	if got := mp.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1 after re-adding the same transaction", got)
	}
}

func TestMempoolPopNextIsFIFO(t *testing.T) {
	set, priv, ref := setupUTXO(t, 300)

	tx1, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 100, Address: "bob"}, {Amount: 200, Address: priv.Public().Address()}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	ref2 := txn.UTxO{OutputHash: tx1.Hash, OutputIndex: 1, Output: tx1.Outputs[1]}
	tx2, err := txn.NewStandard(1, []txn.UTxO{ref2}, []txn.TxO{{Amount: 200, Address: "carol"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx1, set, 300); err != nil {
		t.Fatalf("Add(tx1) error = %v", err)
	}

	list := txn.TransactionList{Transactions: []txn.Transaction{txn.NewReward(1, "x", 0), tx1}}
	if err := set.ApplyList(list, 0); err != nil {
		t.Fatalf("ApplyList() error = %v", err)
	}
	if err := mp.Add(tx2, set, 300); err != nil {
		t.Fatalf("Add(tx2) error = %v", err)
	}

	first, ok := mp.PopNext()
	if !ok || first.Hash != tx1.Hash {
		t.Fatal("PopNext() did not return the first-added transaction first")
	}

	second, ok := mp.PopNext()
	if !ok || second.Hash != tx2.Hash {
		t.Fatal("PopNext() did not return the second-added transaction second")
	}

	if mp.Count() != 0 {
		t.Fatal("mempool is not empty after popping both transactions")
	}
}

func TestMempoolRemove(t *testing.T) {
	set, priv, ref := setupUTXO(t, 50)

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 50, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx, set, 50); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	mp.Remove(tx.Hash)

	if mp.Count() != 0 {
		t.Fatal("Remove() did not remove the transaction")
	}
}

func TestMempoolPruneDropsTransactionsWithSpentInputs(t *testing.T) {
	set, priv, ref := setupUTXO(t, 50)

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 50, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	mp := txn.New()
	if err := mp.Add(tx, set, 50); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Spend the referenced UTxO out from under the pooled transaction,
	// as a committed block would.
	list := txn.TransactionList{Transactions: []txn.Transaction{txn.NewReward(1, "miner", 10), tx}}
	if err := set.ApplyList(list, 10); err != nil {
		t.Fatalf("ApplyList() error = %v", err)
	}

	mp.Prune(set)

	if mp.Count() != 0 {
		t.Fatal("Prune() did not drop a transaction whose input is no longer unspent")
	}
}

func TestMempoolAllOnEmptyPool(t *testing.T) {
	mp := txn.New()
	if got := mp.All(); len(got) != 0 {
		t.Fatalf("All() on empty mempool = %v, want empty", got)
	}
}
