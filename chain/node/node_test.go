package node_test

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Time0o/buenzlicoin/chain/block"
	"github.com/Time0o/buenzlicoin/chain/config"
	"github.com/Time0o/buenzlicoin/chain/keypair"
	"github.com/Time0o/buenzlicoin/chain/messaging"
	"github.com/Time0o/buenzlicoin/chain/node"
	"github.com/Time0o/buenzlicoin/chain/txn"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}

func plainConfig() config.Config {
	return config.Config{
		BlockGen: config.BlockGen{
			Interval:                    10_000,
			DifficultyInit:              1,
			DifficultyAdjustAfter:       1000,
			DifficultyAdjustFactorLimit: 4,
			TimeMaxDelta:                60_000,
		},
		Transaction: config.Transaction{NumPerBlock: 10, RewardAmount: 0},
		PoWEnabled:  false,
	}
}

func powConfig() config.Config {
	cfg := plainConfig()
	cfg.Transaction.RewardAmount = 50
	cfg.PoWEnabled = true
	return cfg
}

func TestNewNodeStartsEmpty(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	if _, ok := n.LatestBlock(); ok {
		t.Fatal("LatestBlock() ok = true for a freshly constructed node, want false")
	}
	if len(n.Blocks()) != 0 {
		t.Fatal("Blocks() is non-empty for a freshly constructed node")
	}
	if got := n.Origin(); got.Host != "127.0.0.1" || got.Port != 9000 {
		t.Fatalf("Origin() = %+v, want {127.0.0.1 9000}", got)
	}
}

func TestAddBlockPlainVariant(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	b, err := n.AddBlock("hello chain", "")
	if err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}
	if !b.IsGenesis() {
		t.Fatal("first AddBlock() did not produce a genesis block")
	}

	latest, ok := n.LatestBlock()
	if !ok || latest.Hash != b.Hash {
		t.Fatal("LatestBlock() does not reflect the just-added block")
	}
}

func TestAddBlockPoWVariantRequiresRewardAddress(t *testing.T) {
	n := node.New(testLogger(t), powConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	if _, err := n.AddBlock("", ""); err == nil {
		t.Fatal("AddBlock() error = nil without a reward address in the transaction variant, want error")
	}
}

func TestAddBlockPoWVariantCreditsRewardAddress(t *testing.T) {
	n := node.New(testLogger(t), powConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	priv, err := keypair.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := n.AddBlock("", priv.Public().Address()); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	var total uint64
	for _, u := range n.Unspent() {
		if u.Output.Address == priv.Public().Address() {
			total += u.Output.Amount
		}
	}
	if total != 50 {
		t.Fatalf("reward address total = %d, want 50", total)
	}
}

func TestSubmitTransactionAddsToMempool(t *testing.T) {
	n := node.New(testLogger(t), powConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	priv, err := keypair.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := n.AddBlock("", priv.Public().Address()); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	var ref txn.UTxO
	for _, u := range n.Unspent() {
		if u.Output.Address == priv.Public().Address() {
			ref = u
		}
	}

	tx, err := txn.NewStandard(1, []txn.UTxO{ref}, []txn.TxO{{Amount: 50, Address: "bob"}}, []keypair.PrivateKey{priv})
	if err != nil {
		t.Fatalf("NewStandard() error = %v", err)
	}

	if err := n.SubmitTransaction(tx); err != nil {
		t.Fatalf("SubmitTransaction() error = %v", err)
	}

	if got := len(n.Unconfirmed()); got != 1 {
		t.Fatalf("Unconfirmed() length = %d, want 1", got)
	}
}

func TestAddPeerRegistersAndDoesNotBlock(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	id := n.AddPeer("10.0.0.1", 9100)
	if id != 1 {
		t.Fatalf("AddPeer() id = %d, want 1", id)
	}

	if got := n.Peers(); len(got) != 1 || got[0] != "10.0.0.1:9100" {
		t.Fatalf("Peers() = %v, want [10.0.0.1:9100]", got)
	}
}

func TestDispatchRequestLatestBlockOnEmptyChain(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	resp := n.Dispatch(messaging.Request{Target: "/request-latest-block"})
	if resp.OK() {
		t.Fatal("Dispatch(/request-latest-block) OK = true on an empty chain, want false")
	}
}

func TestDispatchRequestLatestBlock(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	b, err := n.AddBlock("payload", "")
	if err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	resp := n.Dispatch(messaging.Request{Target: "/request-latest-block"})
	if !resp.OK() {
		t.Fatalf("Dispatch(/request-latest-block) not OK: %s", resp.Data)
	}

	var payload struct {
		Block block.Block `json:"block"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if payload.Block.Hash != b.Hash {
		t.Fatal("Dispatch(/request-latest-block) returned a different block than was added")
	}
}

func TestDispatchReceiveLatestBlockEqualAppends(t *testing.T) {
	producer := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9001)
	defer producer.Stop()

	receiver := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9002)
	defer receiver.Stop()

	b, err := producer.AddBlock("payload", "")
	if err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	raw, err := json.Marshal(struct {
		Block  block.Block      `json:"block"`
		Origin messaging.Origin `json:"origin"`
	}{Block: b, Origin: producer.Origin()})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	resp := receiver.Dispatch(messaging.Request{Target: "/receive-latest-block", Data: raw})
	if !resp.OK() {
		t.Fatalf("Dispatch(/receive-latest-block) not OK: %s", resp.Data)
	}

	latest, ok := receiver.LatestBlock()
	if !ok || latest.Hash != b.Hash {
		t.Fatal("receiver did not append the pushed block as its new latest block")
	}
}

func TestDispatchReceiveLatestBlockStaleIgnored(t *testing.T) {
	receiver := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9002)
	defer receiver.Stop()

	if _, err := receiver.AddBlock("first", ""); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}
	if _, err := receiver.AddBlock("second", ""); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	stale := block.Block{Index: 0}
	stale.Hash = stale.ComputeHash()

	raw, err := json.Marshal(struct {
		Block  block.Block      `json:"block"`
		Origin messaging.Origin `json:"origin"`
	}{Block: stale})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	resp := receiver.Dispatch(messaging.Request{Target: "/receive-latest-block", Data: raw})
	if !resp.OK() {
		t.Fatalf("Dispatch(/receive-latest-block) for a stale push was not OK: %s", resp.Data)
	}

	if len(receiver.Blocks()) != 2 {
		t.Fatalf("Blocks() length = %d, want 2 (stale push must be ignored)", len(receiver.Blocks()))
	}
}

func TestDispatchUnknownTarget(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)
	defer n.Stop()

	resp := n.Dispatch(messaging.Request{Target: "/does-not-exist"})
	if resp.OK() {
		t.Fatal("Dispatch() on an unknown target returned OK, want an error response")
	}
}

func TestLoadInitialChainReplacesEmptyChain(t *testing.T) {
	producer := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9001)
	defer producer.Stop()

	if _, err := producer.AddBlock("genesis", ""); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}
	if _, err := producer.AddBlock("second", ""); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	receiver := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9002)
	defer receiver.Stop()

	if err := receiver.LoadInitialChain(producer.Blocks()); err != nil {
		t.Fatalf("LoadInitialChain() error = %v", err)
	}

	if len(receiver.Blocks()) != 2 {
		t.Fatalf("Blocks() length after LoadInitialChain() = %d, want 2", len(receiver.Blocks()))
	}
}

func TestStopIsIdempotentAndBoundsPoolWait(t *testing.T) {
	n := node.New(testLogger(t), plainConfig(), "127.0.0.1", 9000)

	done := make(chan struct{})
	go func() {
		n.Stop()
		n.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}
