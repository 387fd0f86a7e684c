package messaging_test

import (
	"encoding/json"
	"testing"

	"github.com/Time0o/buenzlicoin/chain/messaging"
)

func TestNewRequestMarshalsData(t *testing.T) {
	req, err := messaging.NewRequest("peers.add", map[string]any{"host": "127.0.0.1", "port": 9000})
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	if req.Target != "peers.add" {
		t.Fatalf("Target = %q, want %q", req.Target, "peers.add")
	}

	var decoded map[string]any
	if err := json.Unmarshal(req.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal(Data) error = %v", err)
	}
	if decoded["host"] != "127.0.0.1" {
		t.Fatalf("decoded host = %v, want 127.0.0.1", decoded["host"])
	}
}

func TestNewOKResponse(t *testing.T) {
	resp := messaging.NewOKResponse([]int{1, 2, 3})

	if !resp.OK() {
		t.Fatal("OK() = false for a response built with NewOKResponse, want true")
	}

	var data []int
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("Unmarshal(Data) error = %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("decoded data length = %d, want 3", len(data))
	}
}

func TestNewErrResponse(t *testing.T) {
	resp := messaging.NewErrResponse("boom")

	if resp.OK() {
		t.Fatal("OK() = true for a response built with NewErrResponse, want false")
	}

	var msg string
	if err := json.Unmarshal(resp.Data, &msg); err != nil {
		t.Fatalf("Unmarshal(Data) error = %v", err)
	}
	if msg != "boom" {
		t.Fatalf("decoded message = %q, want %q", msg, "boom")
	}
}
