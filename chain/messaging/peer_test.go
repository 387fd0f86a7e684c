package messaging_test

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/Time0o/buenzlicoin/chain/messaging"
)

func TestRegistryAddIsIdempotentAndAppendOnly(t *testing.T) {
	r := messaging.NewRegistry()

	id1 := r.Add("10.0.0.1", 9000)
	id2 := r.Add("10.0.0.2", 9000)
	id1Again := r.Add("10.0.0.1", 9000)

	if id1 != 1 {
		t.Fatalf("first Add() id = %d, want 1", id1)
	}
	if id2 != 2 {
		t.Fatalf("second Add() id = %d, want 2", id2)
	}
	if id1Again != id1 {
		t.Fatalf("re-Add() id = %d, want %d (registering a known peer is a no-op)", id1Again, id1)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistryFind(t *testing.T) {
	r := messaging.NewRegistry()
	id := r.Add("10.0.0.1", 9000)

	if got := r.Find("10.0.0.1", 9000); got != id {
		t.Fatalf("Find() = %d, want %d", got, id)
	}
	if got := r.Find("10.0.0.9", 9000); got != 0 {
		t.Fatalf("Find() for an unknown peer = %d, want 0", got)
	}
}

func TestRegistryGet(t *testing.T) {
	r := messaging.NewRegistry()
	id := r.Add("10.0.0.1", 9000)

	p, ok := r.Get(id)
	if !ok {
		t.Fatal("Get() ok = false for a registered id, want true")
	}
	if p.HostPort() != "10.0.0.1:9000" {
		t.Fatalf("HostPort() = %q, want %q", p.HostPort(), "10.0.0.1:9000")
	}

	if _, ok := r.Get(0); ok {
		t.Fatal("Get(0) ok = true, want false (ids are 1-based)")
	}
	if _, ok := r.Get(r.Len() + 1); ok {
		t.Fatal("Get() ok = true for an out-of-range id, want false")
	}
}

// echoUpgrader answers every request with an OK response carrying the
// same target it was sent, exercising Peer.Send end to end over a real
// websocket connection.
var echoUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := echoUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req messaging.Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if err := conn.WriteJSON(messaging.NewOKResponse(req.Target)); err != nil {
			return
		}
	}
}

func TestPeerSendRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("SplitHostPort() error = %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi() error = %v", err)
	}

	r := messaging.NewRegistry()
	id := r.Add(host, uint16(port))
	p, _ := r.Get(id)

	req, err := messaging.NewRequest("ping", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	resp, err := p.Send(req)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resp.OK() {
		t.Fatal("Send() returned a non-OK response for a successful echo")
	}

	p.Close()
}

func TestPeerSendFailsAgainstUnreachableHost(t *testing.T) {
	r := messaging.NewRegistry()
	id := r.Add("127.0.0.1", 1) // nothing listens on port 1
	p, _ := r.Get(id)

	req, err := messaging.NewRequest("ping", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	if _, err := p.Send(req); err == nil {
		t.Fatal("Send() error = nil against an unreachable peer, want error")
	}
}

