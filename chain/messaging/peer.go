package messaging

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Time0o/buenzlicoin/chain/errs"
)

// dialTimeout bounds how long a peer's lazy outbound dial may take.
const dialTimeout = 10 * time.Second

// Peer owns one long-lived, mutex-serialized outbound connection to a
// remote node. Only one request may be in flight at a time; additional
// Send calls queue on the mutex, matching the single outbound
// connection per peer described in the concurrency model.
type Peer struct {
	ID   int
	Host string
	Port uint16

	mu   sync.Mutex
	conn *websocket.Conn
}

// HostPort renders the peer's address as "host:port".
func (p *Peer) HostPort() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Send serializes req, writes it on the peer's connection (dialing
// lazily on first use or after a prior failure), and waits for the
// framed response. On transport error or a malformed reply envelope,
// the returned error is an errs.TransportError and the connection is
// dropped so the next Send redials.
func (p *Peer) Send(req Request) (Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if err := p.dialLocked(); err != nil {
			return Response{}, err
		}
	}

	if err := p.conn.WriteJSON(req); err != nil {
		p.closeLocked()
		return Response{}, errs.New(errs.TransportError, "writing request to %s: %s", p.HostPort(), err)
	}

	var resp Response
	if err := p.conn.ReadJSON(&resp); err != nil {
		p.closeLocked()
		return Response{}, errs.New(errs.TransportError, "reading response from %s: %s", p.HostPort(), err)
	}

	return resp, nil
}

func (p *Peer) dialLocked() error {
	u := url.URL{Scheme: "ws", Host: p.HostPort(), Path: "/"}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return errs.New(errs.TransportError, "dialing %s: %s", p.HostPort(), err)
	}

	p.conn = conn

	return nil
}

func (p *Peer) closeLocked() {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Close drops the peer's outbound connection, if any.
func (p *Peer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
}

// Registry holds the set of known peers in an append-only slice so
// that peer IDs (1-based) remain stable for the life of the process.
type Registry struct {
	mu      sync.RWMutex
	peers   []*Peer
	byHost  map[string]int
}

// NewRegistry constructs an empty peer registry.
func NewRegistry() *Registry {
	return &Registry{byHost: make(map[string]int)}
}

// Add registers host:port if not already known, returning its
// (possibly pre-existing) peer ID. Registering an already-known peer
// is a no-op.
func (r *Registry) Add(host string, port uint16) int {
	key := fmt.Sprintf("%s:%d", host, port)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byHost[key]; ok {
		return id
	}

	p := &Peer{Host: host, Port: port}
	r.peers = append(r.peers, p)
	p.ID = len(r.peers)
	r.byHost[key] = p.ID

	return p.ID
}

// Find returns the peer ID for host:port, or 0 if unknown.
func (r *Registry) Find(host string, port uint16) int {
	key := fmt.Sprintf("%s:%d", host, port)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byHost[key]
}

// Get returns the peer with the given 1-based ID.
func (r *Registry) Get(id int) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 1 || id > len(r.peers) {
		return nil, false
	}

	return r.peers[id-1], true
}

// All returns every known peer in registration order.
func (r *Registry) All() []*Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Peer, len(r.peers))
	copy(out, r.peers)

	return out
}

// Len returns the number of known peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.peers)
}
