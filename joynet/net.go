package joynet

import "sync"

// EventKind tells what happened on a transport.
type EventKind uint8

const (
	EventConnect EventKind = iota
	EventReceive
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventReceive:
		return "receive"
	case EventDisconnect:
		return "disconnect"
	}

	return "unknown"
}

// An Event is something a transport observed since the last Poll.
// Clients report their server as PeerIDSrv.
type Event struct {
	Kind EventKind
	Peer PeerID
	Data []byte
}

// A Server accepts clients for a Game opened with OpenServer.
// Poll must not block; Send may be called for any connected peer.
type Server interface {
	Poll() []Event
	Send(to PeerID, data []byte, info PktInfo) error
	Kick(to PeerID) error
	Close() error
}

// A Client is a Game's connection to its server.
// A Client reports exactly one EventDisconnect once the connection is gone.
type Client interface {
	Poll() []Event
	Send(data []byte, info PktInfo) error
	Close() error
}

// eventQueue hands events from transport goroutines to the Game's loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, ev)
}

// drain returns everything queued so far and empties the queue.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	evs := q.events
	q.events = nil

	return evs
}

// peerIDs hands out PeerIDs starting at PeerIDCltMin.
type peerIDs struct {
	mu   sync.Mutex
	used map[PeerID]bool
	max  int
}

func newPeerIDs(max int) *peerIDs {
	return &peerIDs{used: make(map[PeerID]bool), max: max}
}

// take reserves the lowest free ID, false once max IDs are taken.
func (p *peerIDs) take() (PeerID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.max > 0 && len(p.used) >= p.max {
		return 0, false
	}

	for id := PeerIDCltMin; id != 0; id++ {
		if !p.used[id] {
			p.used[id] = true
			return id, true
		}
	}

	return 0, false
}

func (p *peerIDs) release(id PeerID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.used, id)
}
