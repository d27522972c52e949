package joynet

import (
	"fmt"
	"sync"
)

// A PipeServer connects Games within one process, mostly for tests.
// Messages are delivered in order and never dropped, whatever PktInfo says.
type PipeServer struct {
	queue eventQueue
	ids   *peerIDs

	mu      sync.Mutex
	clients map[PeerID]*PipeClient
	closed  bool
}

// A PipeClient is the client end of a PipeServer connection.
type PipeClient struct {
	srv   *PipeServer
	id    PeerID
	queue eventQueue

	mu     sync.Mutex
	closed bool
}

// NewPipeServer returns a PipeServer accepting up to maxClients clients,
// any number if maxClients is 0.
func NewPipeServer(maxClients int) *PipeServer {
	return &PipeServer{
		ids:     newPeerIDs(maxClients),
		clients: make(map[PeerID]*PipeClient),
	}
}

// Dial connects a new client.
func (s *PipeServer) Dial() (*PipeClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("dial pipe: %w", ErrClosed)
	}

	id, ok := s.ids.take()
	if !ok {
		return nil, fmt.Errorf("dial pipe: %w", ErrPlayerLimitReached)
	}

	c := &PipeClient{srv: s, id: id}
	s.clients[id] = c
	s.queue.push(Event{Kind: EventConnect, Peer: id})

	return c, nil
}

func (s *PipeServer) Poll() []Event { return s.queue.drain() }

func (s *PipeServer) Send(to PeerID, data []byte, info PktInfo) error {
	s.mu.Lock()
	c, ok := s.clients[to]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", to, ErrClosed)
	}

	c.queue.push(Event{Kind: EventReceive, Peer: PeerIDSrv, Data: clone(data)})

	return nil
}

// Kick disconnects a client.
func (s *PipeServer) Kick(to PeerID) error {
	s.mu.Lock()
	c, ok := s.clients[to]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", to, ErrClosed)
	}

	return c.Close()
}

// Close disconnects all clients.
func (s *PipeServer) Close() error {
	s.mu.Lock()
	s.closed = true
	clients := make([]*PipeClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	return nil
}

func (s *PipeServer) drop(id PeerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return
	}

	delete(s.clients, id)
	s.ids.release(id)
	s.queue.push(Event{Kind: EventDisconnect, Peer: id})
}

// ID returns the PeerID the server knows this client by.
func (c *PipeClient) ID() PeerID { return c.id }

func (c *PipeClient) Poll() []Event { return c.queue.drain() }

func (c *PipeClient) Send(data []byte, info PktInfo) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return fmt.Errorf("send: %w", ErrClosed)
	}

	c.srv.queue.push(Event{Kind: EventReceive, Peer: c.id, Data: clone(data)})

	return nil
}

// Close disconnects from the server. Both ends see an EventDisconnect.
func (c *PipeClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.srv.drop(c.id)
	c.queue.push(Event{Kind: EventDisconnect, Peer: PeerIDSrv})

	return nil
}

func clone(b []byte) []byte {
	r := make([]byte, len(b))
	copy(r, b)

	return r
}
