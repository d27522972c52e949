package joynet

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// A WSServer serves Games to WebSocket clients. Mount it on an http.Server.
// Every message is a binary frame; PktInfo is ignored since the
// connection is ordered and reliable anyway.
type WSServer struct {
	upgrader websocket.Upgrader

	queue eventQueue
	ids   *peerIDs

	mu     sync.RWMutex
	conns  map[PeerID]*wsConn
	closed bool

	logger *log.Logger
}

// wsConn serializes writes, gorilla allows only one writer at a time.
type wsConn struct {
	*websocket.Conn
	wmu sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	return c.WriteMessage(websocket.BinaryMessage, data)
}

// NewWSServer returns a WSServer accepting up to maxClients clients,
// any number if maxClients is 0.
func NewWSServer(maxClients int) *WSServer {
	return &WSServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ids:    newPeerIDs(maxClients),
		conns:  make(map[PeerID]*wsConn),
		logger: log.Default(),
	}
}

// SetLogger replaces the logger, log.Default() unless set.
func (s *WSServer) SetLogger(l *log.Logger) { s.logger = l }

func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	}

	id, ok := s.ids.take()
	if !ok {
		http.Error(w, ErrPlayerLimitReached.Error(), http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.ids.release(id)
		s.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	conn := &wsConn{Conn: ws}

	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()

	s.logger.Printf("%s connected as %s", r.RemoteAddr, id)
	s.queue.push(Event{Kind: EventConnect, Peer: id})

	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()

		conn.Close()
		s.queue.push(Event{Kind: EventDisconnect, Peer: id})
		s.ids.release(id)
	}()

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.BinaryMessage {
			s.logger.Printf("%s: discarding non-binary message", id)
			continue
		}

		s.queue.push(Event{Kind: EventReceive, Peer: id, Data: data})
	}
}

func (s *WSServer) Poll() []Event { return s.queue.drain() }

func (s *WSServer) conn(id PeerID) (*wsConn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrClosed)
	}

	return conn, nil
}

func (s *WSServer) Send(to PeerID, data []byte, info PktInfo) error {
	conn, err := s.conn(to)
	if err != nil {
		return err
	}

	if err := conn.write(data); err != nil {
		return fmt.Errorf("%s: %v: %w", to, err, ErrTransport)
	}

	return nil
}

// Kick closes a client's connection.
func (s *WSServer) Kick(to PeerID) error {
	conn, err := s.conn(to)
	if err != nil {
		return err
	}

	return conn.Close()
}

// Close disconnects all clients and refuses new ones.
// The http.Server it is mounted on is left alone.
func (s *WSServer) Close() error {
	s.mu.Lock()
	s.closed = true
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// A WSClient is a WebSocket connection to a WSServer.
type WSClient struct {
	conn  *wsConn
	queue eventQueue
}

// DialWS connects to the WSServer at url, e.g. ws://host:port/.
func DialWS(url string) (*WSClient, error) {
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %v: %w", url, err, ErrTransport)
	}

	c := &WSClient{conn: &wsConn{Conn: ws}}
	go c.recv()

	return c, nil
}

func (c *WSClient) recv() {
	defer c.queue.push(Event{Kind: EventDisconnect, Peer: PeerIDSrv})

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}

		c.queue.push(Event{Kind: EventReceive, Peer: PeerIDSrv, Data: data})
	}
}

func (c *WSClient) Poll() []Event { return c.queue.drain() }

func (c *WSClient) Send(data []byte, info PktInfo) error {
	if err := c.conn.write(data); err != nil {
		return fmt.Errorf("%v: %w", err, ErrTransport)
	}

	return nil
}

// Close sends a close frame and drops the connection.
func (c *WSClient) Close() error {
	c.conn.wmu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.wmu.Unlock()

	return c.conn.Close()
}
