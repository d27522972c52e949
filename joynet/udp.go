package joynet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/anon55555/mt/rudp"
)

// ConnectTimeout is how long DialUDP waits for the server to acknowledge.
const ConnectTimeout = 8 * time.Second

// A UDPServer serves Games to rudp clients.
type UDPServer struct {
	pc net.PacketConn
	l  *rudp.Listener

	queue eventQueue
	ids   *peerIDs

	mu    sync.RWMutex
	conns map[PeerID]*rudp.Conn

	done      chan struct{}
	closeOnce sync.Once

	logger *log.Logger
}

// ListenUDP listens on addr and accepts up to maxClients clients,
// any number if maxClients is 0.
func ListenUDP(addr string, maxClients int) (*UDPServer, error) {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %v: %w", addr, err, ErrTransport)
	}

	s := &UDPServer{
		pc:     pc,
		l:      rudp.Listen(pc),
		ids:    newPeerIDs(maxClients),
		conns:  make(map[PeerID]*rudp.Conn),
		done:   make(chan struct{}),
		logger: log.Default(),
	}

	go s.accept()

	return s, nil
}

// SetLogger replaces the logger, log.Default() unless set.
func (s *UDPServer) SetLogger(l *log.Logger) { s.logger = l }

// Addr returns the address the server listens on.
func (s *UDPServer) Addr() net.Addr { return s.pc.LocalAddr() }

// accept runs until the listener is closed.
func (s *UDPServer) accept() {
	for {
		conn, err := s.l.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.logger.Print(err)
			continue
		}

		id, ok := s.ids.take()
		if !ok {
			s.logger.Printf("%s: %v", conn.RemoteAddr(), ErrPlayerLimitReached)
			conn.Close()
			continue
		}

		s.mu.Lock()
		s.conns[id] = conn
		s.mu.Unlock()

		s.logger.Printf("%s connected as %s", conn.RemoteAddr(), id)
		s.queue.push(Event{Kind: EventConnect, Peer: id})

		go s.recv(id, conn)
	}
}

func (s *UDPServer) recv(id PeerID, conn *rudp.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()

		// The ID must not be reused before its disconnect is queued.
		s.queue.push(Event{Kind: EventDisconnect, Peer: id})
		s.ids.release(id)
	}()

	for {
		data, err := recvPkt(conn)
		if err != nil {
			if closed(conn, err) {
				return
			}

			s.logger.Printf("%s: %v", id, err)
			continue
		}

		s.queue.push(Event{Kind: EventReceive, Peer: id, Data: data})
	}
}

func (s *UDPServer) Poll() []Event { return s.queue.drain() }

func (s *UDPServer) conn(id PeerID) (*rudp.Conn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrClosed)
	}

	return conn, nil
}

func (s *UDPServer) Send(to PeerID, data []byte, info PktInfo) error {
	conn, err := s.conn(to)
	if err != nil {
		return err
	}

	return sendPkt(conn, data, info)
}

// Kick disconnects a client. Its EventDisconnect follows as usual.
func (s *UDPServer) Kick(to PeerID) error {
	conn, err := s.conn(to)
	if err != nil {
		return err
	}

	return conn.Close()
}

// Close disconnects all clients and stops listening.
func (s *UDPServer) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.RLock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.RUnlock()

	return s.l.Close()
}

// A UDPClient is a rudp connection to a UDPServer.
type UDPClient struct {
	conn  *rudp.Conn
	queue eventQueue

	logger *log.Logger
}

// DialUDP connects to the server at addr and waits until it answers.
func DialUDP(addr string) (*UDPClient, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %v: %w", addr, err, ErrTransport)
	}

	uc, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %v: %w", addr, err, ErrTransport)
	}

	conn := rudp.Connect(uc)

	ack, err := conn.Send(rudp.Pkt{Reader: bytes.NewReader([]byte{uint8(MsgNop)})})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dial %s: %v: %w", addr, err, ErrTransport)
	}

	select {
	case <-time.After(ConnectTimeout):
		conn.Close()
		return nil, fmt.Errorf("server at %s is unreachable: %w", addr, ErrTransport)
	case <-conn.Closed():
		return nil, fmt.Errorf("server at %s closed the connection: %w", addr, ErrTransport)
	case <-ack:
	}

	c := &UDPClient{conn: conn, logger: log.Default()}
	go c.recv()

	return c, nil
}

// SetLogger replaces the logger, log.Default() unless set.
func (c *UDPClient) SetLogger(l *log.Logger) { c.logger = l }

// Addr returns the address of the server.
func (c *UDPClient) Addr() net.Addr { return c.conn.RemoteAddr() }

func (c *UDPClient) recv() {
	defer c.queue.push(Event{Kind: EventDisconnect, Peer: PeerIDSrv})

	for {
		data, err := recvPkt(c.conn)
		if err != nil {
			if closed(c.conn, err) {
				return
			}

			c.logger.Print(err)
			continue
		}

		c.queue.push(Event{Kind: EventReceive, Peer: PeerIDSrv, Data: data})
	}
}

func (c *UDPClient) Poll() []Event { return c.queue.drain() }

func (c *UDPClient) Send(data []byte, info PktInfo) error {
	return sendPkt(c.conn, data, info)
}

func (c *UDPClient) Close() error { return c.conn.Close() }

func sendPkt(conn *rudp.Conn, data []byte, info PktInfo) error {
	if info.Channel >= ChannelCount {
		return fmt.Errorf("channel %d: %w", info.Channel, ErrTransport)
	}

	_, err := conn.Send(rudp.Pkt{
		Reader: bytes.NewReader(data),
		PktInfo: rudp.PktInfo{
			Channel: rudp.Channel(info.Channel),
			Unrel:   info.Unrel,
		},
	})
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrTransport)
	}

	return nil
}

// closed reports whether err means conn is gone for good.
func closed(conn *rudp.Conn, err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}

	select {
	case <-conn.Closed():
		return true
	default:
		return false
	}
}

func recvPkt(conn *rudp.Conn) ([]byte, error) {
	pkt, err := conn.Recv()
	if err != nil {
		return nil, err
	}

	return io.ReadAll(pkt)
}
