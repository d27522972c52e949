package joynet

import "fmt"

// packFrame writes the record of every bound controller at its port.
// Ports nobody holds stay zero.
func (g *Game) packFrame(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}

	rs := g.codec.RecordSize()
	for _, c := range g.controllers {
		if !c.bound() || c.Port < 0 || c.Port >= g.maxControllers {
			continue
		}

		g.codec.PutRecord(dst[c.Port*rs:], &c.ControllerState)
	}
}

// EncodeFrame packs the state of all bound controllers into the input
// buffer. It reports whether an unread frame had to be dropped.
func (g *Game) EncodeFrame() (bool, error) {
	if g.buffer == nil {
		return false, ErrNotConfigured
	}

	g.packFrame(g.frame)

	return g.buffer.Write(g.frame), nil
}

// DecodeFrame takes the oldest frame out of the input buffer and makes
// it available through Input. If no frame is waiting the previous one
// is repeated and DecodeFrame reports false.
func (g *Game) DecodeFrame() bool {
	if g.buffer == nil {
		return false
	}

	ok := g.buffer.Read(g.frame)

	rs := g.codec.RecordSize()
	for port := 0; port < g.maxControllers; port++ {
		g.input[port] = g.codec.Record(g.frame[port*rs:])
	}

	return ok
}

// InputFrames returns the number of frames waiting to be decoded.
func (g *Game) InputFrames() int {
	if g.buffer == nil {
		return 0
	}

	return g.buffer.Len()
}

// Input returns the state decoded for port by the last DecodeFrame.
func (g *Game) Input(port int) ControllerState {
	if port < 0 || port >= g.maxControllers {
		return ControllerState{}
	}

	return g.input[port]
}

// sendInput hands the state of local controllers to the server,
// addressed by the ports the server assigned.
func (g *Game) sendInput() {
	for _, p := range g.Players() {
		if !p.Local || p.Controller < 0 || p.Port < 0 {
			continue
		}

		m := &Message{
			Type:  MsgControllerState,
			Port:  p.Port,
			State: g.controllers[p.Controller].ControllerState,
		}
		if err := g.sendServer(m); err != nil {
			g.logger.Printf("game %q: player %d: %v", g.name, p.Slot, err)
		}
	}
}

// receiveInput stores a client's controller state in the server's mirror.
func (g *Game) receiveInput(from PeerID, m *Message) error {
	if g.state != StatePlaying {
		return nil
	}

	for _, c := range g.controllers {
		if !c.bound() || c.Port != m.Port {
			continue
		}

		p := g.players[c.Player]
		if p.Peer != from {
			return fmt.Errorf("port %d belongs to %s: %w", m.Port, p.Peer, ErrSlotTaken)
		}

		c.ControllerState = m.State
		p.receivedInput = true

		return nil
	}

	return fmt.Errorf("port %d: %w", m.Port, ErrNoSuchController)
}

// assembleFrame sends out a frame once every player with a controller
// has provided input for it. Players of the server itself always have.
func (g *Game) assembleFrame() {
	for _, p := range g.Players() {
		if p.Controller < 0 {
			continue
		}
		if p.Peer == PeerIDNil {
			p.receivedInput = true
		}
		if !p.receivedInput {
			return
		}
	}

	g.packFrame(g.frame)
	if g.buffer.Write(g.frame) {
		g.logger.Printf("game %q: input buffer overflow, %d frames dropped so far", g.name, g.buffer.Overflows())
	}

	frame := make([]byte, len(g.frame))
	copy(frame, g.frame)
	g.broadcast(&Message{Type: MsgInputFrame, Frame: frame}, PeerIDNil)

	for _, p := range g.Players() {
		p.receivedInput = false
	}
}
