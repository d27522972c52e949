package joynet

import (
	"fmt"
	"sort"
)

// unassignedPort sorts a freshly bound controller after every bound one.
const unassignedPort = MaxControllers

// ControllerState is the unpacked input of one controller.
// It is only packed at the wire codec boundary.
type ControllerState struct {
	Button [MaxControllerButtons]bool
	Axis   [MaxControllerAxes]float32

	MouseX int16
	MouseY int16
	MouseZ int16
	MouseB uint8
}

// A Controller is an entry of the Game's controller pool.
// The host writes device state into it before each tick.
type Controller struct {
	ControllerState

	// Port is the dense role number among bound controllers, -1 if unbound.
	Port int

	// Backport is the local device feeding this controller,
	// -1 for controllers a server mirrors for remote players.
	Backport int

	// Player is the slot this controller drives, -1 if unbound.
	Player int

	index int
}

func (c *Controller) bound() bool { return c.Player >= 0 }

type controllerSortData struct {
	port  int
	index int
}

// sortControllers orders by port, pool index breaking ties.
func sortControllers(sd []controllerSortData) {
	sort.Slice(sd, func(i, j int) bool {
		if sd[i].port != sd[j].port {
			return sd[i].port < sd[j].port
		}

		return sd[i].index < sd[j].index
	})
}

// compactPorts renumbers bound controllers 0..k-1 keeping their relative
// order, so ports never have gaps no matter who left.
func (g *Game) compactPorts() {
	var sd []controllerSortData
	for i, c := range g.controllers {
		if c.bound() {
			sd = append(sd, controllerSortData{port: c.Port, index: i})
		}
	}

	sortControllers(sd)

	for i := 1; i < len(sd); i++ {
		if sd[i].port == sd[i-1].port && sd[i].port != unassignedPort {
			g.logger.Printf("game %q: controllers %d and %d both claim port %d, keeping registration order",
				g.name, sd[i-1].index, sd[i].index, sd[i].port)
		}
	}

	for port, d := range sd {
		g.controllers[d.index].Port = port
	}

	if g.authority() {
		for _, p := range g.players {
			if p == nil {
				continue
			}

			if p.Controller >= 0 {
				p.Port = g.controllers[p.Controller].Port
			} else {
				p.Port = -1
			}
		}
	}
}

// Controller returns pool entry i, nil if there is none.
func (g *Game) Controller(i int) *Controller {
	if i < 0 || i >= len(g.controllers) {
		return nil
	}

	return g.controllers[i]
}

// Controllers returns the controller pool.
func (g *Game) Controllers() []*Controller { return g.controllers }

func (g *Game) bind(c int, p *Player) {
	if p.Controller >= 0 && p.Controller != c {
		g.unbind(g.controllers[p.Controller], p)
	}

	g.controllers[c].Player = p.Slot
	g.controllers[c].Port = unassignedPort
	p.Controller = c
}

func (g *Game) unbind(c *Controller, p *Player) {
	c.Player = -1
	c.Port = -1
	c.ControllerState = ControllerState{}
	if c.Backport < 0 {
		c.Backport = c.index
	}
	p.Controller = -1
	p.Port = -1
}

// ConnectController binds local controller c to player slot,
// creating a local player there if the slot is free.
func (g *Game) ConnectController(c, slot int) error {
	if g.buffer == nil {
		return ErrNotConfigured
	}
	if c < 0 || c >= len(g.controllers) {
		return fmt.Errorf("controller %d: %w", c, ErrNoSuchController)
	}
	if slot < 0 || slot >= g.maxPlayers {
		return fmt.Errorf("player %d: %w", slot, ErrCapacityExceeded)
	}

	ctl := g.controllers[c]
	if ctl.Backport < 0 {
		return fmt.Errorf("controller %d is remote: %w", c, ErrNoSuchController)
	}
	if ctl.bound() && ctl.Player != slot {
		return fmt.Errorf("controller %d drives player %d: %w", c, ctl.Player, ErrSlotTaken)
	}

	p := g.players[slot]
	if p != nil && !p.Local {
		return fmt.Errorf("player %d: %w", slot, ErrSlotTaken)
	}
	if p == nil {
		p = g.addPlayer(slot, g.localPlayerName(slot), PeerIDNil, true)
	}

	if ctl.bound() {
		return nil
	}

	g.bind(c, p)
	g.compactPorts()
	g.currentPlayer = slot

	m := p.joinMessage()
	if !g.authority() {
		return g.sendServer(m)
	}

	g.notify(m)
	g.bindingsChanged()

	return nil
}

// DisconnectController unbinds c from player slot and removes the player.
func (g *Game) DisconnectController(c, slot int) error {
	ctl := g.Controller(c)
	if ctl == nil {
		return fmt.Errorf("controller %d: %w", c, ErrNoSuchController)
	}
	if !ctl.bound() || ctl.Player != slot {
		return fmt.Errorf("controller %d does not drive player %d: %w", c, slot, ErrNoSuchPlayer)
	}

	p := g.players[slot]
	if !p.Local {
		return fmt.Errorf("player %d: %w", slot, ErrSlotTaken)
	}

	return g.leave(p)
}

// Watch adds a local player without a controller in the first free slot
// and returns the slot.
func (g *Game) Watch() (int, error) {
	slot := -1
	for i, p := range g.players {
		if p == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, fmt.Errorf("%d players: %w", g.maxPlayers, ErrCapacityExceeded)
	}

	p := g.addPlayer(slot, g.localPlayerName(slot), PeerIDNil, true)
	g.currentPlayer = slot

	m := p.joinMessage()
	if !g.authority() {
		return slot, g.sendServer(m)
	}

	g.notify(m)
	g.bindingsChanged()

	return slot, nil
}

// Leave removes the current player, which must be local, along with
// its controller binding.
func (g *Game) Leave() error {
	p := g.Player(g.currentPlayer)
	if p == nil {
		return fmt.Errorf("no current player: %w", ErrNoSuchPlayer)
	}
	if !p.Local {
		return fmt.Errorf("player %d is remote: %w", p.Slot, ErrSlotTaken)
	}

	return g.leave(p)
}

func (g *Game) leave(p *Player) error {
	g.removePlayer(p.Slot)

	m := &Message{Type: MsgPlayerLeave, Player: p.Slot}
	if !g.authority() {
		return g.sendServer(m)
	}

	g.broadcast(m, PeerIDNil)
	g.notify(m)
	g.bindingsChanged()

	return nil
}

// bindingsChanged pushes ports and content after players came or went.
func (g *Game) bindingsChanged() {
	g.compactPorts()

	if g.server != nil {
		for _, peer := range g.peers {
			for _, p := range g.Players() {
				m := p.joinMessage()
				m.Local = p.Peer == peer
				g.sendPeer(peer, m)
			}
		}
	}

	g.refreshContent()
}

// serverJoin admits or updates a client's player on the server.
// Remote controllers are mirrored in the server's pool so that the
// server's compaction defines the ports every frame is laid out by.
func (g *Game) serverJoin(from PeerID, m *Message) error {
	if m.Player < 0 || m.Player >= g.maxPlayers {
		return fmt.Errorf("player %d: %w", m.Player, ErrCapacityExceeded)
	}

	p := g.players[m.Player]
	if p != nil && p.Peer != from {
		// Take the slot back from the client and tell it who holds it.
		g.sendPeer(from, &Message{Type: MsgPlayerLeave, Player: m.Player})
		owner := p.joinMessage()
		owner.Local = false
		g.sendPeer(from, owner)

		return fmt.Errorf("player %d: %w", m.Player, ErrSlotTaken)
	}
	if p == nil {
		p = g.addPlayer(m.Player, m.Name, from, false)
	}
	p.Name = m.Name

	switch {
	case m.Controller && p.Controller < 0:
		free := -1
		for i, c := range g.controllers {
			if !c.bound() {
				free = i
				break
			}
		}

		if free < 0 {
			g.logger.Printf("game %q: no controller left for player %d, watching", g.name, p.Slot)
		} else {
			g.controllers[free].Backport = -1
			g.bind(free, p)
		}
	case !m.Controller && p.Controller >= 0:
		g.unbind(g.controllers[p.Controller], p)
	}

	g.notify(m)
	g.bindingsChanged()

	return nil
}

// clientJoin records a player the server announced.
func (g *Game) clientJoin(m *Message) {
	if m.Player < 0 || m.Player >= g.maxPlayers {
		return
	}

	p := g.players[m.Player]
	if p == nil {
		peer := PeerIDSrv
		if m.Local {
			peer = PeerIDNil
		}

		p = g.addPlayer(m.Player, m.Name, peer, m.Local)
	}

	if !p.Local {
		p.Name = m.Name
	}
	p.Port = m.Port
}
