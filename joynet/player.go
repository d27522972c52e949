package joynet

import "fmt"

// A Player occupies one slot of a Game.
type Player struct {
	Slot int
	Name string

	// Peer owns the player on a server, PeerIDNil for players
	// created on this machine.
	Peer  PeerID
	Local bool

	// Controller is the pool index of the bound controller, -1 for none.
	Controller int

	// Port is the session-wide port input for this player is found at
	// in decoded frames, -1 for spectators.
	Port int

	// SelectedContent holds the chosen hash per list, 0 for none.
	// SelectedContentIndex is its position in the local list, -1 if absent.
	SelectedContent      [MaxContentLists]uint64
	SelectedContentIndex [MaxContentLists]int
	selection            [MaxContentLists]*ContentList

	options       []*int
	serverOptions [MaxPlayerOptions]int
	serverOptionN int

	receivedInput bool
}

func newPlayer(slot int, name string, peer PeerID, local bool) *Player {
	p := &Player{
		Slot:       slot,
		Name:       name,
		Peer:       peer,
		Local:      local,
		Controller: -1,
		Port:       -1,
	}

	for i := range p.selection {
		p.selection[i] = NewContentList(MaxContentListSize)
		p.SelectedContentIndex[i] = -1
	}

	return p
}

// ReceivedInput reports whether the server holds input from this
// player for the frame being assembled.
func (p *Player) ReceivedInput() bool { return p.receivedInput }

// Selection returns the hashes selected for list.
func (p *Player) Selection(list int) []uint64 {
	if list < 0 || list >= MaxContentLists {
		return nil
	}

	return p.selection[list].Hashes()
}

// ServerOption returns the confirmed value of player option slot.
func (p *Player) ServerOption(slot int) int {
	if slot < 0 || slot >= MaxPlayerOptions {
		return 0
	}

	return p.serverOptions[slot]
}

func (p *Player) optionSlots() int {
	if len(p.options) > p.serverOptionN {
		return len(p.options)
	}

	return p.serverOptionN
}

func (p *Player) joinMessage() *Message {
	return &Message{
		Type:       MsgPlayerJoin,
		Player:     p.Slot,
		Name:       p.Name,
		Local:      p.Local,
		Controller: p.Controller >= 0,
		Port:       p.Port,
	}
}

// RegisterOnJoinPlayer registers a function that is called
// whenever a player is added to the game
func (g *Game) RegisterOnJoinPlayer(function func(*Player)) {
	g.onJoinPlayer = append(g.onJoinPlayer, function)
}

// RegisterOnLeavePlayer registers a function that is called
// whenever a player is removed from the game
func (g *Game) RegisterOnLeavePlayer(function func(*Player)) {
	g.onLeavePlayer = append(g.onLeavePlayer, function)
}

func (g *Game) addPlayer(slot int, name string, peer PeerID, local bool) *Player {
	p := newPlayer(slot, name, peer, local)
	g.players[slot] = p
	g.order = append(g.order, slot)

	for i := range g.onJoinPlayer {
		g.onJoinPlayer[i](p)
	}

	return p
}

// removePlayer drops a player and its controller binding.
func (g *Game) removePlayer(slot int) {
	p := g.players[slot]
	if p == nil {
		return
	}

	if p.Controller >= 0 {
		g.unbind(g.controllers[p.Controller], p)
		g.compactPorts()
	}

	g.players[slot] = nil
	for i, s := range g.order {
		if s == slot {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	if g.currentPlayer == slot {
		g.currentPlayer = -1
	}

	for i := range g.onLeavePlayer {
		g.onLeavePlayer[i](p)
	}
}

func (g *Game) localPlayerName(slot int) string {
	if g.localName != "" {
		return g.localName
	}

	return fmt.Sprintf("Player %d", slot+1)
}

// Player returns the player in slot, nil if there is none.
func (g *Game) Player(slot int) *Player {
	if slot < 0 || slot >= len(g.players) {
		return nil
	}

	return g.players[slot]
}

// Players returns all players in join order.
func (g *Game) Players() []*Player {
	r := make([]*Player, 0, len(g.order))
	for _, slot := range g.order {
		r = append(r, g.players[slot])
	}

	return r
}

// PlayerCount reports how many slots are taken.
func (g *Game) PlayerCount() int { return len(g.order) }

// SelectPlayer makes slot the current player, for turn based games
// sharing one mouse.
func (g *Game) SelectPlayer(slot int) error {
	if g.Player(slot) == nil {
		return fmt.Errorf("player %d: %w", slot, ErrNoSuchPlayer)
	}

	g.currentPlayer = slot

	return nil
}

// CurrentPlayer returns the current player's slot, -1 if there is none.
func (g *Game) CurrentPlayer() int { return g.currentPlayer }

// ownPlayer returns the player in slot if it belongs to peer.
func (g *Game) ownPlayer(peer PeerID, slot int) (*Player, error) {
	p := g.Player(slot)
	if p == nil {
		return nil, fmt.Errorf("player %d: %w", slot, ErrNoSuchPlayer)
	}
	if p.Peer != peer {
		return nil, fmt.Errorf("player %d belongs to %s: %w", slot, p.Peer, ErrSlotTaken)
	}

	return p, nil
}
