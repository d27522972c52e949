package joynet

import "fmt"

// Options are negotiated by proposal: whoever owns the storage behind an
// option sends its value, the server records it as the server option and
// passes it on. Only server options count; the last value received wins.

// AddGameOption registers caller-owned storage as the next game option slot.
func (g *Game) AddGameOption(op *int) error {
	if op == nil {
		return fmt.Errorf("nil option: %w", ErrInvalidOption)
	}
	if len(g.options) >= MaxOptions {
		return fmt.Errorf("%d options: %w", MaxOptions, ErrCapacityExceeded)
	}

	g.options = append(g.options, op)

	return nil
}

// AddPlayerOption registers caller-owned storage as the next option slot of player slot.
func (g *Game) AddPlayerOption(slot int, op *int) error {
	p := g.Player(slot)
	if p == nil {
		return fmt.Errorf("player %d: %w", slot, ErrNoSuchPlayer)
	}
	if op == nil {
		return fmt.Errorf("nil option: %w", ErrInvalidOption)
	}
	if len(p.options) >= MaxPlayerOptions {
		return fmt.Errorf("%d player options: %w", MaxPlayerOptions, ErrCapacityExceeded)
	}

	p.options = append(p.options, op)

	return nil
}

// ServerOption returns the confirmed value of game option slot.
func (g *Game) ServerOption(slot int) int {
	if slot < 0 || slot >= MaxOptions {
		return 0
	}

	return g.serverOptions[slot]
}

// PlayerServerOption returns the confirmed value of option slot of player.
func (g *Game) PlayerServerOption(player, slot int) int {
	p := g.Player(player)
	if p == nil {
		return 0
	}

	return p.ServerOption(slot)
}

func (g *Game) optionSlots() int {
	n := len(g.options)
	for slot := MaxOptions - 1; slot >= n; slot-- {
		if g.serverOptions[slot] != 0 {
			return slot + 1
		}
	}

	return n
}

// UpdateGameOptions sends the current value of every game option.
// A server or local game confirms them right away.
func (g *Game) UpdateGameOptions() error {
	for slot, op := range g.options {
		m := &Message{Type: MsgOptionUpdate, Scope: ScopeGame, Slot: slot, Value: *op}
		if err := g.proposeOption(m); err != nil {
			return err
		}
	}

	return nil
}

// UpdatePlayerOptions sends the current value of every option of player slot.
func (g *Game) UpdatePlayerOptions(slot int) error {
	p := g.Player(slot)
	if p == nil {
		return fmt.Errorf("player %d: %w", slot, ErrNoSuchPlayer)
	}

	for i, op := range p.options {
		m := &Message{Type: MsgOptionUpdate, Scope: ScopePlayer, Player: slot, Slot: i, Value: *op}
		if err := g.proposeOption(m); err != nil {
			return err
		}
	}

	return nil
}

func (g *Game) proposeOption(m *Message) error {
	if !g.authority() {
		return g.sendServer(m)
	}

	if err := g.storeOption(m); err != nil {
		return err
	}

	g.broadcast(m, PeerIDNil)
	g.notify(m)

	return nil
}

// receiveOption confirms a client's proposal on the server and passes
// it on to everyone, the proposer included.
func (g *Game) receiveOption(from PeerID, m *Message) error {
	if m.Scope == ScopePlayer {
		if _, err := g.ownPlayer(from, m.Player); err != nil {
			return err
		}
	}

	if err := g.storeOption(m); err != nil {
		return err
	}

	g.broadcast(m, PeerIDNil)
	g.notify(m)

	return nil
}

// storeOption writes a value into the server option shadow.
func (g *Game) storeOption(m *Message) error {
	switch m.Scope {
	case ScopeGame:
		if m.Slot < 0 || m.Slot >= MaxOptions {
			return fmt.Errorf("option %d: %w", m.Slot, ErrCapacityExceeded)
		}

		g.serverOptions[m.Slot] = m.Value
	case ScopePlayer:
		p := g.Player(m.Player)
		if p == nil {
			return fmt.Errorf("player %d: %w", m.Player, ErrNoSuchPlayer)
		}
		if m.Slot < 0 || m.Slot >= MaxPlayerOptions {
			return fmt.Errorf("player option %d: %w", m.Slot, ErrCapacityExceeded)
		}

		p.serverOptions[m.Slot] = m.Value
		if m.Slot >= p.serverOptionN {
			p.serverOptionN = m.Slot + 1
		}
	default:
		return fmt.Errorf("option scope %d: %w", m.Scope, ErrInvalidOption)
	}

	return nil
}
