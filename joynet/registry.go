package joynet

import (
	"fmt"
	"sync"
)

// A Registry owns the Games of a process and remembers which one is
// current, for hosts that run several sessions side by side.
type Registry struct {
	mu      sync.Mutex
	games   []*Game
	current *Game
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Create makes a new Game and registers it.
// The first Game created becomes the current one.
func (r *Registry) Create(name string, typ GameType, maxPlayers, maxControllers int, callback Callback) (*Game, error) {
	g, err := NewGame(name, typ, maxPlayers, maxControllers, callback)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.games = append(r.games, g)
	if r.current == nil {
		r.current = g
	}

	return g, nil
}

// Select makes g the current Game.
func (r *Registry) Select(g *Game) error {
	if g == nil {
		return fmt.Errorf("no game: %w", ErrInvalidState)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.games {
		if v == g {
			r.current = g
			return nil
		}
	}

	return fmt.Errorf("game %q is not registered: %w", g.Name(), ErrInvalidState)
}

// Current returns the current Game, nil if there is none.
func (r *Registry) Current() *Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Games returns all registered Games in creation order.
func (r *Registry) Games() []*Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	gs := make([]*Game, len(r.games))
	copy(gs, r.games)

	return gs
}

// Destroy unregisters and destroys g. If g was current,
// no Game is current afterwards.
func (r *Registry) Destroy(g *Game) {
	r.mu.Lock()
	for i, v := range r.games {
		if v == g {
			r.games = append(r.games[:i], r.games[i+1:]...)
			break
		}
	}
	if r.current == g {
		r.current = nil
	}
	r.mu.Unlock()

	g.Destroy()
}
