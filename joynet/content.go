package joynet

import "fmt"

// A ContentList is an append-only, unsorted list of unique content hashes.
// Lists are small, lookups are linear.
type ContentList struct {
	hashes []uint64
	max    int
}

func NewContentList(max int) *ContentList {
	return &ContentList{max: max}
}

// Add appends h unless it is already present.
func (l *ContentList) Add(h uint64) error {
	if l.Has(h) {
		return nil
	}
	if len(l.hashes) >= l.max {
		return fmt.Errorf("%d hashes: %w", l.max, ErrCapacityExceeded)
	}

	l.hashes = append(l.hashes, h)

	return nil
}

// Index returns the position of h, -1 if it is not in the list.
func (l *ContentList) Index(h uint64) int {
	for i, v := range l.hashes {
		if v == h {
			return i
		}
	}

	return -1
}

func (l *ContentList) Has(h uint64) bool { return l.Index(h) >= 0 }
func (l *ContentList) Len() int          { return len(l.hashes) }

// Hashes returns a copy of the list.
func (l *ContentList) Hashes() []uint64 {
	r := make([]uint64, len(l.hashes))
	copy(r, l.hashes)

	return r
}

func (l *ContentList) Reset() { l.hashes = l.hashes[:0] }

// Equal reports whether both lists hold the same hashes in the same order.
func (l *ContentList) Equal(o *ContentList) bool {
	if len(l.hashes) != len(o.hashes) {
		return false
	}

	for i := range l.hashes {
		if l.hashes[i] != o.hashes[i] {
			return false
		}
	}

	return true
}

// intersect returns the hashes present in every list, in the order of the first.
func intersect(lists []*ContentList) *ContentList {
	r := NewContentList(MaxContentListSize)
	if len(lists) == 0 {
		return r
	}

Hashes:
	for _, h := range lists[0].hashes {
		for _, l := range lists[1:] {
			if !l.Has(h) {
				continue Hashes
			}
		}

		r.hashes = append(r.hashes, h)
	}

	return r
}

func checkList(list int) error {
	if list < 0 || list >= MaxContentLists {
		return fmt.Errorf("content list %d: %w", list, ErrCapacityExceeded)
	}

	return nil
}

// AddContent registers content available on this machine.
// Adding a hash twice is a no-op, 0 is not a valid hash.
func (g *Game) AddContent(list int, hash uint64) error {
	if err := checkList(list); err != nil {
		return err
	}
	if hash == 0 {
		return fmt.Errorf("hash 0: %w", ErrInvalidContent)
	}

	if err := g.localContent[list].Add(hash); err != nil {
		return fmt.Errorf("content list %d: %w", list, err)
	}

	// Earlier selections of this hash are now verified.
	index := g.localContent[list].Index(hash)
	for _, p := range g.Players() {
		if p.SelectedContent[list] == hash {
			p.SelectedContentIndex[list] = index
		}
	}

	return nil
}

// LocalContent returns the hashes this machine has for list.
func (g *Game) LocalContent(list int) []uint64 {
	if checkList(list) != nil {
		return nil
	}

	return g.localContent[list].Hashes()
}

// CommonContent returns the hashes every player is known to hold for list,
// as last computed by the authority.
func (g *Game) CommonContent(list int) []uint64 {
	if checkList(list) != nil {
		return nil
	}

	return g.content[list].Hashes()
}

// MasterContent returns the authority's master list; it stays empty on clients.
func (g *Game) MasterContent(list int) []uint64 {
	if checkList(list) != nil {
		return nil
	}

	return g.master[list].Hashes()
}

// SelectContent adds hash to what player slot selected for list.
// The first hash selected is the player's choice, later ones are
// alternatives the player also holds; all of them take part in the
// master list intersection.
// A hash missing from the local list is accepted unverified, its
// resolved index stays -1 until AddContent provides it.
// Hash 0 clears the player's selection for list.
func (g *Game) SelectContent(slot, list int, hash uint64) error {
	p := g.Player(slot)
	if p == nil {
		return fmt.Errorf("player %d: %w", slot, ErrNoSuchPlayer)
	}
	if !g.authority() && !p.Local {
		return fmt.Errorf("player %d is remote: %w", slot, ErrSlotTaken)
	}

	if err := g.applySelection(p, list, hash); err != nil {
		return err
	}

	m := &Message{Type: MsgContentSelect, Player: slot, List: list, Hash: hash}
	if !g.authority() {
		return g.sendServer(m)
	}

	g.broadcast(m, PeerIDNil)
	g.notify(m)
	g.refreshContent()

	return nil
}

func (g *Game) applySelection(p *Player, list int, hash uint64) error {
	if err := checkList(list); err != nil {
		return err
	}

	if hash == 0 {
		p.selection[list].Reset()
		p.SelectedContent[list] = 0
		p.SelectedContentIndex[list] = -1
		return nil
	}

	first := p.selection[list].Len() == 0
	if err := p.selection[list].Add(hash); err != nil {
		return fmt.Errorf("player %d list %d: %w", p.Slot, list, err)
	}

	if first {
		p.SelectedContent[list] = hash
		p.SelectedContentIndex[list] = g.localContent[list].Index(hash)
	}

	return nil
}

// activeList reports whether any player selected content for list.
func (g *Game) activeList(list int) bool {
	for _, p := range g.Players() {
		if p.selection[list].Len() > 0 {
			return true
		}
	}

	return false
}

// refreshContent recomputes the master lists on the authority:
// the hashes selected by every player, for each list anyone selected in.
// A player without a selection empties the master of such a list.
// Changed lists are pushed to the clients.
func (g *Game) refreshContent() {
	if !g.authority() {
		return
	}

	for list := range g.master {
		var sel []*ContentList
		if g.activeList(list) {
			for _, p := range g.Players() {
				sel = append(sel, p.selection[list])
			}
		}

		master := intersect(sel)
		if master.Equal(g.master[list]) {
			continue
		}

		g.master[list] = master
		g.content[list].Reset()
		for _, h := range master.hashes {
			g.content[list].Add(h)
		}

		m := &Message{Type: MsgContentList, List: list, Hashes: master.Hashes()}
		g.broadcast(m, PeerIDNil)
		g.notify(m)
	}
}

// UnmatchedContent returns the chosen hashes for list that are not
// held by every player. While any list has some, Start fails.
func (g *Game) UnmatchedContent(list int) []uint64 {
	if checkList(list) != nil {
		return nil
	}

	common := g.content[list]

	var r []uint64
	for _, p := range g.Players() {
		h := p.SelectedContent[list]
		if h == 0 || common.Has(h) {
			continue
		}

		dup := false
		for _, v := range r {
			if v == h {
				dup = true
				break
			}
		}
		if !dup {
			r = append(r, h)
		}
	}

	return r
}

// ContentReady reports whether play may start: every list someone
// selected content for has a non-empty common list holding every
// player's choice. Players that selected nothing there block it.
func (g *Game) ContentReady() bool {
	for list := range g.content {
		if !g.activeList(list) {
			continue
		}

		if g.content[list].Len() == 0 || len(g.UnmatchedContent(list)) > 0 {
			return false
		}
	}

	return true
}
