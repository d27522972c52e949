/*
Package joynet keeps a multiplayer game session in sync between a server
and its clients: which local controller drives which player, the per-frame
input everyone plays from, the content every player must hold before play
can start and the options the players agreed on.

A Game is driven by a single loop: call Update (clients and local games)
or UpdateServer (servers) once per tick. Nothing in here blocks or spawns
goroutines except the transports, which hand their events over through Poll.
*/
package joynet

import (
	"fmt"
	"log"
	"time"
)

// GameType tells how players provide input.
type GameType uint8

const (
	GameTypeControllers GameType = iota
	GameTypeMice                 // each player has own mouse
	GameTypeMouse                // share a mouse
)

func (t GameType) String() string {
	switch t {
	case GameTypeControllers:
		return "controllers"
	case GameTypeMice:
		return "mice"
	case GameTypeMouse:
		return "mouse"
	}

	return fmt.Sprintf("GameType(%d)", uint8(t))
}

// ParseGameType is the inverse of GameType.String.
func ParseGameType(s string) (GameType, error) {
	for t := GameTypeControllers; t <= GameTypeMouse; t++ {
		if t.String() == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown game type %q", s)
}

type GameState uint8

const (
	StateOff GameState = iota
	StatePlaying
	StatePaused
)

func (s GameState) String() string {
	switch s {
	case StateOff:
		return "off"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}

	return fmt.Sprintf("GameState(%d)", uint8(s))
}

const (
	MaxPlayers           = 256
	MaxControllers       = 8
	MaxMice              = 8
	MaxOptions           = 128
	MaxPlayerOptions     = 128
	MaxControllerButtons = 16
	MaxControllerAxes    = 8
	MaxContentLists      = 8
	MaxContentListSize   = 1024
)

// A Callback sees every message a Game applies, local or remote.
type Callback func(m *Message)

// A Game is one multiplayer session.
// It must only be used from the loop that calls Update or UpdateServer.
type Game struct {
	name  string
	typ   GameType
	state GameState

	maxPlayers     int
	maxControllers int

	players []*Player
	order   []int // slots in join order

	controllers []*Controller
	codec       Codec
	buffer      *InputBuffer
	frame       []byte
	input       [MaxControllers]ControllerState

	options       []*int
	serverOptions [MaxOptions]int

	localContent [MaxContentLists]*ContentList
	content      [MaxContentLists]*ContentList
	master       [MaxContentLists]*ContentList

	server Server
	client Client
	peers  []PeerID

	callback      Callback
	onJoinPlayer  []func(*Player)
	onLeavePlayer []func(*Player)

	localName     string
	currentPlayer int

	rand      Rand
	seed      uint32
	fixedSeed bool

	logger *log.Logger
}

// NewGame allocates an empty session. Nothing is sent anywhere until
// OpenServer or ConnectToServer is called; without either the Game
// is its own authority (local play).
func NewGame(name string, typ GameType, maxPlayers, maxControllers int, callback Callback) (*Game, error) {
	if typ > GameTypeMouse {
		return nil, fmt.Errorf("game %q: %w", name, ErrInvalidState)
	}
	if maxPlayers <= 0 || maxPlayers > MaxPlayers {
		return nil, fmt.Errorf("game %q: %d players: %w", name, maxPlayers, ErrCapacityExceeded)
	}
	if maxControllers <= 0 || maxControllers > MaxControllers {
		return nil, fmt.Errorf("game %q: %d controllers: %w", name, maxControllers, ErrCapacityExceeded)
	}
	if typ == GameTypeMice && maxControllers > MaxMice {
		return nil, fmt.Errorf("game %q: %d mice: %w", name, maxControllers, ErrCapacityExceeded)
	}

	g := &Game{
		name:           name,
		typ:            typ,
		maxPlayers:     maxPlayers,
		maxControllers: maxControllers,
		players:        make([]*Player, maxPlayers),
		callback:       callback,
		currentPlayer:  -1,
		logger:         log.Default(),
	}

	for i := range g.localContent {
		g.localContent[i] = NewContentList(MaxContentListSize)
		g.content[i] = NewContentList(MaxContentListSize)
		g.master[i] = NewContentList(MaxContentListSize)
	}

	return g, nil
}

func (g *Game) Name() string         { return g.name }
func (g *Game) Type() GameType       { return g.typ }
func (g *Game) State() GameState     { return g.state }
func (g *Game) MaxPlayers() int      { return g.maxPlayers }
func (g *Game) Configured() bool     { return g.buffer != nil }
func (g *Game) Buffer() *InputBuffer { return g.buffer }

// Serving reports whether the Game was opened as a server.
func (g *Game) Serving() bool { return g.server != nil }

// Connected reports whether the Game is a client of some server.
func (g *Game) Connected() bool { return g.client != nil }

// SetLogger replaces the logger, log.Default() unless set.
func (g *Game) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}

	g.logger = l
}

// SetSeed fixes the seed the next Start hands to every peer.
// Without it the server picks a fresh one each time.
func (g *Game) SetSeed(seed uint32) {
	g.seed = seed
	g.fixedSeed = true
}

// Seed returns the seed the current or last play started from.
func (g *Game) Seed() uint32 { return g.seed }

// Rand returns the generator all peers of the session share.
// It is reseeded whenever play starts.
func (g *Game) Rand() *Rand { return &g.rand }

// SetLocalName sets the name new local players get.
func (g *Game) SetLocalName(name string) { g.localName = name }

// SetupControllers fixes the input layout, creates the controller pool
// and allocates an input buffer of bufferFrames frames.
// It must be called exactly once, before the game is started or networked.
func (g *Game) SetupControllers(buttons, axes, bufferFrames int) error {
	if g.buffer != nil {
		return ErrAlreadyConfigured
	}
	if buttons < 0 || buttons > MaxControllerButtons || axes < 0 || axes > MaxControllerAxes {
		return fmt.Errorf("%d buttons, %d axes: %w", buttons, axes, ErrCapacityExceeded)
	}

	codec := Codec{Buttons: buttons, Axes: axes, Mouse: g.typ != GameTypeControllers}
	frameSize := codec.RecordSize() * g.maxControllers

	buffer, err := NewInputBuffer(frameSize, bufferFrames)
	if err != nil {
		return err
	}

	g.controllers = make([]*Controller, g.maxControllers)
	for i := range g.controllers {
		g.controllers[i] = &Controller{Port: -1, Backport: i, Player: -1, index: i}
	}

	g.codec = codec
	g.buffer = buffer
	g.frame = make([]byte, frameSize)

	return nil
}

// Codec returns the wire layout fixed by SetupControllers.
func (g *Game) Codec() Codec { return g.codec }

// Destroy disconnects and releases everything the Game owns.
func (g *Game) Destroy() {
	if g.server != nil {
		g.server.Close()
		g.server = nil
	}
	if g.client != nil {
		g.client.Close()
		g.client = nil
	}

	g.state = StateOff
	g.players = make([]*Player, g.maxPlayers)
	g.order = nil
	g.peers = nil
	g.controllers = nil
	g.options = nil
	g.buffer = nil
	g.frame = nil
	g.onJoinPlayer = nil
	g.onLeavePlayer = nil
}

// authority reports whether this Game decides on session state
// itself, which is the case for servers and local games.
func (g *Game) authority() bool { return g.client == nil }

// notify passes an applied message to the callback.
func (g *Game) notify(m *Message) {
	if g.callback != nil {
		g.callback(m)
	}
}

// OpenServer makes the Game the authority for srv's clients.
// On failure the Game stays off and local.
func (g *Game) OpenServer(srv Server) error {
	if srv == nil {
		return fmt.Errorf("no server: %w", ErrTransport)
	}
	if g.buffer == nil {
		return ErrNotConfigured
	}
	if g.server != nil || g.client != nil || g.state != StateOff {
		return fmt.Errorf("open server: %w", ErrInvalidState)
	}

	g.server = srv
	g.logger.Printf("game %q: serving", g.name)

	return nil
}

// ConnectToServer turns the Game into a client of cli's server.
// Local players and their content selections are announced right away.
func (g *Game) ConnectToServer(cli Client) error {
	if cli == nil {
		return fmt.Errorf("no client: %w", ErrTransport)
	}
	if g.buffer == nil {
		return ErrNotConfigured
	}
	if g.server != nil || g.client != nil || g.state != StateOff {
		return fmt.Errorf("connect: %w", ErrInvalidState)
	}

	g.client = cli

	// Common content is the server's to decide from now on.
	for i := range g.content {
		g.content[i].Reset()
		g.master[i].Reset()
	}

	for _, p := range g.Players() {
		if !p.Local {
			continue
		}

		if err := g.sendServer(p.joinMessage()); err != nil {
			g.dropServer()
			return err
		}

		for list := range p.selection {
			for _, h := range p.selection[list].Hashes() {
				m := &Message{Type: MsgContentSelect, Player: p.Slot, List: list, Hash: h}
				if err := g.sendServer(m); err != nil {
					g.dropServer()
					return err
				}
			}
		}
	}

	return nil
}

// DisconnectFromServer closes the client transport. Remote players
// are forgotten, local ones stay and the game goes back to off.
func (g *Game) DisconnectFromServer() {
	if g.client == nil {
		return
	}

	g.dropServer()
}

func (g *Game) dropServer() {
	g.client.Close()
	g.client = nil

	for _, p := range g.Players() {
		if !p.Local {
			g.removePlayer(p.Slot)
		}
	}
	g.compactPorts()

	for i := range g.content {
		g.content[i].Reset()
		g.master[i].Reset()
	}
	g.refreshContent()

	g.setState(StateOff)
}

func (g *Game) sendServer(m *Message) error {
	data, err := g.codec.Marshal(m)
	if err != nil {
		return err
	}

	if err := g.client.Send(data, m.Type.pktInfo()); err != nil {
		return fmt.Errorf("%s: %w", m.Type, err)
	}

	return nil
}

// sendPeer sends to one client of a server Game.
func (g *Game) sendPeer(to PeerID, m *Message) {
	data, err := g.codec.Marshal(m)
	if err != nil {
		g.logger.Print(err)
		return
	}

	if err := g.server.Send(to, data, m.Type.pktInfo()); err != nil {
		g.logger.Printf("send %s to %s: %v", m.Type, to, err)
	}
}

// broadcast sends m to every client of a server Game except skip.
// Local games have nobody to tell.
func (g *Game) broadcast(m *Message, skip PeerID) {
	if g.server == nil {
		return
	}

	for _, peer := range g.peers {
		if peer != skip {
			g.sendPeer(peer, m)
		}
	}
}

// Update runs one tick of a client or local Game: inbound messages are
// applied and, while playing, local input is sent to the server or,
// for local games, encoded straight into the input buffer.
func (g *Game) Update() {
	if g.client != nil {
		for _, ev := range g.client.Poll() {
			switch ev.Kind {
			case EventReceive:
				g.receive(PeerIDSrv, ev.Data)
			case EventDisconnect:
				g.logger.Printf("game %q: server disconnected", g.name)
				g.dropServer()
				return
			}
		}
	}

	if g.state != StatePlaying || g.buffer == nil {
		return
	}

	if g.client != nil {
		g.sendInput()
	} else if g.server == nil {
		g.EncodeFrame()
	}
}

// UpdateServer runs one tick of a server Game: clients are admitted
// and dropped, their messages applied and, while playing, a frame is
// broadcast as soon as every player with a controller has sent input.
func (g *Game) UpdateServer() {
	if g.server == nil {
		return
	}

	for _, ev := range g.server.Poll() {
		switch ev.Kind {
		case EventConnect:
			g.logger.Printf("game %q: %s connected", g.name, ev.Peer)
			g.peers = append(g.peers, ev.Peer)
			g.sendSnapshot(ev.Peer)
		case EventReceive:
			g.receive(ev.Peer, ev.Data)
		case EventDisconnect:
			g.logger.Printf("game %q: %s disconnected", g.name, ev.Peer)
			g.dropPeer(ev.Peer)
		}
	}

	if g.state == StatePlaying {
		g.assembleFrame()
	}
}

func (g *Game) dropPeer(peer PeerID) {
	for i, p := range g.peers {
		if p == peer {
			g.peers = append(g.peers[:i], g.peers[i+1:]...)
			break
		}
	}

	changed := false
	for _, p := range g.Players() {
		if p.Peer == peer {
			g.removePlayer(p.Slot)
			m := &Message{Type: MsgPlayerLeave, Player: p.Slot}
			g.broadcast(m, PeerIDNil)
			g.notify(m)
			changed = true
		}
	}

	if changed {
		g.bindingsChanged()
	}
}

// sendSnapshot brings a newly connected client up to date.
func (g *Game) sendSnapshot(peer PeerID) {
	for _, p := range g.Players() {
		m := p.joinMessage()
		m.Local = false
		g.sendPeer(peer, m)

		for list := range p.selection {
			for _, h := range p.selection[list].Hashes() {
				g.sendPeer(peer, &Message{Type: MsgContentSelect, Player: p.Slot, List: list, Hash: h})
			}
		}

		for slot := 0; slot < p.optionSlots(); slot++ {
			g.sendPeer(peer, &Message{Type: MsgOptionUpdate, Scope: ScopePlayer, Player: p.Slot, Slot: slot, Value: p.serverOptions[slot]})
		}
	}

	for list, l := range g.content {
		if l.Len() > 0 {
			g.sendPeer(peer, &Message{Type: MsgContentList, List: list, Hashes: l.Hashes()})
		}
	}

	for slot := 0; slot < g.optionSlots(); slot++ {
		g.sendPeer(peer, &Message{Type: MsgOptionUpdate, Scope: ScopeGame, Slot: slot, Value: g.serverOptions[slot]})
	}

	g.sendPeer(peer, &Message{Type: MsgGameStateChange, GameState: g.state, Seed: g.seed})
}

func (g *Game) receive(from PeerID, data []byte) {
	m, err := g.codec.Unmarshal(data)
	if err != nil {
		g.logger.Printf("game %q: %s: %v", g.name, from, err)

		// Clients that send garbage are dropped.
		if g.server != nil {
			if err := g.server.Kick(from); err != nil {
				g.logger.Printf("game %q: kick %s: %v", g.name, from, err)
			}
		}

		return
	}

	if m.Type == MsgNop {
		return
	}

	if g.server != nil {
		err = g.handleClient(from, m)
	} else {
		err = g.handleServer(m)
	}

	if err != nil {
		g.logger.Printf("game %q: %s from %s: %v", g.name, m.Type, from, err)
	}
}

// handleClient applies a client's message on the server.
func (g *Game) handleClient(from PeerID, m *Message) error {
	switch m.Type {
	case MsgPlayerJoin:
		return g.serverJoin(from, m)
	case MsgPlayerLeave:
		p, err := g.ownPlayer(from, m.Player)
		if err != nil {
			return err
		}

		g.removePlayer(p.Slot)
		g.broadcast(m, PeerIDNil)
		g.notify(m)
		g.bindingsChanged()
	case MsgControllerState:
		return g.receiveInput(from, m)
	case MsgContentSelect:
		p, err := g.ownPlayer(from, m.Player)
		if err != nil {
			return err
		}

		if err := g.applySelection(p, m.List, m.Hash); err != nil {
			return err
		}

		g.broadcast(m, from)
		g.notify(m)
		g.refreshContent()
	case MsgOptionUpdate:
		return g.receiveOption(from, m)
	case MsgGameStateChange:
		return g.changeState(m.GameState)
	default:
		return fmt.Errorf("unexpected from client: %w", ErrBadMessage)
	}

	return nil
}

// handleServer applies an authoritative message on a client.
func (g *Game) handleServer(m *Message) error {
	switch m.Type {
	case MsgPlayerJoin:
		g.clientJoin(m)
	case MsgPlayerLeave:
		if g.Player(m.Player) == nil {
			return nil
		}

		g.removePlayer(m.Player)
	case MsgInputFrame:
		if len(m.Frame) != g.buffer.FrameSize() {
			return fmt.Errorf("frame of %d bytes, want %d: %w", len(m.Frame), g.buffer.FrameSize(), ErrBadMessage)
		}

		g.buffer.Write(m.Frame)
	case MsgContentSelect:
		p := g.Player(m.Player)
		if p == nil {
			return ErrNoSuchPlayer
		}

		if err := g.applySelection(p, m.List, m.Hash); err != nil {
			return err
		}
	case MsgContentList:
		if m.List >= MaxContentLists {
			return ErrCapacityExceeded
		}

		g.content[m.List].Reset()
		for _, h := range m.Hashes {
			g.content[m.List].Add(h)
		}
	case MsgOptionUpdate:
		if err := g.storeOption(m); err != nil {
			return err
		}
	case MsgGameStateChange:
		if g.state == StateOff && m.GameState == StatePlaying {
			g.seed = m.Seed
			g.rand.Seed(m.Seed)
		}

		g.setState(m.GameState)
		return nil
	default:
		return fmt.Errorf("unexpected from server: %w", ErrBadMessage)
	}

	g.notify(m)

	return nil
}

// Start begins play. Only an off game with matching content can start;
// a client only asks its server to start.
func (g *Game) Start() error {
	if g.buffer == nil {
		return ErrNotConfigured
	}
	if g.state != StateOff {
		return fmt.Errorf("start while %s: %w", g.state, ErrInvalidState)
	}

	return g.requestState(StatePlaying)
}

// Pause halts input while playing.
func (g *Game) Pause() error {
	if g.state != StatePlaying {
		return fmt.Errorf("pause while %s: %w", g.state, ErrInvalidState)
	}

	return g.requestState(StatePaused)
}

// Resume continues a paused game.
func (g *Game) Resume() error {
	if g.state != StatePaused {
		return fmt.Errorf("resume while %s: %w", g.state, ErrInvalidState)
	}

	return g.requestState(StatePlaying)
}

// End turns the game off from any state. Input buffer cursors and
// received input are reset; players, bindings and options are kept.
func (g *Game) End() error {
	return g.requestState(StateOff)
}

func (g *Game) requestState(s GameState) error {
	if !g.authority() {
		return g.sendServer(&Message{Type: MsgGameStateChange, GameState: s})
	}

	return g.changeState(s)
}

// changeState validates and applies a transition on the authority.
func (g *Game) changeState(s GameState) error {
	switch s {
	case StatePlaying:
		switch g.state {
		case StateOff:
			if !g.ContentReady() {
				return ErrContentMismatch
			}
		case StatePaused:
		default:
			return fmt.Errorf("%s to %s: %w", g.state, s, ErrInvalidState)
		}
	case StatePaused:
		if g.state != StatePlaying {
			return fmt.Errorf("%s to %s: %w", g.state, s, ErrInvalidState)
		}
	case StateOff:
	default:
		return fmt.Errorf("%s: %w", s, ErrInvalidState)
	}

	if g.state == StateOff && s == StatePlaying {
		if !g.fixedSeed {
			g.seed = uint32(time.Now().UnixNano())
		}
		g.rand.Seed(g.seed)
	}

	g.setState(s)
	g.broadcast(&Message{Type: MsgGameStateChange, GameState: s, Seed: g.seed}, PeerIDNil)

	return nil
}

func (g *Game) setState(s GameState) {
	if s == StateOff {
		if g.buffer != nil {
			g.buffer.Reset()
		}

		for _, p := range g.Players() {
			p.receivedInput = false
		}

		for i := range g.input {
			g.input[i] = ControllerState{}
		}
	}

	if g.state != s {
		g.logger.Printf("game %q: %s -> %s", g.name, g.state, s)
	}

	g.state = s
	g.notify(&Message{Type: MsgGameStateChange, GameState: s, Seed: g.seed})
}
