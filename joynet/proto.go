package joynet

import "fmt"

// PeerIDs identify the connections a Server knows about.
// Player slots are separate and are never derived from them.
type PeerID uint16

const (
	// Owner of players created on this machine.
	PeerIDNil PeerID = iota

	// The server as seen by its clients.
	PeerIDSrv

	// Lowest ID a Server can assign to a client.
	PeerIDCltMin
)

func (id PeerID) String() string {
	switch id {
	case PeerIDNil:
		return "local"
	case PeerIDSrv:
		return "server"
	}

	return fmt.Sprintf("peer %d", uint16(id))
}

// ChannelCount is the maximum channel number + 1
const ChannelCount = 3

// Reliable packets sent on the same channel arrive in the order they were sent in.
const (
	ChannelState uint8 = iota
	ChannelContent
	ChannelInput
)

// PktInfo describes how a message should be delivered.
type PktInfo struct {
	Channel uint8

	// Unrel (unreliable) packets may be dropped, duplicated or reordered.
	Unrel bool
}

// MsgType is the first byte of every message.
type MsgType uint8

const (
	// Sent by dialers to check reachability, ignored on receipt.
	MsgNop MsgType = iota

	MsgPlayerJoin
	MsgPlayerLeave
	MsgControllerState
	MsgInputFrame
	MsgContentSelect
	MsgContentList
	MsgOptionUpdate
	MsgGameStateChange
)

var msgNames = map[MsgType]string{
	MsgNop:             "NOP",
	MsgPlayerJoin:      "PLAYER_JOIN",
	MsgPlayerLeave:     "PLAYER_LEAVE",
	MsgControllerState: "CONTROLLER_STATE",
	MsgInputFrame:      "INPUT_FRAME",
	MsgContentSelect:   "CONTENT_SELECT",
	MsgContentList:     "CONTENT_LIST",
	MsgOptionUpdate:    "OPTION_UPDATE",
	MsgGameStateChange: "GAME_STATE_CHANGE",
}

func (t MsgType) String() string {
	if s, ok := msgNames[t]; ok {
		return s
	}

	return fmt.Sprintf("MsgType(%d)", uint8(t))
}

// pktInfo returns the delivery guarantees a message kind needs.
// Controller state is resent every tick so losing some is fine,
// everything else must arrive exactly once. Selections refer to players
// and share their channel to stay behind the join.
func (t MsgType) pktInfo() PktInfo {
	switch t {
	case MsgControllerState:
		return PktInfo{Channel: ChannelInput, Unrel: true}
	case MsgInputFrame:
		return PktInfo{Channel: ChannelInput}
	case MsgContentList:
		return PktInfo{Channel: ChannelContent}
	}

	return PktInfo{Channel: ChannelState}
}

// OptionScope tells whether an option slot belongs to the game or a player.
type OptionScope uint8

const (
	ScopeGame OptionScope = iota
	ScopePlayer
)
