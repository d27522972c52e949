package joynet

import (
	"bytes"
	"fmt"
	"math"
)

// noPort is how an absent port travels on the wire.
const noPort = 0xFF

// mouseSize is the packed size of x, y, wheel and the button byte.
const mouseSize = 2 + 2 + 2 + 1

// A Message is the decoded form of everything a Game sends.
// Which fields are meaningful depends on Type.
type Message struct {
	Type MsgType

	// PLAYER_JOIN, PLAYER_LEAVE, CONTENT_SELECT, OPTION_UPDATE (player scope)
	Player int

	// PLAYER_JOIN
	Name       string
	Local      bool
	Controller bool

	// PLAYER_JOIN, CONTROLLER_STATE; -1 means none
	Port int

	// CONTROLLER_STATE
	State ControllerState

	// INPUT_FRAME
	Frame []byte

	// CONTENT_SELECT, CONTENT_LIST
	List   int
	Hash   uint64
	Hashes []uint64

	// OPTION_UPDATE
	Scope OptionScope
	Slot  int
	Value int

	// GAME_STATE_CHANGE; Seed is what peers seed their Rand with on start
	GameState GameState
	Seed      uint32
}

func (m *Message) String() string {
	switch m.Type {
	case MsgPlayerJoin:
		return fmt.Sprintf("%s player=%d name=%q port=%d", m.Type, m.Player, m.Name, m.Port)
	case MsgPlayerLeave:
		return fmt.Sprintf("%s player=%d", m.Type, m.Player)
	case MsgContentSelect:
		return fmt.Sprintf("%s player=%d list=%d hash=%016x", m.Type, m.Player, m.List, m.Hash)
	case MsgContentList:
		return fmt.Sprintf("%s list=%d count=%d", m.Type, m.List, len(m.Hashes))
	case MsgOptionUpdate:
		return fmt.Sprintf("%s scope=%d player=%d slot=%d value=%d", m.Type, m.Scope, m.Player, m.Slot, m.Value)
	case MsgGameStateChange:
		return fmt.Sprintf("%s %s seed=%d", m.Type, m.GameState, m.Seed)
	}

	return m.Type.String()
}

// A Codec packs Messages into bytes and back. Controller records
// depend on the button and axis layout fixed by SetupControllers,
// so both ends of a session must use the same Codec settings.
type Codec struct {
	Buttons int
	Axes    int
	Mouse   bool
}

// RecordSize is the packed size of one ControllerState.
func (c Codec) RecordSize() int {
	n := (c.Buttons+7)/8 + c.Axes
	if c.Mouse {
		n += mouseSize
	}

	return n
}

func quantizeAxis(v float32) int8 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}

	return int8(math.Round(float64(v) * 127))
}

func dequantizeAxis(v int8) float32 {
	return float32(v) / 127
}

// PutRecord packs s into b which must be at least RecordSize bytes long.
// Button i is bit i%8 of byte i/8.
func (c Codec) PutRecord(b []byte, s *ControllerState) {
	bits := (c.Buttons + 7) / 8
	for i := 0; i < bits; i++ {
		b[i] = 0
	}
	for i := 0; i < c.Buttons; i++ {
		if s.Button[i] {
			b[i/8] |= 1 << (i % 8)
		}
	}

	for i := 0; i < c.Axes; i++ {
		b[bits+i] = byte(quantizeAxis(s.Axis[i]))
	}

	if c.Mouse {
		o := bits + c.Axes
		b[o], b[o+1] = byte(uint16(s.MouseX)>>8), byte(s.MouseX)
		b[o+2], b[o+3] = byte(uint16(s.MouseY)>>8), byte(s.MouseY)
		b[o+4], b[o+5] = byte(uint16(s.MouseZ)>>8), byte(s.MouseZ)
		b[o+6] = s.MouseB
	}
}

// Record unpacks a ControllerState packed by PutRecord.
func (c Codec) Record(b []byte) ControllerState {
	var s ControllerState

	bits := (c.Buttons + 7) / 8
	for i := 0; i < c.Buttons; i++ {
		s.Button[i] = b[i/8]&(1<<(i%8)) != 0
	}

	for i := 0; i < c.Axes; i++ {
		s.Axis[i] = dequantizeAxis(int8(b[bits+i]))
	}

	if c.Mouse {
		o := bits + c.Axes
		s.MouseX = int16(uint16(b[o])<<8 | uint16(b[o+1]))
		s.MouseY = int16(uint16(b[o+2])<<8 | uint16(b[o+3]))
		s.MouseZ = int16(uint16(b[o+4])<<8 | uint16(b[o+5]))
		s.MouseB = b[o+6]
	}

	return s
}

func writePort(w *bytes.Buffer, port int) {
	if port < 0 || port >= noPort {
		WriteUint8(w, noPort)
		return
	}

	WriteUint8(w, uint8(port))
}

func readPort(r *bytes.Reader) (int, error) {
	p, err := ReadUint8(r)
	if err != nil {
		return 0, err
	}
	if p == noPort {
		return -1, nil
	}

	return int(p), nil
}

// Marshal packs m. It fails only for values that cannot be represented.
func (c Codec) Marshal(m *Message) ([]byte, error) {
	w := bytes.NewBuffer([]byte{uint8(m.Type)})

	switch m.Type {
	case MsgNop:
	case MsgPlayerJoin:
		WriteUint16(w, uint16(m.Player))

		var flags uint8
		if m.Local {
			flags |= 1
		}
		if m.Controller {
			flags |= 2
		}
		WriteUint8(w, flags)

		writePort(w, m.Port)
		WriteBytes16(w, []byte(m.Name))
	case MsgPlayerLeave:
		WriteUint16(w, uint16(m.Player))
	case MsgControllerState:
		writePort(w, m.Port)

		rec := make([]byte, c.RecordSize())
		c.PutRecord(rec, &m.State)
		w.Write(rec)
	case MsgInputFrame:
		WriteBytes32(w, m.Frame)
	case MsgContentSelect:
		WriteUint16(w, uint16(m.Player))
		WriteUint8(w, uint8(m.List))
		WriteUint64(w, m.Hash)
	case MsgContentList:
		if len(m.Hashes) > MaxContentListSize {
			return nil, fmt.Errorf("content list %d: %w", m.List, ErrCapacityExceeded)
		}

		WriteUint8(w, uint8(m.List))
		WriteUint16(w, uint16(len(m.Hashes)))
		for _, h := range m.Hashes {
			WriteUint64(w, h)
		}
	case MsgOptionUpdate:
		if m.Value > math.MaxInt32 || m.Value < math.MinInt32 {
			return nil, fmt.Errorf("option value %d: %w", m.Value, ErrInvalidOption)
		}

		WriteUint8(w, uint8(m.Scope))
		WriteUint16(w, uint16(m.Player))
		WriteUint8(w, uint8(m.Slot))
		WriteUint32(w, uint32(int32(m.Value)))
	case MsgGameStateChange:
		WriteUint8(w, uint8(m.GameState))
		WriteUint32(w, m.Seed)
	default:
		return nil, fmt.Errorf("%s: %w", m.Type, ErrBadMessage)
	}

	return w.Bytes(), nil
}

// Unmarshal decodes a message packed by Marshal.
// Truncated or unknown messages fail with ErrBadMessage.
func (c Codec) Unmarshal(data []byte) (*Message, error) {
	r := bytes.NewReader(data)

	t, err := ReadUint8(r)
	if err != nil {
		return nil, err
	}

	m := &Message{Type: MsgType(t), Port: -1}

	switch m.Type {
	case MsgNop:
		return m, nil
	case MsgPlayerJoin:
		player, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		m.Player = int(player)

		flags, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		m.Local = flags&1 != 0
		m.Controller = flags&2 != 0

		if m.Port, err = readPort(r); err != nil {
			return nil, err
		}

		name, err := ReadBytes16(r)
		if err != nil {
			return nil, err
		}
		m.Name = string(name)
	case MsgPlayerLeave:
		player, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		m.Player = int(player)
	case MsgControllerState:
		if m.Port, err = readPort(r); err != nil {
			return nil, err
		}

		rec, err := readFull(r, c.RecordSize())
		if err != nil {
			return nil, err
		}
		m.State = c.Record(rec)
	case MsgInputFrame:
		if m.Frame, err = ReadBytes32(r); err != nil {
			return nil, err
		}
	case MsgContentSelect:
		player, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		m.Player = int(player)

		list, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		m.List = int(list)

		if m.Hash, err = ReadUint64(r); err != nil {
			return nil, err
		}
	case MsgContentList:
		list, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		m.List = int(list)

		count, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		if int(count) > MaxContentListSize {
			return nil, ErrBadMessage
		}

		m.Hashes = make([]uint64, count)
		for i := range m.Hashes {
			if m.Hashes[i], err = ReadUint64(r); err != nil {
				return nil, err
			}
		}
	case MsgOptionUpdate:
		scope, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		m.Scope = OptionScope(scope)

		player, err := ReadUint16(r)
		if err != nil {
			return nil, err
		}
		m.Player = int(player)

		slot, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		m.Slot = int(slot)

		v, err := ReadUint32(r)
		if err != nil {
			return nil, err
		}
		m.Value = int(int32(v))
	case MsgGameStateChange:
		s, err := ReadUint8(r)
		if err != nil {
			return nil, err
		}
		if GameState(s) > StatePaused {
			return nil, ErrBadMessage
		}
		m.GameState = GameState(s)

		if m.Seed, err = ReadUint32(r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w", m.Type, ErrBadMessage)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%s: %d trailing bytes: %w", m.Type, r.Len(), ErrBadMessage)
	}

	return m, nil
}
