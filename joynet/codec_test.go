package joynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRecordSize(t *testing.T) {
	assert.Equal(t, 0, Codec{}.RecordSize())
	assert.Equal(t, 1+2, Codec{Buttons: 8, Axes: 2}.RecordSize())
	assert.Equal(t, 2+0, Codec{Buttons: 9}.RecordSize())
	assert.Equal(t, 2+8+7, Codec{Buttons: 16, Axes: 8, Mouse: true}.RecordSize())
}

func TestCodecPacksButtonBits(t *testing.T) {
	c := Codec{Buttons: 10, Axes: 1}

	var s ControllerState
	s.Button[0] = true
	s.Button[3] = true
	s.Button[9] = true
	s.Axis[0] = -1

	b := make([]byte, c.RecordSize())
	c.PutRecord(b, &s)

	assert.Equal(t, []byte{0x09, 0x02, 0x81}, b)
	assert.Equal(t, s, c.Record(b))
}

func TestCodecQuantizesAxes(t *testing.T) {
	c := Codec{Axes: 4}

	var s ControllerState
	s.Axis = [MaxControllerAxes]float32{0.5, 2, -3, 0}

	b := make([]byte, c.RecordSize())
	c.PutRecord(b, &s)
	got := c.Record(b)

	assert.InDelta(t, 0.5, got.Axis[0], 1.0/127)
	assert.Equal(t, float32(1), got.Axis[1])
	assert.Equal(t, float32(-1), got.Axis[2])
	assert.Equal(t, float32(0), got.Axis[3])
}

func TestCodecMouse(t *testing.T) {
	c := Codec{Buttons: 1, Mouse: true}

	s := ControllerState{MouseX: -300, MouseY: 2, MouseZ: -1, MouseB: 5}
	b := make([]byte, c.RecordSize())
	c.PutRecord(b, &s)

	assert.Equal(t, s, c.Record(b))
}

func TestCodecMessages(t *testing.T) {
	c := Codec{Buttons: 4, Axes: 2}

	var st ControllerState
	st.Button[2] = true

	msgs := []*Message{
		{Type: MsgNop, Port: -1},
		{Type: MsgPlayerJoin, Player: 3, Name: "ann", Controller: true, Port: 1},
		{Type: MsgPlayerJoin, Player: 255, Name: "", Local: true, Port: -1},
		{Type: MsgPlayerLeave, Player: 7, Port: -1},
		{Type: MsgControllerState, Port: 2, State: st},
		{Type: MsgInputFrame, Frame: []byte{1, 2, 3}, Port: -1},
		{Type: MsgContentSelect, Player: 1, List: 2, Hash: 0xdeadbeef, Port: -1},
		{Type: MsgContentList, List: 1, Hashes: []uint64{2, 3}, Port: -1},
		{Type: MsgOptionUpdate, Scope: ScopePlayer, Player: 4, Slot: 9, Value: -7, Port: -1},
		{Type: MsgGameStateChange, GameState: StatePaused, Seed: 0xC0FFEE, Port: -1},
	}

	for _, m := range msgs {
		t.Run(m.Type.String(), func(t *testing.T) {
			data, err := c.Marshal(m)
			require.NoError(t, err)
			assert.Equal(t, uint8(m.Type), data[0])

			got, err := c.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestCodecRejectsMalformed(t *testing.T) {
	c := Codec{Buttons: 4, Axes: 2}

	data, err := c.Marshal(&Message{Type: MsgContentSelect, Player: 1, List: 0, Hash: 9})
	require.NoError(t, err)

	_, err = c.Unmarshal(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrBadMessage)

	_, err = c.Unmarshal(append(data, 0))
	assert.ErrorIs(t, err, ErrBadMessage)

	_, err = c.Unmarshal([]byte{0xEE})
	assert.ErrorIs(t, err, ErrBadMessage)

	_, err = c.Unmarshal(nil)
	assert.ErrorIs(t, err, ErrBadMessage)

	_, err = c.Unmarshal([]byte{uint8(MsgGameStateChange), 9, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrBadMessage)

	_, err = c.Unmarshal([]byte{uint8(MsgGameStateChange), uint8(StatePlaying)})
	assert.ErrorIs(t, err, ErrBadMessage)
}

func TestCodecRejectsOutOfRangeOption(t *testing.T) {
	_, err := Codec{}.Marshal(&Message{Type: MsgOptionUpdate, Value: 1 << 40})
	assert.ErrorIs(t, err, ErrInvalidOption)
}
