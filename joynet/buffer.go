package joynet

import "fmt"

// An InputBuffer is a fixed-stride ring of encoded input frames.
//
// Writing to a full buffer drops the oldest unread frame so latency
// stays bounded; reading from an empty buffer repeats the last frame
// read so output stays continuous while the network stalls.
// Neither case is an error, both are counted.
type InputBuffer struct {
	data      []byte
	frameSize int
	frames    int

	readPos          int
	writePos         int
	previousWritePos int
	unread           int

	last []byte

	overflows   uint64
	starvations uint64
}

// NewInputBuffer allocates room for frames frames of frameSize bytes.
// The size is fixed for the lifetime of the buffer.
func NewInputBuffer(frameSize, frames int) (*InputBuffer, error) {
	if frameSize <= 0 || frames <= 0 {
		return nil, fmt.Errorf("input buffer %dx%d: %w", frames, frameSize, ErrInvalidState)
	}

	return &InputBuffer{
		data:      make([]byte, frameSize*frames),
		frameSize: frameSize,
		frames:    frames,
		last:      make([]byte, frameSize),
	}, nil
}

func (b *InputBuffer) FrameSize() int { return b.frameSize }

// Frames returns the capacity in frames.
func (b *InputBuffer) Frames() int { return b.frames }

// Len reports how many frames are waiting to be read.
func (b *InputBuffer) Len() int { return b.unread }

func (b *InputBuffer) ReadPos() int          { return b.readPos }
func (b *InputBuffer) WritePos() int         { return b.writePos }
func (b *InputBuffer) PreviousWritePos() int { return b.previousWritePos }

// Overflows reports how many unread frames were dropped by writes.
func (b *InputBuffer) Overflows() uint64 { return b.overflows }

// Starvations reports how many reads repeated the previous frame.
func (b *InputBuffer) Starvations() uint64 { return b.starvations }

func (b *InputBuffer) slot(pos int) []byte {
	return b.data[pos*b.frameSize : (pos+1)*b.frameSize]
}

// Write copies frame into the buffer. Short frames are zero padded,
// long ones truncated. It reports whether an unread frame was dropped.
func (b *InputBuffer) Write(frame []byte) bool {
	dropped := false
	if b.unread == b.frames {
		b.readPos = (b.readPos + 1) % b.frames
		b.unread--
		b.overflows++
		dropped = true
	}

	dst := b.slot(b.writePos)
	n := copy(dst, frame)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}

	b.previousWritePos = b.writePos
	b.writePos = (b.writePos + 1) % b.frames
	b.unread++

	return dropped
}

// Read copies the oldest unread frame into dst and reports true.
// If nothing is waiting the last frame read is copied instead,
// the cursors stay put and Read reports false.
func (b *InputBuffer) Read(dst []byte) bool {
	if b.unread == 0 {
		b.starvations++
		copy(dst, b.last)
		return false
	}

	src := b.slot(b.readPos)
	copy(b.last, src)
	copy(dst, src)

	b.readPos = (b.readPos + 1) % b.frames
	b.unread--

	return true
}

// Peek returns the frame at the previous write position,
// which is the newest frame, read or not.
func (b *InputBuffer) Peek() []byte {
	return b.slot(b.previousWritePos)
}

// Reset moves all cursors back to zero without reallocating.
func (b *InputBuffer) Reset() {
	b.readPos = 0
	b.writePos = 0
	b.previousWritePos = 0
	b.unread = 0

	for i := range b.last {
		b.last[i] = 0
	}
}
