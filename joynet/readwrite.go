package joynet

import (
	"encoding/binary"
	"io"
)

// No message carries more than this many bytes in a single field.
const maxFieldSize = 1 << 16

func readFull(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, ErrBadMessage
	}

	return b, nil
}

func ReadUint8(r io.Reader) (uint8, error) {
	b, err := readFull(r, 1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func WriteUint8(w io.Writer, v uint8) {
	w.Write([]byte{v})
}

func ReadUint16(r io.Reader) (uint16, error) {
	b, err := readFull(r, 2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

func WriteUint16(w io.Writer, v uint16) {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	w.Write(b)
}

func ReadUint32(r io.Reader) (uint32, error) {
	b, err := readFull(r, 4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b), nil
}

func WriteUint32(w io.Writer, v uint32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	w.Write(b)
}

func ReadUint64(r io.Reader) (uint64, error) {
	b, err := readFull(r, 8)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

func WriteUint64(w io.Writer, v uint64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	w.Write(b)
}

// ReadBytes16 reads a byte slice prefixed with its uint16 length
func ReadBytes16(r io.Reader) ([]byte, error) {
	l, err := ReadUint16(r)
	if err != nil {
		return nil, err
	}

	return readFull(r, int(l))
}

func WriteBytes16(w io.Writer, v []byte) {
	WriteUint16(w, uint16(len(v)))
	w.Write(v)
}

// ReadBytes32 reads a byte slice prefixed with its uint32 length
func ReadBytes32(r io.Reader) ([]byte, error) {
	l, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if l > maxFieldSize {
		return nil, ErrBadMessage
	}

	return readFull(r, int(l))
}

func WriteBytes32(w io.Writer, v []byte) {
	WriteUint32(w, uint32(len(v)))
	w.Write(v)
}
