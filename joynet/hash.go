package joynet

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// ContentHash returns the 64 bit hash content is identified by in
// content lists: the first 8 bytes of its BLAKE3 digest.
// 0 means no content, so it is never returned.
func ContentHash(data []byte) uint64 {
	sum := blake3.Sum256(data)
	return truncateHash(sum[:])
}

// HashReader hashes everything r yields the way ContentHash does.
func HashReader(r io.Reader) (uint64, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}

	return truncateHash(h.Sum(nil)), nil
}

// HashFile hashes the file at path.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h, err := HashReader(f)
	if err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}

	return h, nil
}

func truncateHash(sum []byte) uint64 {
	h := binary.BigEndian.Uint64(sum)
	if h == 0 {
		h = 1
	}

	return h
}
