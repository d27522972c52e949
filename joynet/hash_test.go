package joynet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("level1.map"))
	b := ContentHash([]byte("level2.map"))

	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ContentHash([]byte("level1.map")))

	r, err := HashReader(bytes.NewReader([]byte("level1.map")))
	require.NoError(t, err)
	assert.Equal(t, a, r)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0644))

	h, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, ContentHash([]byte{1, 2, 3, 4}), h)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestTruncateHashNeverZero(t *testing.T) {
	assert.Equal(t, uint64(1), truncateHash(make([]byte, 32)))
}
