package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joynet-go/joynet/joynet"
)

func TestCatalog(t *testing.T) {
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), "storage", "content.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	high := uint64(0xfedcba9876543210)
	require.NoError(t, cat.Add(CatalogEntry{List: 1, Hash: high, Name: "track.bin"}))
	require.NoError(t, cat.Add(CatalogEntry{List: 0, Hash: 7, Name: "rom.bin"}))
	require.NoError(t, cat.Add(CatalogEntry{List: 1, Hash: 8, Name: "car.bin"}))
	require.NoError(t, cat.Add(CatalogEntry{List: 1, Hash: high, Name: "track2.bin"}))

	assert.ErrorIs(t, cat.Add(CatalogEntry{List: joynet.MaxContentLists, Hash: 1}), joynet.ErrCapacityExceeded)
	assert.ErrorIs(t, cat.Add(CatalogEntry{List: 0, Hash: 0}), joynet.ErrInvalidContent)

	entries, err := cat.Entries()
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{
		{List: 0, Hash: 7, Name: "rom.bin"},
		{List: 1, Hash: 8, Name: "car.bin"},
		{List: 1, Hash: high, Name: "track2.bin"},
	}, entries)

	found, err := cat.Lookup("car.bin")
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{{List: 1, Hash: 8, Name: "car.bin"}}, found)

	require.NoError(t, cat.Remove(1, 8))
	require.NoError(t, cat.Remove(1, 8))

	g, err := joynet.NewGame("test", joynet.GameTypeControllers, 2, 2, nil)
	require.NoError(t, err)
	require.NoError(t, cat.Offer(g))

	assert.Equal(t, []uint64{7}, g.LocalContent(0))
	assert.Equal(t, []uint64{high}, g.LocalContent(1))
}

func executeCLI(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", config}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func TestContentCommands(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, "content_db: "+filepath.Join(dir, "content.sqlite")+"\n")

	rom := filepath.Join(dir, "rom.bin")
	require.NoError(t, os.WriteFile(rom, []byte("cartridge"), 0644))

	out, err := executeCLI(t, config, "content", "ls")
	require.NoError(t, err)
	assert.Equal(t, "no content\n", out)

	out, err = executeCLI(t, config, "content", "add", "2", rom)
	require.NoError(t, err)
	assert.Contains(t, out, "rom.bin")

	hash := joynet.ContentHash([]byte("cartridge"))
	out, err = executeCLI(t, config, "content", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "2 ")
	assert.Contains(t, out, fmt.Sprintf("%016x", hash))

	_, err = executeCLI(t, config, "content", "add", "9", rom)
	assert.Error(t, err)

	_, err = executeCLI(t, config, "content", "rm", "2", fmt.Sprintf("%016x", hash))
	require.NoError(t, err)

	out, err = executeCLI(t, config, "content", "ls")
	require.NoError(t, err)
	assert.Equal(t, "no content\n", out)
}
