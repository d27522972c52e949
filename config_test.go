package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joynet-go/joynet/joynet"
)

func writeConfig(t *testing.T, yml string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "joynet.yml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	return path
}

func TestConfKey(t *testing.T) {
	path := writeConfig(t, `
host: 127.0.0.1:40001
tick_rate: 30
game:
  name: kart
  max_players: 4
controllers:
  buttons: 12
`)
	require.NoError(t, LoadConfig(path))

	assert.Equal(t, "127.0.0.1:40001", ConfKey("host"))
	assert.Equal(t, "kart", ConfKey("game:name"))
	assert.Equal(t, 4, ConfKey("game:max_players"))
	assert.Nil(t, ConfKey("game:type"))
	assert.Nil(t, ConfKey("host:port"))
	assert.Nil(t, ConfKey("missing:key"))

	assert.Equal(t, "controllers", confString("game:type", "controllers"))
	assert.Equal(t, 12, confInt("controllers:buttons", 16))
	assert.Equal(t, 30, confInt("tick_rate", 60))
	assert.Equal(t, 60, confInt("host", 60))
}

func TestLoadConfigMissingFile(t *testing.T) {
	require.NoError(t, LoadConfig(filepath.Join(t.TempDir(), "none.yml")))
	assert.Nil(t, ConfKey("host"))
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, "game: [unterminated")
	assert.Error(t, LoadConfig(path))
}

func TestNewGameFromConfig(t *testing.T) {
	require.NoError(t, LoadConfig(writeConfig(t, `
player_name: ann
game:
  name: kart
  type: mice
  max_players: 3
  max_controllers: 2
controllers:
  buttons: 3
  axes: 0
  buffer_frames: 4
`)))

	reg := joynet.NewRegistry()
	g, err := newGame(reg)
	require.NoError(t, err)
	t.Cleanup(func() { End(reg) })

	assert.Equal(t, "kart", g.Name())
	assert.Equal(t, 3, g.MaxPlayers())
	assert.Equal(t, 4, g.Buffer().Frames())
	assert.Equal(t, 2*(1+7), g.Buffer().FrameSize())

	slot, err := g.Watch()
	require.NoError(t, err)
	assert.Equal(t, "ann", g.Player(slot).Name)
}

func TestNewGameRejectsBadType(t *testing.T) {
	require.NoError(t, LoadConfig(writeConfig(t, "game:\n  type: wheel\n")))

	_, err := newGame(joynet.NewRegistry())
	assert.Error(t, err)
}
