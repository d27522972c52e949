package joynet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPSession(t *testing.T) {
	us, err := ListenUDP("127.0.0.1:0", 4)
	require.NoError(t, err)

	srv, err := NewGame("srv", GameTypeControllers, 2, 2, nil)
	require.NoError(t, err)
	require.NoError(t, srv.SetupControllers(8, 1, 8))
	require.NoError(t, srv.OpenServer(us))
	t.Cleanup(srv.Destroy)

	uc, err := DialUDP(us.Addr().String())
	require.NoError(t, err)

	clt, err := NewGame("clt", GameTypeControllers, 2, 2, nil)
	require.NoError(t, err)
	require.NoError(t, clt.SetupControllers(8, 1, 8))
	require.NoError(t, clt.ConnectToServer(uc))
	t.Cleanup(clt.Destroy)

	level := 4
	require.NoError(t, clt.AddGameOption(&level))
	require.NoError(t, clt.UpdateGameOptions())

	require.Eventually(t, func() bool {
		srv.UpdateServer()
		clt.Update()

		return clt.ServerOption(0) == 4
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 4, srv.ServerOption(0))
}

func TestDialUDPUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the connect timeout")
	}

	_, err := DialUDP("127.0.0.1:1")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestPeerIDs(t *testing.T) {
	ids := newPeerIDs(2)

	a, ok := ids.take()
	require.True(t, ok)
	b, ok := ids.take()
	require.True(t, ok)
	_, ok = ids.take()
	assert.False(t, ok)

	assert.Equal(t, PeerIDCltMin, a)
	assert.Equal(t, PeerIDCltMin+1, b)

	ids.release(a)
	c, ok := ids.take()
	require.True(t, ok)
	assert.Equal(t, a, c)
}

func TestUDPServerReusesIDAfterDisconnect(t *testing.T) {
	us, err := ListenUDP("127.0.0.1:0", 0)
	require.NoError(t, err)
	t.Cleanup(func() { us.Close() })

	var evs []Event
	seen := func(kind EventKind) bool {
		evs = append(evs, us.Poll()...)
		for _, ev := range evs {
			if ev.Kind == kind {
				return true
			}
		}

		return false
	}

	a, err := DialUDP(us.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return seen(EventConnect) }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return seen(EventDisconnect) }, 5*time.Second, 10*time.Millisecond)

	b, err := DialUDP(us.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	require.Eventually(t, func() bool {
		seen(EventConnect)

		connects := 0
		for _, ev := range evs {
			if ev.Kind == EventConnect {
				connects++
			}
		}

		return connects == 2
	}, 5*time.Second, 10*time.Millisecond)

	// Per peer, events alternate between connect and disconnect.
	want := map[PeerID]EventKind{}
	for _, ev := range evs {
		if ev.Kind == EventReceive {
			continue
		}

		next, ok := want[ev.Peer]
		if !ok {
			next = EventConnect
		}
		require.Equal(t, next, ev.Kind, "%s", ev.Peer)

		if ev.Kind == EventConnect {
			want[ev.Peer] = EventDisconnect
		} else {
			want[ev.Peer] = EventConnect
		}
	}
}
