package joynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentListAdd(t *testing.T) {
	l := NewContentList(2)

	require.NoError(t, l.Add(5))
	require.NoError(t, l.Add(9))
	require.NoError(t, l.Add(5))
	assert.ErrorIs(t, l.Add(11), ErrCapacityExceeded)

	assert.Equal(t, []uint64{5, 9}, l.Hashes())
	assert.Equal(t, 1, l.Index(9))
	assert.Equal(t, -1, l.Index(11))
}

func TestIntersectKeepsFirstListOrder(t *testing.T) {
	a, b, c := NewContentList(8), NewContentList(8), NewContentList(8)
	for _, h := range []uint64{4, 3, 2, 1} {
		a.Add(h)
	}
	for _, h := range []uint64{1, 2, 3} {
		b.Add(h)
	}
	for _, h := range []uint64{3, 1, 7} {
		c.Add(h)
	}

	assert.Equal(t, []uint64{3, 1}, intersect([]*ContentList{a, b, c}).Hashes())
	assert.Empty(t, intersect(nil).Hashes())
}

func TestAddContent(t *testing.T) {
	g := newLocalGame(t, 2, 2)

	require.NoError(t, g.AddContent(0, 10))
	require.NoError(t, g.AddContent(0, 10))
	assert.Equal(t, []uint64{10}, g.LocalContent(0))

	assert.ErrorIs(t, g.AddContent(0, 0), ErrInvalidContent)
	assert.ErrorIs(t, g.AddContent(MaxContentLists, 1), ErrCapacityExceeded)
	assert.ErrorIs(t, g.AddContent(-1, 1), ErrCapacityExceeded)
}

func TestSelectContentResolvesLocalIndex(t *testing.T) {
	g := newLocalGame(t, 2, 2)

	slot, err := g.Watch()
	require.NoError(t, err)

	require.NoError(t, g.AddContent(1, 100))
	require.NoError(t, g.AddContent(1, 200))

	require.NoError(t, g.SelectContent(slot, 1, 200))
	p := g.Player(slot)
	assert.Equal(t, uint64(200), p.SelectedContent[1])
	assert.Equal(t, 1, p.SelectedContentIndex[1])

	require.NoError(t, g.SelectContent(slot, 2, 300))
	assert.Equal(t, uint64(300), p.SelectedContent[2])
	assert.Equal(t, -1, p.SelectedContentIndex[2])

	require.NoError(t, g.AddContent(2, 300))
	assert.Equal(t, 0, p.SelectedContentIndex[2])

	require.NoError(t, g.SelectContent(slot, 1, 0))
	assert.Zero(t, p.SelectedContent[1])
	assert.Empty(t, p.Selection(1))

	assert.ErrorIs(t, g.SelectContent(5, 1, 100), ErrNoSuchPlayer)
}

func TestContentIntersectionGatesStart(t *testing.T) {
	g := newLocalGame(t, 2, 2)

	for h := uint64(1); h <= 4; h++ {
		require.NoError(t, g.AddContent(0, h))
	}

	a, err := g.Watch()
	require.NoError(t, err)
	b, err := g.Watch()
	require.NoError(t, err)

	for _, h := range []uint64{1, 2, 3} {
		require.NoError(t, g.SelectContent(a, 0, h))
	}
	for _, h := range []uint64{2, 3, 4} {
		require.NoError(t, g.SelectContent(b, 0, h))
	}

	assert.Equal(t, []uint64{2, 3}, g.MasterContent(0))
	assert.Equal(t, []uint64{2, 3}, g.CommonContent(0))
	assert.Equal(t, []uint64{1}, g.UnmatchedContent(0))
	assert.False(t, g.ContentReady())
	assert.ErrorIs(t, g.Start(), ErrContentMismatch)
	assert.Equal(t, StateOff, g.State())

	require.NoError(t, g.SelectContent(a, 0, 0))
	require.NoError(t, g.SelectContent(a, 0, 2))
	require.NoError(t, g.SelectContent(a, 0, 3))

	assert.Equal(t, []uint64{2, 3}, g.MasterContent(0))
	assert.Empty(t, g.UnmatchedContent(0))
	require.NoError(t, g.Start())
	assert.Equal(t, StatePlaying, g.State())
}

func TestContentWithoutOverlapBlocksStart(t *testing.T) {
	g := newLocalGame(t, 2, 2)

	a, _ := g.Watch()
	b, _ := g.Watch()

	require.NoError(t, g.SelectContent(a, 3, 1))
	require.NoError(t, g.SelectContent(b, 3, 2))

	assert.Empty(t, g.MasterContent(3))
	assert.ErrorIs(t, g.Start(), ErrContentMismatch)

	// Once the holder of 2 leaves, only 1 is left to agree on.
	require.NoError(t, g.SelectPlayer(b))
	require.NoError(t, g.Leave())

	assert.Equal(t, []uint64{1}, g.MasterContent(3))
	assert.NoError(t, g.Start())
}

func TestPlayerWithoutSelectionBlocksStart(t *testing.T) {
	g := newLocalGame(t, 3, 2)

	a, _ := g.Watch()
	b, _ := g.Watch()
	c, _ := g.Watch()

	require.NoError(t, g.SelectContent(a, 0, 1))
	require.NoError(t, g.SelectContent(b, 0, 1))

	assert.Empty(t, g.MasterContent(0))
	assert.False(t, g.ContentReady())
	assert.ErrorIs(t, g.Start(), ErrContentMismatch)
	assert.Equal(t, StateOff, g.State())

	require.NoError(t, g.SelectContent(c, 0, 1))

	assert.Equal(t, []uint64{1}, g.MasterContent(0))
	require.NoError(t, g.Start())
	assert.Equal(t, StatePlaying, g.State())
}

func TestUnselectedListsDoNotGateStart(t *testing.T) {
	g := newLocalGame(t, 2, 2)

	_, err := g.Watch()
	require.NoError(t, err)
	_, err = g.Watch()
	require.NoError(t, err)

	assert.True(t, g.ContentReady())
	assert.NoError(t, g.Start())
}
