package joynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandSequence(t *testing.T) {
	r := NewRand(1)

	var got []int
	for i := 0; i < 6; i++ {
		got = append(got, r.Int())
	}

	assert.Equal(t, []int{41, 51235, 6334, 59268, 51937, 15724}, got)
}

func TestRandSeedRestarts(t *testing.T) {
	r := NewRand(12345)
	assert.Equal(t, 40352, r.Int())
	assert.Equal(t, 19164, r.Int())

	r.Seed(12345)
	assert.Equal(t, 40352, r.Int())
}

func TestRandFloat64(t *testing.T) {
	r := NewRand(12345)
	assert.Equal(t, 0.8936049259770016, r.Float64())

	for i := 0; i < 1000; i++ {
		d := r.Float64()
		assert.GreaterOrEqual(t, d, 0.0)
		assert.Less(t, d, 1.0)
	}
}
