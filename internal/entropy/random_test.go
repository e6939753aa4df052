package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededIsReproducible(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float(), b.Float(), "draw %d", i)
	}
}

func TestSeededRange(t *testing.T) {
	src := NewSeeded(99)
	for i := 0; i < 10000; i++ {
		v := src.Float()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestSequenceCycles(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	assert.Equal(t, 0.1, s.Float())
	assert.Equal(t, 0.9, s.Float())
	assert.Equal(t, 0.1, s.Float())
	assert.Equal(t, 3, s.Draws())
}

func TestPickStaysInRange(t *testing.T) {
	assert.Equal(t, 0, Pick(NewSequence(0), 3))
	assert.Equal(t, 1, Pick(NewSequence(0.5), 3))
	assert.Equal(t, 2, Pick(NewSequence(0.9999999), 3))
}

func TestUniform(t *testing.T) {
	assert.InDelta(t, 1.0, Uniform(NewSequence(0.5), 0, 2), 1e-12)
	assert.InDelta(t, 2.5, Uniform(NewSequence(0.5), 0, 5), 1e-12)
}

func TestNilClientFallsBackToCrypto(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	v := c.Float()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestSelectWithoutKeyIsSeeded(t *testing.T) {
	src := Select("", 11)
	_, ok := src.(*Seeded)
	assert.True(t, ok)
	assert.Equal(t, NewSeeded(11).Float(), src.Float())
}

func TestForkTakesOneDraw(t *testing.T) {
	parent := NewSequence(0.3)
	a := Fork(parent)
	assert.Equal(t, 1, parent.Draws())

	b := Fork(NewSequence(0.3))
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Float(), b.Float(), "same draw gives the same stream")
	}
}
