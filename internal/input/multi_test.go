package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/supermouse/internal/state"
)

func TestMultiForwardsEvents(t *testing.T) {
	a := NewManualSource(true, nil)
	b := NewManualSource(false, nil)
	m := NewMulti(a, nil, b)

	l := &recordingListener{}
	require.NoError(t, m.Start(l))
	assert.True(t, m.Enabled())

	a.Move(1, 2)
	b.Move(3, 4)
	b.Press()

	assert.Equal(t, []state.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, l.moves)
	assert.Equal(t, []bool{true}, l.buttons)
	assert.ErrorIs(t, m.Start(l), ErrAlreadyStarted)
}

func TestMultiCapabilityIsAny(t *testing.T) {
	a := NewManualSource(true, nil)
	b := NewManualSource(false, nil)
	m := NewMulti(a, b)

	l := &recordingListener{}
	require.NoError(t, m.Start(l))

	b.SetEnabled(true)
	assert.Empty(t, l.caps)

	a.SetEnabled(false)
	assert.Empty(t, l.caps)

	b.SetEnabled(false)
	assert.Equal(t, []bool{false}, l.caps)
	assert.False(t, m.Enabled())

	a.SetEnabled(true)
	assert.Equal(t, []bool{false, true}, l.caps)
}

func TestMultiClose(t *testing.T) {
	a := NewManualSource(true, nil)
	m := NewMulti(a)

	l := &recordingListener{}
	require.NoError(t, m.Start(l))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	a.Move(5, 5)
	assert.Empty(t, l.moves)
	assert.ErrorIs(t, m.Start(l), ErrClosed)
}

func TestMultiStartFailureClosesStarted(t *testing.T) {
	a := NewManualSource(true, nil)
	b := NewManualSource(true, nil)
	require.NoError(t, b.Start(&recordingListener{}))

	m := NewMulti(a, b)
	assert.ErrorIs(t, m.Start(&recordingListener{}), ErrAlreadyStarted)

	assert.ErrorIs(t, a.Start(&recordingListener{}), ErrClosed)
}
