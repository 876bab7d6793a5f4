package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleBroadcaster(t *testing.T) {
	b := NewCycleBroadcaster(1)

	_, ok := b.Last()
	assert.False(t, ok)

	ch := b.Subscribe()
	b.Publish(CycleReport{CycleID: "a", Outcome: "no_trade"})
	b.Publish(CycleReport{CycleID: "b", Outcome: "error"}) // dropped, buffer full

	got := <-ch
	assert.Equal(t, "a", got.CycleID)

	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.CycleID)

	b.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}
