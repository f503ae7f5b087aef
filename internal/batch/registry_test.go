package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SweepKeepsRunningBatch(t *testing.T) {
	r := NewRegistry(20*time.Millisecond, 0)
	running := r.Get("alice")
	require.NoError(t, running.BeginRun())
	r.Get("bob")

	time.Sleep(40 * time.Millisecond)
	r.cache.DeleteExpired()

	got, ok := r.Peek("alice")
	require.True(t, ok)
	assert.Same(t, running, got)
	_, ok = r.Peek("bob")
	assert.False(t, ok)

	running.EndRun()
	time.Sleep(40 * time.Millisecond)
	r.cache.DeleteExpired()
	_, ok = r.Peek("alice")
	assert.False(t, ok)
}

func TestRegistry_DroppedBatchDoesNotComeBack(t *testing.T) {
	r := NewRegistry(time.Hour, 0)
	b := r.Get("alice")
	r.Drop("alice")

	b.Append(nil, "late.png", 0)

	_, ok := r.Peek("alice")
	assert.False(t, ok)
}
