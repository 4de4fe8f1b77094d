package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingActions_AddAndTake(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	batchID := pending.Add([]string{"a1", "a3"})
	require.NotEmpty(t, batchID)
	assert.Equal(t, 1, pending.Len())

	fileIDs, ok := pending.Take(batchID)
	require.True(t, ok)
	assert.Equal(t, []string{"a1", "a3"}, fileIDs)
	assert.Equal(t, 0, pending.Len())
}

func TestPendingActions_TakeIsOneShot(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	batchID := pending.Add([]string{"a1"})

	_, ok := pending.Take(batchID)
	require.True(t, ok)

	_, ok = pending.Take(batchID)
	assert.False(t, ok, "second take on the same token must report not found")
}

func TestPendingActions_TakeUnknownToken(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	_, ok := pending.Take("no-such-token")
	assert.False(t, ok)
}

func TestPendingActions_DiscardIsIdempotent(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	batchID := pending.Add([]string{"a1"})

	assert.True(t, pending.Discard(batchID))
	assert.False(t, pending.Discard(batchID), "second discard must be a no-op")
	assert.Equal(t, 0, pending.Len())
}

func TestPendingActions_DiscardThenTake(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	batchID := pending.Add([]string{"a1"})
	pending.Discard(batchID)

	_, ok := pending.Take(batchID)
	assert.False(t, ok, "consumed token must not be buildable")
}

func TestPendingActions_EntriesAreIsolated(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	first := pending.Add([]string{"a1"})
	second := pending.Add([]string{"b1", "b2"})
	require.NotEqual(t, first, second)

	fileIDs, ok := pending.Take(second)
	require.True(t, ok)
	assert.Equal(t, []string{"b1", "b2"}, fileIDs)

	fileIDs, ok = pending.Take(first)
	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, fileIDs)
}

func TestPendingActions_AddCopiesInput(t *testing.T) {
	pending := NewPendingActions(time.Hour)

	input := []string{"a1", "a2"}
	batchID := pending.Add(input)
	input[0] = "mutated"

	fileIDs, ok := pending.Take(batchID)
	require.True(t, ok)
	assert.Equal(t, []string{"a1", "a2"}, fileIDs)
}

func TestPendingActions_SweepExpired(t *testing.T) {
	pending := NewPendingActions(10 * time.Millisecond)

	expired := pending.Add([]string{"old"})
	time.Sleep(25 * time.Millisecond)
	fresh := pending.Add([]string{"new"})

	removed := pending.SweepExpired()
	assert.Equal(t, 1, removed)

	_, ok := pending.Take(expired)
	assert.False(t, ok)

	fileIDs, ok := pending.Take(fresh)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, fileIDs)
}

func TestPendingActions_SweepDisabledWithZeroTTL(t *testing.T) {
	pending := NewPendingActions(0)

	pending.Add([]string{"a1"})
	assert.Equal(t, 0, pending.SweepExpired())
	assert.Equal(t, 1, pending.Len())
}
