package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextUpdateTopic(t *testing.T) {
	c := &Context{}

	c.UpdateTopic("dining", "josun_palace")
	assert.Equal(t, "dining", c.CurrentTopic)
	assert.Equal(t, "josun_palace", c.CurrentHotel)
	assert.Equal(t, 1, c.TopicTurnCount)

	c.UpdateTopic("dining", "")
	assert.Equal(t, 2, c.TopicTurnCount)
	assert.Equal(t, "josun_palace", c.CurrentHotel, "empty hotel key must not clear an already-known hotel")

	c.UpdateTopic("pool", "")
	assert.Equal(t, "pool", c.CurrentTopic)
	assert.Equal(t, 1, c.TopicTurnCount, "switching topic resets the turn counter")

	c.UpdateTopic("", "")
	assert.Equal(t, "pool", c.CurrentTopic, "empty topic leaves the current topic untouched")
}

func TestContextResetClearsState(t *testing.T) {
	c := &Context{
		CurrentTopic:   "dining",
		CurrentHotel:   "lescape",
		LastChunks:     []Chunk{{Text: "x"}},
		LastQuery:      "q",
		TopicTurnCount: 3,
	}
	c.Reset()
	assert.Empty(t, c.CurrentTopic)
	assert.Empty(t, c.CurrentHotel)
	assert.Nil(t, c.LastChunks)
	assert.Empty(t, c.LastQuery)
	assert.Zero(t, c.TopicTurnCount)
}

func TestStoreGetOrCreateCreatesOnce(t *testing.T) {
	s := NewStore(time.Minute, 10)

	first := s.GetOrCreate("sess-1")
	first.CurrentTopic = "dining"

	second := s.GetOrCreate("sess-1")
	assert.Same(t, first, second)
	assert.Equal(t, "dining", second.CurrentTopic)
	assert.Equal(t, 1, s.Len())
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore(time.Minute, 10)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(time.Minute, 10)
	s.GetOrCreate("sess-1")
	s.Delete("sess-1")
	_, ok := s.Get("sess-1")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestStoreEvictsOldestPastMaxSessions(t *testing.T) {
	s := NewStore(time.Minute, 2)

	a := s.GetOrCreate("a")
	a.LastActive = time.Now().Add(-time.Hour)
	b := s.GetOrCreate("b")
	b.LastActive = time.Now().Add(-time.Minute)

	s.GetOrCreate("c")

	require.Equal(t, 2, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok, "the least-recently-active session is evicted to make room")
	_, ok = s.Get("b")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStoreCleanupEvictsStaleSessions(t *testing.T) {
	s := NewStore(10*time.Millisecond, 10)
	s.GetOrCreate("stale")

	time.Sleep(20 * time.Millisecond)
	s.GetOrCreate("fresh")

	removed := s.Cleanup()
	assert.Equal(t, 1, removed)

	_, ok := s.Get("stale")
	assert.False(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
}

func TestNewStoreAppliesDefaults(t *testing.T) {
	s := NewStore(0, 0)
	assert.Equal(t, DefaultTTL, s.ttl)
	assert.Equal(t, DefaultMaxSessions, s.maxSessions)
}
