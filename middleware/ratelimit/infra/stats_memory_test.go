package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-gateway/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsByRoute(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Method: "POST", Path: "/api/llm/gemini"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Method: "POST", Path: "/api/llm/gemini"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "b", Allowed: true, Method: "GET", Path: "/api/ping"}))

	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, s.Total())

	snap := s.Snapshot()
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, snap.ByRoute["POST /api/llm/gemini"])
	assert.Equal(t, Counters{Allowed: 1}, snap.ByRoute["GET /api/ping"])
	assert.Nil(t, snap.ByKey, "keys are not tracked by default")
}

func TestMemoryStatsStore_TrackKeys(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "client-1.2.3.4", Allowed: true})
	_ = s.Record(ctx, domain.StatsEvent{Key: "client-1.2.3.4", Allowed: false})

	snap := s.Snapshot()
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, snap.ByKey["client-1.2.3.4"])
}

func TestMemoryStatsStore_SnapshotIsCopy(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Allowed: true, Method: "GET", Path: "/api/x"})

	snap := s.Snapshot()
	snap.ByRoute["GET /api/x"] = Counters{Allowed: 100}

	assert.Equal(t, int64(1), s.Snapshot().ByRoute["GET /api/x"].Allowed)
}

func TestChanPool_LimitsSlots(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = p.Acquire(ctx)
	assert.False(t, ok, "second acquire must fail while the slot is held")

	release()
	release2, ok := p.Acquire(context.Background())
	require.True(t, ok)
	release2()
}

func TestChanPool_ZeroSizeNeverAcquires(t *testing.T) {
	p := NewChanPool(0)
	_, ok := p.Acquire(context.Background())
	assert.False(t, ok)
}
