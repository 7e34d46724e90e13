package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGeoWithinSortsByDistance(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGeo()

	require.NoError(t, g.Add(ctx, 1, 30.0869, 78.2676)) // Rishikesh
	require.NoError(t, g.Add(ctx, 2, 30.3200, 78.0300)) // Dehradun
	require.NoError(t, g.Add(ctx, 3, 28.6139, 77.2090)) // Delhi

	hits, err := g.Within(ctx, 30.3165, 78.0322, 50)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(2), hits[0].ID)
	assert.Equal(t, int64(1), hits[1].ID)
	assert.Less(t, hits[0].DistanceKM, 1.0)
}

func TestMemoryGeoRemove(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGeo()
	require.NoError(t, g.Add(ctx, 7, 30.3165, 78.0322))
	require.NoError(t, g.Remove(ctx, 7))

	hits, err := g.Within(ctx, 30.3165, 78.0322, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "window resets")
}
