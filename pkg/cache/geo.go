package cache

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"roadside-rescue/internal/utils"
)

// GeoHit is one indexed point returned by a radius search.
type GeoHit struct {
	ID         int64
	DistanceKM float64
}

// GeoIndex tracks the positions of pending help requests.
type GeoIndex interface {
	Add(ctx context.Context, id int64, lat, lng float64) error
	Remove(ctx context.Context, id int64) error
	Within(ctx context.Context, lat, lng, radiusKM float64) ([]GeoHit, error)
}

// RedisGeo implements GeoIndex using Redis GEO commands.
type RedisGeo struct {
	cache *RedisCache
	key   string
}

func NewRedisGeo(cache *RedisCache, key string) *RedisGeo {
	return &RedisGeo{cache: cache, key: key}
}

func (g *RedisGeo) Add(ctx context.Context, id int64, lat, lng float64) error {
	return g.cache.GeoAdd(ctx, g.key, &redis.GeoLocation{
		Name:      strconv.FormatInt(id, 10),
		Latitude:  lat,
		Longitude: lng,
	})
}

func (g *RedisGeo) Remove(ctx context.Context, id int64) error {
	return g.cache.GeoRemove(ctx, g.key, strconv.FormatInt(id, 10))
}

func (g *RedisGeo) Within(ctx context.Context, lat, lng, radiusKM float64) ([]GeoHit, error) {
	res, err := g.cache.GeoSearch(ctx, g.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   lat,
			Longitude:  lng,
			Radius:     radiusKM,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]GeoHit, 0, len(res))
	for _, loc := range res {
		id, err := strconv.ParseInt(loc.Name, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, GeoHit{ID: id, DistanceKM: loc.Dist})
	}
	return hits, nil
}

// MemoryGeo is a linear-scan GeoIndex for single-process deployments and tests.
type MemoryGeo struct {
	mu     sync.RWMutex
	points map[int64][2]float64
}

func NewMemoryGeo() *MemoryGeo {
	return &MemoryGeo{points: make(map[int64][2]float64)}
}

func (g *MemoryGeo) Add(_ context.Context, id int64, lat, lng float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.points[id] = [2]float64{lat, lng}
	return nil
}

func (g *MemoryGeo) Remove(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.points, id)
	return nil
}

func (g *MemoryGeo) Within(_ context.Context, lat, lng, radiusKM float64) ([]GeoHit, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	hits := make([]GeoHit, 0, len(g.points))
	for id, p := range g.points {
		d := utils.CalculateDistance(lat, lng, p[0], p[1])
		if d <= radiusKM {
			hits = append(hits, GeoHit{ID: id, DistanceKM: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKM == hits[j].DistanceKM {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].DistanceKM < hits[j].DistanceKM
	})
	return hits, nil
}
