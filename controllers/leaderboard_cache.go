package controllers

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

const (
	leaderboardCachePrefix = "cache:leaderboard:"
	leaderboardCacheKey    = leaderboardCachePrefix + "all"
	leaderboardLoadTimeout = 5 * time.Second
)

// LeaderboardCache serves the ranked leaderboard from Redis when available
// and collapses concurrent misses into one database read.
//
// gen is bumped on every invalidation; a load that started under an older
// generation never leaves its rows in the cache.
type LeaderboardCache struct {
	store *store.Store
	ttl   time.Duration
	group singleflight.Group
	gen   atomic.Uint64
}

// NewLeaderboardCache creates a cache with the given TTL.
func NewLeaderboardCache(s *store.Store, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{store: s, ttl: ttl}
}

// Get returns the ranked leaderboard.
func (c *LeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var cached []models.LeaderboardEntry
	if utils.CacheGetJSON(ctx, leaderboardCacheKey, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(leaderboardCacheKey, func() (interface{}, error) {
		// followers share this load, so one caller going away must not fail the rest
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaderboardLoadTimeout)
		defer cancel()

		gen := c.gen.Load()
		entries, err := c.store.Leaderboard(loadCtx)
		if err != nil {
			return nil, err
		}
		c.fill(loadCtx, gen, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.LeaderboardEntry), nil
}

// fill caches entries read under generation gen unless an invalidation has
// happened since.
func (c *LeaderboardCache) fill(ctx context.Context, gen uint64, entries []models.LeaderboardEntry) {
	if c.gen.Load() != gen {
		return
	}
	utils.CacheSetJSON(ctx, leaderboardCacheKey, entries, c.ttl)
	if c.gen.Load() != gen {
		// lost the race with Invalidate after the check above
		utils.InvalidateByPrefix(ctx, leaderboardCachePrefix)
	}
}

// Invalidate drops every cached leaderboard payload.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	c.gen.Add(1)
	c.group.Forget(leaderboardCacheKey)
	utils.InvalidateByPrefix(context.WithoutCancel(ctx), leaderboardCachePrefix)
}

// Recompute rebuilds one user's aggregate and invalidates the cache.
func (c *LeaderboardCache) Recompute(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	entry, err := c.store.RecomputeUser(ctx, userID)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	c.Invalidate(ctx)
	return entry, nil
}
