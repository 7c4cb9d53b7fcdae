package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecommendationCache is an optional Redis-backed result cache. Keys carry the
// full (user, strategy, config) triple; the TTL must stay below the enrichment
// sweep cadence so cached results never outlive a refresh cycle.
type RecommendationCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{Client: client, TTL: ttl}
}

func cacheKey(userID uint, typ RecommendationType, cfg RecommendationConfig) string {
	return fmt.Sprintf("rec:%d:%s:%d:%d:%d", userID, typ, cfg.Limit, cfg.Radius, cfg.SearchLimit)
}

func (c *RecommendationCache) Get(ctx context.Context, userID uint, typ RecommendationType, cfg RecommendationConfig) ([]Recommendation, bool) {
	raw, err := c.Client.Get(ctx, cacheKey(userID, typ, cfg)).Bytes()
	if err != nil {
		return nil, false
	}
	var recs []Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (c *RecommendationCache) Set(ctx context.Context, userID uint, typ RecommendationType, cfg RecommendationConfig, recs []Recommendation) {
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	// Cache misses and write errors are silent; the cache is purely a fast path.
	c.Client.Set(ctx, cacheKey(userID, typ, cfg), raw, c.TTL)
}

func (s *RecommendationService) cacheGet(ctx context.Context, userID uint, typ RecommendationType, cfg RecommendationConfig) ([]Recommendation, bool) {
	if s.Cache == nil {
		return nil, false
	}
	return s.Cache.Get(ctx, userID, typ, cfg)
}

func (s *RecommendationService) cacheSet(ctx context.Context, userID uint, typ RecommendationType, cfg RecommendationConfig, recs []Recommendation) {
	if s.Cache == nil {
		return
	}
	s.Cache.Set(ctx, userID, typ, cfg, recs)
}
