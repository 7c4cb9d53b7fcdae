package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
)

// ErrUpstreamUnavailable means every anchor failed against the external gateway.
// Distinct from an empty result: the caller may retry.
var ErrUpstreamUnavailable = errors.New("places gateway unavailable for all anchors")

// ErrInvalidConfig rejects caller-supplied recommendation parameters before any
// work happens.
var ErrInvalidConfig = errors.New("invalid recommendation config")

type RecommendationType string

const (
	RecommendationGood         RecommendationType = "good"
	RecommendationCheap        RecommendationType = "cheap"
	RecommendationCuisineMatch RecommendationType = "cuisine-match"
)

const (
	DefaultLimit       = 20
	DefaultMergedLimit = 10
	DefaultRadius      = 2000
	DefaultSearchLimit = 20
)

// RecommendationConfig is the caller-tunable part of a recommendation request.
type RecommendationConfig struct {
	Limit       int `json:"limit"`
	Radius      int `json:"radius"`
	SearchLimit int `json:"search_limit"`
}

func (c RecommendationConfig) withDefaults() RecommendationConfig {
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.Radius == 0 {
		c.Radius = DefaultRadius
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	return c
}

func (c RecommendationConfig) validate() error {
	if c.Limit < 0 || c.Radius < 0 || c.SearchLimit < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// RecommendationPolicy holds the scoring thresholds, injected at construction so
// tests can vary them without process-wide state.
type RecommendationPolicy struct {
	GoodMinRating      float64
	CheapMaxPriceLevel int
	AnchorLimit        int
	TopCuisines        int
	AnchorTimeout      time.Duration
	MergedLimit        int
}

func DefaultRecommendationPolicy() RecommendationPolicy {
	return RecommendationPolicy{
		GoodMinRating:      4.0,
		CheapMaxPriceLevel: 2,
		AnchorLimit:        5,
		TopCuisines:        5,
		AnchorTimeout:      5 * time.Second,
		MergedLimit:        DefaultMergedLimit,
	}
}

type ReferenceLocation struct {
	RestaurantName string `json:"restaurantName"`
	VisitCount     int    `json:"visitCount"`
}

type Recommendation struct {
	PlaceID            string             `json:"placeId"`
	Name               string             `json:"name"`
	Address            string             `json:"address"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	Rating             *float64           `json:"rating,omitempty"`
	PriceLevel         *int               `json:"priceLevel,omitempty"`
	UserRatingsTotal   int                `json:"userRatingsTotal,omitempty"`
	Cuisines           []string           `json:"cuisines,omitempty"`
	RecommendationType RecommendationType `json:"recommendation_type"`
	MatchedCuisines    []string           `json:"matched_cuisines,omitempty"`
	ReferenceLocation  *ReferenceLocation `json:"reference_location,omitempty"`
}

type FrequentRestaurant struct {
	RestaurantID uint   `json:"restaurantId"`
	Name         string `json:"name"`
	VisitCount   int    `json:"visitCount"`
}

type PreferredCuisine struct {
	Name       string `json:"name"`
	VisitCount int    `json:"visitCount"`
}

// UserContext lets clients render where recommendations came from without extra
// calls.
type UserContext struct {
	FrequentRestaurants []FrequentRestaurant `json:"frequent_restaurants"`
	PreferredCuisines   []PreferredCuisine   `json:"preferred_cuisines"`
}

type AllRecommendations struct {
	Good         []Recommendation `json:"good"`
	Cheap        []Recommendation `json:"cheap"`
	CuisineMatch []Recommendation `json:"cuisine-match"`
	UserContext  UserContext      `json:"user_context"`
}

// RecommendationService scores external candidates against the user's aggregates.
// Read-only: safe to call concurrently and repeatedly.
type RecommendationService struct {
	Stats   *repository.StatsRepository
	Gateway PlacesGateway
	Policy  RecommendationPolicy
	Cache   *RecommendationCache // optional
	Log     *logger.Logger
}

func NewRecommendationService(stats *repository.StatsRepository, gateway PlacesGateway, policy RecommendationPolicy, cache *RecommendationCache, log *logger.Logger) *RecommendationService {
	return &RecommendationService{
		Stats:   stats,
		Gateway: gateway,
		Policy:  policy,
		Cache:   cache,
		Log:     log.With("service", "recommendations"),
	}
}

type anchor struct {
	name       string
	lat, lng   float64
	visitCount int
}

type candidate struct {
	PlaceDetails
	ref ReferenceLocation
}

// anchors returns the user's frequent restaurant locations, most visited first.
// Restaurants without coordinates (unenriched stubs) cannot anchor a search.
func (s *RecommendationService) anchors(userID uint) ([]anchor, error) {
	visits, err := s.Stats.TopVisits(userID, s.Policy.AnchorLimit)
	if err != nil {
		return nil, err
	}
	var anchors []anchor
	for _, v := range visits {
		if !v.Restaurant.HasLocation() {
			continue
		}
		anchors = append(anchors, anchor{
			name:       v.Restaurant.Name,
			lat:        *v.Restaurant.Latitude,
			lng:        *v.Restaurant.Longitude,
			visitCount: v.VisitCount,
		})
	}
	return anchors, nil
}

// collect fans out one nearby-search per anchor with individual timeouts. A
// failing anchor is skipped; only every anchor failing surfaces as
// ErrUpstreamUnavailable.
func (s *RecommendationService) collect(ctx context.Context, anchors []anchor, cfg RecommendationConfig) ([]candidate, error) {
	var (
		mu         sync.Mutex
		candidates []candidate
		failures   int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range anchors {
		a := a
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, s.Policy.AnchorTimeout)
			defer cancel()

			places, err := s.Gateway.NearbySearch(actx, a.lat, a.lng, cfg.Radius, cfg.SearchLimit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				s.Log.Warn("anchor search failed", "anchor", a.name, "error", err)
				return nil
			}
			for _, p := range places {
				candidates = append(candidates, candidate{
					PlaceDetails: p,
					ref:          ReferenceLocation{RestaurantName: a.name, VisitCount: a.visitCount},
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(anchors) > 0 && failures == len(anchors) {
		return nil, ErrUpstreamUnavailable
	}
	return candidates, nil
}

// Good recommends highly rated places near the user's frequent locations.
func (s *RecommendationService) Good(ctx context.Context, userID uint, cfg RecommendationConfig) ([]Recommendation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cached, ok := s.cacheGet(ctx, userID, RecommendationGood, cfg); ok {
		return cached, nil
	}

	anchors, err := s.anchors(userID)
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return []Recommendation{}, nil
	}

	candidates, err := s.collect(ctx, anchors, cfg)
	if err != nil {
		return nil, err
	}

	var kept []candidate
	for _, c := range candidates {
		if c.Rating != nil && *c.Rating >= s.Policy.GoodMinRating {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		ri, rj := ratingOf(kept[i]), ratingOf(kept[j])
		if ri != rj {
			return ri > rj
		}
		return kept[i].UserRatingsTotal > kept[j].UserRatingsTotal
	})

	out := finalize(kept, RecommendationGood, cfg.Limit, nil)
	s.cacheSet(ctx, userID, RecommendationGood, cfg, out)
	return out, nil
}

// Cheap recommends low price-level places near the user's frequent locations.
// Places without a known price level are excluded rather than assumed cheap.
func (s *RecommendationService) Cheap(ctx context.Context, userID uint, cfg RecommendationConfig) ([]Recommendation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cached, ok := s.cacheGet(ctx, userID, RecommendationCheap, cfg); ok {
		return cached, nil
	}

	anchors, err := s.anchors(userID)
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return []Recommendation{}, nil
	}

	candidates, err := s.collect(ctx, anchors, cfg)
	if err != nil {
		return nil, err
	}

	var kept []candidate
	for _, c := range candidates {
		if c.PriceLevel != nil && *c.PriceLevel <= s.Policy.CheapMaxPriceLevel {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		pi, pj := *kept[i].PriceLevel, *kept[j].PriceLevel
		if pi != pj {
			return pi < pj
		}
		return ratingOf(kept[i]) > ratingOf(kept[j])
	})

	out := finalize(kept, RecommendationCheap, cfg.Limit, nil)
	s.cacheSet(ctx, userID, RecommendationCheap, cfg, out)
	return out, nil
}

// CuisineMatch recommends places whose cuisines intersect the user's favorites.
// Matches against higher-ranked cuisines weigh more.
func (s *RecommendationService) CuisineMatch(ctx context.Context, userID uint, cfg RecommendationConfig) ([]Recommendation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cached, ok := s.cacheGet(ctx, userID, RecommendationCuisineMatch, cfg); ok {
		return cached, nil
	}

	anchors, err := s.anchors(userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats.TopCuisines(userID, s.Policy.TopCuisines)
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 || len(stats) == 0 {
		return []Recommendation{}, nil
	}

	topCuisines := make([]string, 0, len(stats))
	for _, st := range stats {
		topCuisines = append(topCuisines, st.Cuisine.Name)
	}

	candidates, err := s.collect(ctx, anchors, cfg)
	if err != nil {
		return nil, err
	}

	type scored struct {
		candidate
		score   int
		matched []string
	}
	var kept []scored
	for _, c := range candidates {
		score, matched := cuisineScore(c.Cuisines, topCuisines)
		if score == 0 {
			continue
		}
		kept = append(kept, scored{candidate: c, score: score, matched: matched})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return ratingOf(kept[i].candidate) > ratingOf(kept[j].candidate)
	})

	ordered := make([]candidate, len(kept))
	matchedByPlace := make(map[string][]string, len(kept))
	for i, k := range kept {
		ordered[i] = k.candidate
		if _, seen := matchedByPlace[k.PlaceID]; !seen {
			matchedByPlace[k.PlaceID] = k.matched
		}
	}

	out := finalize(ordered, RecommendationCuisineMatch, cfg.Limit, matchedByPlace)
	s.cacheSet(ctx, userID, RecommendationCuisineMatch, cfg, out)
	return out, nil
}

// All runs the three strategies with the merged-view limit and adds the user
// context block.
func (s *RecommendationService) All(ctx context.Context, userID uint, cfg RecommendationConfig) (*AllRecommendations, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Limit == 0 {
		cfg.Limit = s.Policy.MergedLimit
	}
	cfg = cfg.withDefaults()

	good, err := s.Good(ctx, userID, cfg)
	if err != nil && !errors.Is(err, ErrUpstreamUnavailable) {
		return nil, err
	}
	cheap, err2 := s.Cheap(ctx, userID, cfg)
	if err2 != nil && !errors.Is(err2, ErrUpstreamUnavailable) {
		return nil, err2
	}
	match, err3 := s.CuisineMatch(ctx, userID, cfg)
	if err3 != nil && !errors.Is(err3, ErrUpstreamUnavailable) {
		return nil, err3
	}
	// Each strategy degrades on its own. Only upstream failures survive to this
	// point; when one occurred and no strategy produced anything, the request is
	// an upstream failure, not an empty success.
	upstreamFailed := err != nil || err2 != nil || err3 != nil
	if upstreamFailed && len(good)+len(cheap)+len(match) == 0 {
		return nil, ErrUpstreamUnavailable
	}

	userCtx, err := s.userContext(userID)
	if err != nil {
		return nil, err
	}

	return &AllRecommendations{
		Good:         emptyIfNil(good),
		Cheap:        emptyIfNil(cheap),
		CuisineMatch: emptyIfNil(match),
		UserContext:  *userCtx,
	}, nil
}

func (s *RecommendationService) userContext(userID uint) (*UserContext, error) {
	visits, err := s.Stats.TopVisits(userID, s.Policy.AnchorLimit)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats.TopCuisines(userID, s.Policy.TopCuisines)
	if err != nil {
		return nil, err
	}

	out := UserContext{
		FrequentRestaurants: []FrequentRestaurant{},
		PreferredCuisines:   []PreferredCuisine{},
	}
	for _, v := range visits {
		out.FrequentRestaurants = append(out.FrequentRestaurants, FrequentRestaurant{
			RestaurantID: v.RestaurantID,
			Name:         v.Restaurant.Name,
			VisitCount:   v.VisitCount,
		})
	}
	for _, st := range stats {
		out.PreferredCuisines = append(out.PreferredCuisines, PreferredCuisine{
			Name:       st.Cuisine.Name,
			VisitCount: st.VisitCount,
		})
	}
	return &out, nil
}

// cuisineScore weighs matches by the user's preference rank: the top cuisine
// contributes len(top), the last contributes 1.
func cuisineScore(placeCuisines, topCuisines []string) (int, []string) {
	score := 0
	var matched []string
	for _, pc := range placeCuisines {
		for rank, uc := range topCuisines {
			if strings.Contains(strings.ToLower(pc), strings.ToLower(uc)) ||
				strings.Contains(strings.ToLower(uc), strings.ToLower(pc)) {
				score += len(topCuisines) - rank
				matched = append(matched, pc)
				break
			}
		}
	}
	return score, matched
}

// finalize deduplicates by external identity (first occurrence wins, the slice is
// already sorted best-first), tags the type and truncates.
func finalize(ordered []candidate, typ RecommendationType, limit int, matchedByPlace map[string][]string) []Recommendation {
	seen := make(map[string]struct{}, len(ordered))
	out := []Recommendation{}
	for _, c := range ordered {
		if c.PlaceID == "" {
			continue
		}
		if _, dup := seen[c.PlaceID]; dup {
			continue
		}
		seen[c.PlaceID] = struct{}{}

		ref := c.ref
		rec := Recommendation{
			PlaceID:            c.PlaceID,
			Name:               c.Name,
			Address:            c.Address,
			Latitude:           c.Latitude,
			Longitude:          c.Longitude,
			Rating:             c.Rating,
			PriceLevel:         c.PriceLevel,
			UserRatingsTotal:   c.UserRatingsTotal,
			Cuisines:           c.Cuisines,
			RecommendationType: typ,
			ReferenceLocation:  &ref,
		}
		if matchedByPlace != nil {
			rec.MatchedCuisines = matchedByPlace[c.PlaceID]
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

func ratingOf(c candidate) float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

func emptyIfNil(recs []Recommendation) []Recommendation {
	if recs == nil {
		return []Recommendation{}
	}
	return recs
}
