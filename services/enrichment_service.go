package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/entity"
	"github.com/bit2424/LunchLog/pkg/logger"
	"github.com/bit2424/LunchLog/repository"
)

type OutcomeStatus string

const (
	OutcomeSuccess        OutcomeStatus = "success"
	OutcomeNotFound       OutcomeStatus = "not_found"
	OutcomeTransientError OutcomeStatus = "transient_error"
	OutcomePermanentError OutcomeStatus = "permanent_error"
)

// Outcome is the structured result of one enrichment attempt. Only
// transient_error outcomes are worth retrying.
type Outcome struct {
	Status        OutcomeStatus `json:"status"`
	RestaurantID  uint          `json:"restaurantId"`
	ChangedFields []string      `json:"changedFields"`
	Err           error         `json:"-"`
}

// EnrichmentService resolves a restaurant's external identity and merges the
// third-party details into the record. Every write is an upsert, so re-running
// the whole operation after a failure cannot duplicate anything.
type EnrichmentService struct {
	DB          *gorm.DB
	Restaurants *repository.RestaurantRepository
	Cuisines    *repository.CuisineRepository
	Gateway     PlacesGateway
	Log         *logger.Logger
}

func NewEnrichmentService(db *gorm.DB, restaurants *repository.RestaurantRepository, cuisines *repository.CuisineRepository, gateway PlacesGateway, log *logger.Logger) *EnrichmentService {
	return &EnrichmentService{
		DB:          db,
		Restaurants: restaurants,
		Cuisines:    cuisines,
		Gateway:     gateway,
		Log:         log.With("service", "enrichment"),
	}
}

// Enrich runs one enrichment attempt for the restaurant: resolve the external
// identity if it is still a stub, fetch details, and merge them in a single
// transaction. A restaurant that already carries a confirmed identity goes
// straight to the refresh path.
func (s *EnrichmentService) Enrich(ctx context.Context, restaurantID uint) Outcome {
	rest, err := s.Restaurants.FindByID(restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Outcome{Status: OutcomePermanentError, RestaurantID: restaurantID,
				Err: fmt.Errorf("restaurant %d not found", restaurantID)}
		}
		return Outcome{Status: OutcomeTransientError, RestaurantID: restaurantID, Err: err}
	}

	placeID := rest.PlaceID
	resolving := rest.IsStub()
	if resolving {
		candidates, err := s.Gateway.FindByText(ctx, rest.Name, rest.Address)
		if err != nil {
			return s.classify(restaurantID, fmt.Errorf("find place: %w", err))
		}
		if len(candidates) == 0 {
			s.Log.Info("no candidates for stub", "restaurant_id", restaurantID, "name", rest.Name)
			return Outcome{Status: OutcomeNotFound, RestaurantID: restaurantID}
		}
		placeID = candidates[0].PlaceID

		// Another restaurant already owning this identity is unresolvable data,
		// not a retryable condition.
		if other, err := s.Restaurants.FindByPlaceID(placeID); err == nil && other.ID != rest.ID {
			return Outcome{Status: OutcomePermanentError, RestaurantID: restaurantID,
				Err: fmt.Errorf("place %s already belongs to restaurant %d", placeID, other.ID)}
		}
	}

	details, err := s.Gateway.FetchDetails(ctx, placeID)
	if err != nil {
		if errors.Is(err, ErrPlaceNotFound) && !resolving {
			// A previously confirmed identity no longer resolving is a refresh
			// failure: keep last-known-good data.
			return Outcome{Status: OutcomeNotFound, RestaurantID: restaurantID}
		}
		return s.classify(restaurantID, fmt.Errorf("fetch details: %w", err))
	}

	changed, err := s.merge(rest, placeID, details)
	if err != nil {
		return Outcome{Status: OutcomeTransientError, RestaurantID: restaurantID, Err: err}
	}

	s.Log.Info("restaurant enriched",
		"restaurant_id", restaurantID, "place_id", placeID, "changed", changed)
	return Outcome{Status: OutcomeSuccess, RestaurantID: restaurantID, ChangedFields: changed}
}

// merge writes the fetched fields and cuisine associations in one transaction.
// Fields present in the response overwrite; absent fields leave stored values
// untouched; user-assigned cuisines are preserved.
func (s *EnrichmentService) merge(rest *entity.Restaurant, placeID string, details *PlaceDetails) ([]string, error) {
	updates := map[string]interface{}{}
	var changed []string

	if placeID != rest.PlaceID {
		updates["place_id"] = placeID
		changed = append(changed, "place_id")
	}
	if details.Name != "" && details.Name != rest.Name {
		updates["name"] = details.Name
		changed = append(changed, "name")
	}
	if details.Address != "" && details.Address != rest.Address {
		updates["address"] = details.Address
		changed = append(changed, "address")
	}
	if details.Latitude != nil && (rest.Latitude == nil || *details.Latitude != *rest.Latitude) {
		updates["latitude"] = *details.Latitude
		changed = append(changed, "latitude")
	}
	if details.Longitude != nil && (rest.Longitude == nil || *details.Longitude != *rest.Longitude) {
		updates["longitude"] = *details.Longitude
		changed = append(changed, "longitude")
	}
	if details.Rating != nil && (rest.Rating == nil || *details.Rating != *rest.Rating) {
		updates["rating"] = *details.Rating
		changed = append(changed, "rating")
	}
	if details.PriceLevel != nil && (rest.PriceLevel == nil || *details.PriceLevel != *rest.PriceLevel) {
		updates["price_level"] = *details.PriceLevel
		changed = append(changed, "price_level")
	}
	if details.UserRatingsTotal != 0 && details.UserRatingsTotal != rest.UserRatingsTotal {
		updates["user_ratings_total"] = details.UserRatingsTotal
		changed = append(changed, "user_ratings_total")
	}
	if details.BusinessStatus != "" && details.BusinessStatus != rest.BusinessStatus {
		updates["business_status"] = details.BusinessStatus
		changed = append(changed, "business_status")
	}

	newCuisines := missingCuisines(rest, details.Cuisines)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := s.Restaurants.UpdateFields(tx, rest.ID, updates); err != nil {
				return err
			}
		}
		if len(newCuisines) > 0 {
			resolved := make([]entity.Cuisine, 0, len(newCuisines))
			for _, name := range newCuisines {
				cuisine, err := s.Cuisines.FindOrCreate(tx, name)
				if err != nil {
					return err
				}
				resolved = append(resolved, *cuisine)
			}
			if err := s.Cuisines.Associate(tx, rest, resolved); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(newCuisines) > 0 {
		changed = append(changed, "cuisines")
	}
	return changed, nil
}

// missingCuisines canonicalizes the response labels and drops ones the
// restaurant already carries.
func missingCuisines(rest *entity.Restaurant, raw []string) []string {
	existing := make(map[string]struct{}, len(rest.Cuisines))
	for _, c := range rest.Cuisines {
		existing[c.Name] = struct{}{}
	}
	var out []string
	seen := map[string]struct{}{}
	for _, name := range raw {
		canonical := entity.CanonicalCuisineName(name)
		if canonical == "" {
			continue
		}
		if _, ok := existing[canonical]; ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

func (s *EnrichmentService) classify(restaurantID uint, err error) Outcome {
	if errors.Is(err, ErrPlaceNotFound) {
		return Outcome{Status: OutcomeNotFound, RestaurantID: restaurantID}
	}
	if IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Status: OutcomeTransientError, RestaurantID: restaurantID, Err: err}
	}
	return Outcome{Status: OutcomePermanentError, RestaurantID: restaurantID, Err: err}
}
