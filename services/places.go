package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrPlaceNotFound means the external source has no candidate for the query.
// It is terminal for the attempt: no retry will change the answer.
var ErrPlaceNotFound = errors.New("place not found")

// TransientError wraps gateway failures worth retrying: timeouts, rate limits,
// upstream 5xx.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient places error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// PlaceCandidate is one match from a free-text lookup, best match first.
type PlaceCandidate struct {
	PlaceID string
	Name    string
	Address string
}

// PlaceDetails carries everything the external source knows about a place.
// Pointer fields distinguish "absent in the response" from a zero value, so a
// sparse response never nulls out stored data.
type PlaceDetails struct {
	PlaceID          string
	Name             string
	Address          string
	Latitude         *float64
	Longitude        *float64
	Rating           *float64
	PriceLevel       *int
	UserRatingsTotal int
	BusinessStatus   string
	Cuisines         []string
}

// PlacesGateway abstracts the third-party places API. All three calls may fail
// with ErrPlaceNotFound or a *TransientError.
type PlacesGateway interface {
	FindByText(ctx context.Context, name, address string) ([]PlaceCandidate, error)
	FetchDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
	NearbySearch(ctx context.Context, lat, lng float64, radius, limit int) ([]PlaceDetails, error)
}
