// Package googleplaces implements the PlacesGateway against the Google Places
// API via the official Go client.
package googleplaces

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/bit2424/LunchLog/services"
)

type Client struct {
	maps *maps.Client
}

func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google places api key is not configured")
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("init places client: %w", err)
	}
	return &Client{maps: c}, nil
}

func (c *Client) FindByText(ctx context.Context, name, address string) ([]services.PlaceCandidate, error) {
	resp, err := c.maps.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     name + ", " + address,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields: []maps.PlaceSearchFieldMask{
			maps.PlaceSearchFieldMaskPlaceID,
			maps.PlaceSearchFieldMaskName,
			maps.PlaceSearchFieldMaskFormattedAddress,
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	candidates := make([]services.PlaceCandidate, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		candidates = append(candidates, services.PlaceCandidate{
			PlaceID: cand.PlaceID,
			Name:    cand.Name,
			Address: cand.FormattedAddress,
		})
	}
	return candidates, nil
}

func (c *Client) FetchDetails(ctx context.Context, placeID string) (*services.PlaceDetails, error) {
	resp, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskPlaceID,
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskRatings,
			maps.PlaceDetailsFieldMaskUserRatingsTotal,
			maps.PlaceDetailsFieldMaskPriceLevel,
			maps.PlaceDetailsFieldMaskBusinessStatus,
			maps.PlaceDetailsFieldMaskTypes,
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	details := fromDetails(resp)
	return &details, nil
}

func (c *Client) NearbySearch(ctx context.Context, lat, lng float64, radius, limit int) ([]services.PlaceDetails, error) {
	resp, err := c.maps.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Radius:   uint(radius),
		Type:     maps.PlaceTypeRestaurant,
	})
	if err != nil {
		return nil, classify(err)
	}

	out := make([]services.PlaceDetails, 0, limit)
	for _, result := range resp.Results {
		out = append(out, fromSearchResult(result))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func fromDetails(r maps.PlaceDetailsResult) services.PlaceDetails {
	d := services.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Address:          r.FormattedAddress,
		UserRatingsTotal: r.UserRatingsTotal,
		BusinessStatus:   r.BusinessStatus,
		Cuisines:         CuisinesFromTypes(r.Types),
	}
	lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
	if lat != 0 || lng != 0 {
		d.Latitude = &lat
		d.Longitude = &lng
	}
	if r.Rating > 0 {
		rating := float64(r.Rating)
		d.Rating = &rating
	}
	// The wire format cannot distinguish "free" from "absent" for price level;
	// zero is treated as absent.
	if r.PriceLevel > 0 {
		price := r.PriceLevel
		d.PriceLevel = &price
	}
	return d
}

func fromSearchResult(r maps.PlacesSearchResult) services.PlaceDetails {
	address := r.FormattedAddress
	if address == "" {
		address = r.Vicinity
	}
	d := services.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Address:          address,
		UserRatingsTotal: r.UserRatingsTotal,
		BusinessStatus:   r.BusinessStatus,
		Cuisines:         CuisinesFromTypes(r.Types),
	}
	lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
	if lat != 0 || lng != 0 {
		d.Latitude = &lat
		d.Longitude = &lng
	}
	if r.Rating > 0 {
		rating := float64(r.Rating)
		d.Rating = &rating
	}
	if r.PriceLevel > 0 {
		price := r.PriceLevel
		d.PriceLevel = &price
	}
	return d
}

// classify maps client errors onto the gateway's taxonomy: quota and upstream
// hiccups retry, missing places do not.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &services.TransientError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &services.TransientError{Err: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return services.ErrPlaceNotFound
	case strings.Contains(msg, "OVER_QUERY_LIMIT"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "UNKNOWN_ERROR"):
		return &services.TransientError{Err: err}
	}
	return err
}
