package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"

	"freight/internal/domain"
	"freight/internal/geo"
)

// ErrNoRoute is returned when the directions API finds no drivable route.
var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key. Extra
// client options are applied after the key.
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate returns the driving duration and distance of the first route
// between two points.
func (s *RouteService) Estimate(ctx context.Context, from, to domain.GeoLocation) (*geo.RouteEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return &geo.RouteEstimate{
		Duration:   leg.Duration,
		DistanceKm: float64(leg.Distance.Meters) / 1000,
	}, nil
}

func latLng(g domain.GeoLocation) string {
	return strconv.FormatFloat(g.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(g.Longitude, 'f', 6, 64)
}
