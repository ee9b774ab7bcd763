package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"googlemaps.github.io/maps"

	"freight/internal/domain"
)

func newTestService(t *testing.T, body string) *RouteService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") != "driving" {
			t.Errorf("mode = %q, want driving", r.URL.Query().Get("mode"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	svc, err := NewRouteService("AIza-test-key", maps.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewRouteService: %v", err)
	}
	return svc
}

var (
	tehran  = domain.GeoLocation{Latitude: 35.70, Longitude: 51.42}
	isfahan = domain.GeoLocation{Latitude: 32.65, Longitude: 51.67}
)

func TestEstimate(t *testing.T) {
	svc := newTestService(t, `{
		"status": "OK",
		"routes": [{
			"summary": "Route 7",
			"legs": [{
				"duration": {"value": 16200, "text": "4 hours 30 mins"},
				"distance": {"value": 440000, "text": "440 km"}
			}]
		}]
	}`)

	est, err := svc.Estimate(context.Background(), tehran, isfahan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Duration != 270*time.Minute {
		t.Errorf("duration = %v, want 4h30m", est.Duration)
	}
	if est.DistanceKm != 440 {
		t.Errorf("distance = %v km, want 440", est.DistanceKm)
	}
}

func TestEstimate_NoLegs(t *testing.T) {
	svc := newTestService(t, `{"status": "OK", "routes": []}`)

	_, err := svc.Estimate(context.Background(), tehran, isfahan)
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("error = %v, want ErrNoRoute", err)
	}
}

func TestEstimate_APIError(t *testing.T) {
	svc := newTestService(t, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`)

	if _, err := svc.Estimate(context.Background(), tehran, isfahan); err == nil {
		t.Error("expected an error for a denied request")
	}
}

func TestNewRouteService_RequiresKey(t *testing.T) {
	if _, err := NewRouteService(""); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestLatLng(t *testing.T) {
	if got := latLng(tehran); got != "35.700000,51.420000" {
		t.Errorf("latLng = %q", got)
	}
}
