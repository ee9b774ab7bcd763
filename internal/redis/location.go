package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"freight/internal/domain"
)

const driverLocationPrefix = "driver:loc:"

// updateLocationScript stores a fix only if it is newer than the stored one.
// KEYS[1] = per-driver hash.
// ARGV: lat, lng, ts (unix nanos), accuracy, speed, heading.
var updateLocationScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'ts')
if current and tonumber(current) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('HSET', KEYS[1], 'lat', ARGV[1], 'lng', ARGV[2], 'ts', ARGV[3],
	'accuracy', ARGV[4], 'speed', ARGV[5], 'heading', ARGV[6])
return 1
`)

// LocationStore handles driver live locations in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's location, keeping whichever fix carries the
// later client timestamp. Returns false when the write was stale and ignored.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.GeoLocation) (bool, error) {
	keys := []string{driverLocationPrefix + driverID}
	applied, err := updateLocationScript.Run(ctx, s.client, keys,
		formatFloat(loc.Latitude),
		formatFloat(loc.Longitude),
		loc.Timestamp.UnixNano(),
		formatOptional(loc.Accuracy),
		formatOptional(loc.Speed),
		formatOptional(loc.Heading),
	).Int()
	if err != nil {
		return false, err
	}
	return applied == 1, nil
}

// GetLocation returns the latest stored fix, or nil if none is known.
func (s *LocationStore) GetLocation(ctx context.Context, driverID string) (*domain.GeoLocation, error) {
	fields, err := s.client.HGetAll(ctx, driverLocationPrefix+driverID).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(fields["lng"], 64)
	if err != nil {
		return nil, err
	}
	ts, err := strconv.ParseInt(fields["ts"], 10, 64)
	if err != nil {
		return nil, err
	}

	return &domain.GeoLocation{
		Latitude:  lat,
		Longitude: lng,
		Timestamp: time.Unix(0, ts).UTC(),
		Accuracy:  parseOptional(fields["accuracy"]),
		Speed:     parseOptional(fields["speed"]),
		Heading:   parseOptional(fields["heading"]),
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
