package app

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestCollectionOf(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  redis.Cmder
		want string
	}{
		{"hash read", redis.NewMapStringStringCmd(ctx, "hgetall", "driver:loc:d-1"), "driver:loc"},
		{"rate cache", redis.NewStringCmd(ctx, "get", "cache:rate:commission.default_rate_pct"), "cache:rate"},
		{"script", redis.NewCmd(ctx, "evalsha", "abc123", 1, "driver:loc:d-1", "35.7", "51.4"), "driver:loc"},
		{"invalidate", redis.NewIntCmd(ctx, "del", "cache:rate:commission.default_rate_pct"), "cache:rate"},
		{"no key", redis.NewStatusCmd(ctx, "ping"), "redis"},
		{"no prefix", redis.NewStringCmd(ctx, "get", "plain"), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collectionOf(tt.cmd); got != tt.want {
				t.Errorf("collectionOf = %q, want %q", got, tt.want)
			}
		})
	}
}
