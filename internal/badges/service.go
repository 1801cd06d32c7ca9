// Package badges serves the pending-count numbers shown in each role's
// navigation. Counts come from the backend and are cached in redis with a
// short TTL; a worker cron keeps the cache warm so page loads do not fan
// out into backend polls.
package badges

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/shared"
)

// BackendPort is the slice of the backend client the badge service needs.
type BackendPort interface {
	FetchPendingCounts(ctx context.Context, token string, role shared.Role) (backend.PendingCounts, error)
}

// Service caches per-role pending counts.
type Service struct {
	backend BackendPort
	redis   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// NewService constructs the badge service.
func NewService(backendPort BackendPort, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &Service{backend: backendPort, redis: client, ttl: ttl, logger: logger}
}

func cacheKey(role shared.Role) string {
	return "procureflow:badges:" + string(role)
}

// Counts returns the role's pending counts, from cache when fresh.
// Concurrent misses for the same role collapse into one backend call.
func (s *Service) Counts(ctx context.Context, token string, role shared.Role) (backend.PendingCounts, error) {
	key := cacheKey(role)
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var counts backend.PendingCounts
			if err := json.Unmarshal(raw, &counts); err == nil {
				return counts, nil
			}
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.refresh(ctx, token, role)
	})
	if err != nil {
		return backend.PendingCounts{}, err
	}
	return result.(backend.PendingCounts), nil
}

// Refresh fetches the role's counts and rewrites the cache entry. The
// worker cron calls this with a service token for every role.
func (s *Service) Refresh(ctx context.Context, token string, role shared.Role) error {
	_, err := s.refresh(ctx, token, role)
	return err
}

func (s *Service) refresh(ctx context.Context, token string, role shared.Role) (backend.PendingCounts, error) {
	counts, err := s.backend.FetchPendingCounts(ctx, token, role)
	if err != nil {
		return backend.PendingCounts{}, err
	}
	if s.redis != nil {
		raw, err := json.Marshal(counts)
		if err == nil {
			if err := s.redis.Set(ctx, cacheKey(role), raw, s.ttl).Err(); err != nil && s.logger != nil {
				s.logger.Warn("cache badge counts", slog.String("role", string(role)), slog.Any("error", err))
			}
		}
	}
	return counts, nil
}
