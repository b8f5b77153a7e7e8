package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rouse/internal/domain"
)

const (
	// DefaultWakeTTL is the default TTL for wake event entries (30 days)
	DefaultWakeTTL = 30 * 24 * time.Hour
	// RecentWakesMax caps the recent-events list
	RecentWakesMax = 100
)

// Store mirrors wake events into Redis for inspection across restarts.
// The gateway works fine without it; everything here is best effort.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveWakeEvent stores one wake event and pushes it onto the
// recent-events list, trimming the list to RecentWakesMax.
func (s *Store) SaveWakeEvent(ctx context.Context, event *domain.WakeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal wake event: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, WakeKey(event.ID), data, DefaultWakeTTL)
	pipe.LPush(ctx, KeyRecentWakes, event.ID)
	pipe.LTrim(ctx, KeyRecentWakes, 0, RecentWakesMax-1)
	pipe.HIncrBy(ctx, KeyWakeCounts, event.Service, 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save wake event: %w", err)
	}
	return nil
}

// WakeCounts returns total wakes per service since the mirror was first
// populated. Unlike the in-process counters these survive restarts.
func (s *Store) WakeCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyWakeCounts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read wake counts: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for service, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad wake count for %s: %w", service, err)
		}
		counts[service] = n
	}
	return counts, nil
}

// RecentWakeEvents returns up to limit wake events, newest first.
// IDs whose entry already expired are skipped.
func (s *Store) RecentWakeEvents(ctx context.Context, limit int) ([]*domain.WakeEvent, error) {
	if limit <= 0 || limit > RecentWakesMax {
		limit = RecentWakesMax
	}

	ids, err := s.client.LRange(ctx, KeyRecentWakes, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent wakes: %w", err)
	}

	events := make([]*domain.WakeEvent, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, WakeKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get wake event %s: %w", id, err)
		}

		var event domain.WakeEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wake event %s: %w", id, err)
		}
		events = append(events, &event)
	}
	return events, nil
}
