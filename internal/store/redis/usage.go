package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// IncrementUsage records one run of a command
func (s *Store) IncrementUsage(ctx context.Context, commandID string) error {
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, UsageKey(), commandID, 1)
	pipe.Set(ctx, LastRunKey(commandID), time.Now().Unix(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// GetUsageStats returns the run count of every command that ran at least once
func (s *Store) GetUsageStats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, UsageKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}

	stats := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		stats[id] = n
	}
	return stats, nil
}

// LastRun returns when a command last ran; the zero time if never
func (s *Store) LastRun(ctx context.Context, commandID string) (time.Time, error) {
	sec, err := s.client.Get(ctx, LastRunKey(commandID)).Int64()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last run: %w", err)
	}
	return time.Unix(sec, 0), nil
}
