package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer hands out monotonically increasing per-day sequence numbers
// used to build invoice numbers.
type Sequencer interface {
	Next(ctx context.Context, date time.Time) (int64, error)
}

// RedisSequencer backs the sequence with an atomic INCR per day key, so
// concurrent invoice creation across instances never reuses a number.
type RedisSequencer struct {
	rdb *redis.Client
}

func NewRedisSequencer(rdb *redis.Client) *RedisSequencer {
	return &RedisSequencer{rdb: rdb}
}

func (s *RedisSequencer) Next(ctx context.Context, date time.Time) (int64, error) {
	key := fmt.Sprintf("invoice_seq:%s", date.Format("20060102"))
	seq, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	if seq == 1 {
		// Day keys are only read on their own day, keep them from piling up.
		s.rdb.Expire(ctx, key, 48*time.Hour)
	}
	return seq, nil
}

// FormatNumber renders the human-facing invoice number, e.g. INV-20260831-0001.
func FormatNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%04d", date.Format("20060102"), seq)
}
