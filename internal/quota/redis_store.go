package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/alexmentor/mentor-gateway/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Sorted-set ledger store: one set per client, member and score are the
// record's nanosecond timestamp. Entries older than the window are
// trimmed on read and the whole key expires once a client goes quiet.
type RedisStore struct {
	redis  *storage.RedisClient
	window time.Duration
}

func NewRedisStore(redisClient *storage.RedisClient, window time.Duration) *RedisStore {
	return &RedisStore{
		redis:  redisClient,
		window: window,
	}
}

func (s *RedisStore) CountSince(ctx context.Context, identity string, since time.Time) (int64, error) {
	redisKey := s.key(identity)

	pipe := s.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", since.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return countCmd.Val(), nil
}

func (s *RedisStore) Append(ctx context.Context, record Record) error {
	redisKey := s.key(record.Identity)
	score := record.At.UnixNano()

	err := s.redis.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(score),
		Member: fmt.Sprintf("%d", score),
	})
	if err != nil {
		return err
	}

	return s.redis.Expire(ctx, redisKey, s.window)
}

func (s *RedisStore) key(identity string) string {
	return fmt.Sprintf("quota:ledger:%s", identity)
}
