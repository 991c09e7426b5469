package tierlist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pndinxx/courserank/config"
)

// RedisStore keeps canvases and counters in Redis, for deployments where
// several replicas share one tier list.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the configured Redis instance.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func canvasKey(list string) string { return "tierlist:" + list + ":canvas" }
func countsKey(list string) string { return "tierlist:" + list + ":counts" }

func (s *RedisStore) LoadCanvas(ctx context.Context, list string) ([]byte, error) {
	data, err := s.client.Get(ctx, canvasKey(list)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) LoadCounts(ctx context.Context, list string) (Counts, error) {
	raw, err := s.client.HGetAll(ctx, countsKey(list)).Result()
	if err != nil {
		return nil, err
	}
	counts := ZeroCounts()
	for k, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		counts[Normalize(k)] = n
	}
	return counts, nil
}

func (s *RedisStore) Save(ctx context.Context, list string, canvas []byte, counts Counts) error {
	// canvas first, counters second; one pipeline keeps the window between
	// the two writes as small as the backend allows
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, canvasKey(list), canvas, 0)
	fields := make(map[string]interface{}, len(counts))
	for t, n := range counts {
		fields[string(t)] = n
	}
	pipe.HSet(ctx, countsKey(list), fields)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Reset(ctx context.Context, list string) error {
	return s.client.Del(ctx, canvasKey(list), countsKey(list)).Err()
}
