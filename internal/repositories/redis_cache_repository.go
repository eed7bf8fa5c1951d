package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	outboxQueueKey = "notifications:outbox"
	outboxDeadKey  = "notifications:dead"
)

// RedisCacheRepository - счётчики и ключи с TTL на Redis.
type RedisCacheRepository struct {
	client *redis.Client
}

func NewRedisCacheRepository(client *redis.Client) CacheRepositoryInterface {
	return &RedisCacheRepository{client: client}
}

func (r *RedisCacheRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCacheRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Incr атомарно увеличивает значение ключа на 1.
func (r *RedisCacheRepository) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *RedisCacheRepository) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return r.client.Expire(ctx, key, expiration).Result()
}

// RedisOutboxRepository - очередь уведомлений на списках Redis (LPUSH/BRPOP).
type RedisOutboxRepository struct {
	client *redis.Client
}

func NewRedisOutboxRepository(client *redis.Client) OutboxRepositoryInterface {
	return &RedisOutboxRepository{client: client}
}

func (r *RedisOutboxRepository) Enqueue(ctx context.Context, payload []byte) error {
	return r.client.LPush(ctx, outboxQueueKey, payload).Err()
}

func (r *RedisOutboxRepository) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := r.client.BRPop(ctx, timeout, outboxQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP возвращает [ключ, значение]
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

func (r *RedisOutboxRepository) DeadLetter(ctx context.Context, payload []byte) error {
	return r.client.LPush(ctx, outboxDeadKey, payload).Err()
}
