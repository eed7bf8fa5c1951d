package repositories

import (
	"context"
	"time"
)

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// OutboxRepositoryInterface описывает очередь исходящих уведомлений.
type OutboxRepositoryInterface interface {
	Enqueue(ctx context.Context, payload []byte) error
	// Dequeue ждёт не дольше timeout; при пустой очереди возвращает nil, nil.
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
	DeadLetter(ctx context.Context, payload []byte) error
}
