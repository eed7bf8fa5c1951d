package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	"send-to-print/pkg/config"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/service"
	"send-to-print/pkg/utils"
)

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string), counts: make(map[string]int64)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = fmt.Sprint(value)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.counts, k)
	}
	return nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memoryCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return true, nil
}

func newTestAuth(t *testing.T) (AuthServiceInterface, service.JWTService, *memoryCache) {
	t.Helper()
	hash, err := utils.HashPassword("print-1234")
	require.NoError(t, err)

	shops := newFakeShopRepo()
	shops.shops[1] = &entities.Shop{ID: 1, Name: "Точка 1", CredentialHash: hash, IsActive: true}
	shops.shops[2] = &entities.Shop{ID: 2, CredentialHash: hash, IsActive: false}

	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	cache := newMemoryCache()
	auth := NewAuthService(shops, cache, jwtSvc, zap.NewNop(), config.AuthConfig{
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
	})
	return auth, jwtSvc, cache
}

func TestLogin(t *testing.T) {
	auth, jwtSvc, _ := newTestAuth(t)

	resp, err := auth.Login(context.Background(), dto.LoginDTO{ShopID: 1, Password: "print-1234"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), resp.ShopID)
	assert.Equal(t, "Точка 1", resp.ShopName)
	claims, err := jwtSvc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.ShopID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	cases := []dto.LoginDTO{
		{ShopID: 1, Password: "wrong"},
		{ShopID: 2, Password: "print-1234"},
		{ShopID: 9, Password: "print-1234"},
	}
	for _, payload := range cases {
		_, err := auth.Login(context.Background(), payload)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "shop %d", payload.ShopID)
	}
}

func TestLogin_LockoutAfterFailedAttempts(t *testing.T) {
	auth, _, cache := newTestAuth(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := auth.Login(ctx, dto.LoginDTO{ShopID: 1, Password: "wrong"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := auth.Login(ctx, dto.LoginDTO{ShopID: 1, Password: "print-1234"})
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	require.NoError(t, cache.Del(ctx, "lockout:shop:1"))
	_, err = auth.Login(ctx, dto.LoginDTO{ShopID: 1, Password: "print-1234"})
	assert.NoError(t, err)
}
