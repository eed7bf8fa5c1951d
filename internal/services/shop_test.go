package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"send-to-print/internal/entities"
	apperrors "send-to-print/pkg/errors"
)

func TestShopCatalog(t *testing.T) {
	h := newHarness(t)
	h.shops.shops[3] = &entities.Shop{ID: 3, Name: "Закрыта", FranchiseID: 1, IsActive: false, CredentialHash: "hash"}
	svc := NewShopService(h.shops, zap.NewNop())
	ctx := context.Background()

	shops, err := svc.GetShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, uint64(1), shops[0].ID)
	assert.Equal(t, "ул. Ленина, 1", shops[0].Address)
	assert.Equal(t, "15.00", shops[0].PriceBW.StringFixed(2))
	assert.Equal(t, uint64(2), shops[1].ID)

	shop, err := svc.FindShop(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "12.50", shop.PriceBW.StringFixed(2))
	assert.True(t, shop.PriceColor.IsZero())

	_, err = svc.FindShop(ctx, 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.FindShop(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
