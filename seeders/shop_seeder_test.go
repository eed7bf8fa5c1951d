package seeders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"send-to-print/internal/entities"
	"send-to-print/pkg/secretbox"
	"send-to-print/pkg/utils"
)

type captureShops struct {
	franchise *entities.Franchise
	shop      *entities.Shop
}

func (c *captureShops) FindShop(ctx context.Context, id uint64) (*entities.Shop, error) {
	return c.shop, nil
}

func (c *captureShops) GetShops(ctx context.Context, activeOnly bool) ([]entities.Shop, error) {
	if c.shop == nil {
		return nil, nil
	}
	return []entities.Shop{*c.shop}, nil
}

func (c *captureShops) FindFranchise(ctx context.Context, id uint64) (*entities.Franchise, error) {
	return c.franchise, nil
}

func (c *captureShops) CreateFranchise(ctx context.Context, f *entities.Franchise) (uint64, error) {
	f.ID = 7
	c.franchise = f
	return f.ID, nil
}

func (c *captureShops) CreateShop(ctx context.Context, s *entities.Shop) (uint64, error) {
	s.ID = 11
	c.shop = s
	return s.ID, nil
}

func TestSeedShop(t *testing.T) {
	box, err := secretbox.New(make([]byte, 32))
	require.NoError(t, err)
	repo := &captureShops{}

	id, err := seedShop(context.Background(), repo, box, ShopSeedOptions{
		FranchiseName:    "Франшиза",
		GatewayAccountID: "shop-account",
		GatewaySecret:    "live_secret",
		ShopName:         "Точка",
		PriceBW:          decimal.NewFromInt(15),
		PriceColor:       decimal.NewFromInt(40),
		Password:         "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(11), id)
	assert.Equal(t, uint64(7), repo.shop.FranchiseID)
	assert.NotContains(t, repo.franchise.EncryptedSecret, "live_secret")

	secret, err := box.Open(repo.franchise.EncryptedSecret)
	require.NoError(t, err)
	assert.Equal(t, "live_secret", secret)
	assert.NoError(t, utils.ComparePasswords(repo.shop.CredentialHash, "password123"))
}

func TestSeedShop_RequiresSecrets(t *testing.T) {
	box, err := secretbox.New(make([]byte, 32))
	require.NoError(t, err)

	_, err = seedShop(context.Background(), &captureShops{}, box, ShopSeedOptions{Password: "x"})
	assert.Error(t, err)
}
