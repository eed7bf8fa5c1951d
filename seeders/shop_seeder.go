package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"send-to-print/internal/entities"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/secretbox"
	"send-to-print/pkg/utils"
)

type ShopSeedOptions struct {
	FranchiseName    string
	GatewayAccountID string
	GatewaySecret    string
	ShopName         string
	Address          string
	WorkHours        string
	PriceBW          decimal.Decimal
	PriceColor       decimal.Decimal
	Password         string
}

func seedShop(ctx context.Context, repo repositories.ShopRepositoryInterface, box *secretbox.Box, opts ShopSeedOptions) (uint64, error) {
	if opts.GatewayAccountID == "" || opts.GatewaySecret == "" {
		return 0, fmt.Errorf("не заданы реквизиты шлюза для франшизы")
	}
	if opts.Password == "" {
		return 0, fmt.Errorf("не задан пароль оператора")
	}

	log.Println("  - Создание франшизы...")
	encrypted, err := box.Seal(opts.GatewaySecret)
	if err != nil {
		return 0, fmt.Errorf("не удалось зашифровать секрет: %w", err)
	}
	franchise := &entities.Franchise{
		Name:             opts.FranchiseName,
		GatewayAccountID: opts.GatewayAccountID,
		EncryptedSecret:  encrypted,
		IsActive:         true,
	}
	if _, err := repo.CreateFranchise(ctx, franchise); err != nil {
		return 0, err
	}

	log.Println("  - Создание точки...")
	hash, err := utils.HashPassword(opts.Password)
	if err != nil {
		return 0, err
	}
	shop := &entities.Shop{
		Name:           opts.ShopName,
		Address:        opts.Address,
		WorkHours:      opts.WorkHours,
		PriceBW:        opts.PriceBW,
		PriceColor:     opts.PriceColor,
		CredentialHash: hash,
		FranchiseID:    franchise.ID,
		IsActive:       true,
	}
	return repo.CreateShop(ctx, shop)
}
