package entities

import (
	"github.com/shopspring/decimal"
)

type Shop struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	WorkHours      string          `json:"work_hours"`
	PriceBW        decimal.Decimal `json:"price_bw"`
	PriceColor     decimal.Decimal `json:"price_cl"`
	CredentialHash string          `json:"-"`
	FranchiseID    uint64          `json:"franchise_id"`
	IsActive       bool            `json:"is_active"`
}

// Franchise группирует точки под одним аккаунтом платёжного шлюза.
type Franchise struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	GatewayAccountID string `json:"gateway_account_id"`
	EncryptedSecret  string `json:"-"`
	IsActive         bool   `json:"is_active"`
}
