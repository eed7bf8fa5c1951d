package dto

import "github.com/shopspring/decimal"

// ShopResponseDTO: карточка точки для чат-клиента. Учётные данные не отдаются.
type ShopResponseDTO struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	Address    string          `json:"address"`
	WorkHours  string          `json:"work_hours"`
	PriceBW    decimal.Decimal `json:"price_bw"`
	PriceColor decimal.Decimal `json:"price_cl"`
}
