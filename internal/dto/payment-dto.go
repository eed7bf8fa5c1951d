package dto

import (
	"github.com/shopspring/decimal"
)

// Исходы опроса платежа, которые видит чат-клиент.
const (
	OutcomePending  = "pending"
	OutcomePaid     = "paid"
	OutcomeCanceled = "canceled"
	OutcomeIgnored  = "ignored"
)

type PaymentCreatedDTO struct {
	OrderID         uint64          `json:"order_id"`
	PaymentID       string          `json:"payment_id"`
	PaymentStatus   string          `json:"payment_status"`
	ConfirmationURL string          `json:"confirmation_url"`
	IdempotencyKey  string          `json:"idempotency_key"`
	Amount          decimal.Decimal `json:"amount"`
	Replayed        bool            `json:"replayed"`
}

// PaymentStatusDTO: в Status исход для чат-клиента, в OrderStatus статус заказа в БД.
type PaymentStatusDTO struct {
	OrderID     uint64 `json:"order_id"`
	Status      string `json:"status"`
	OrderStatus string `json:"order_status"`
}

type TimeoutResultDTO struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}
