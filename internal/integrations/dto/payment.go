package dto

import (
	"github.com/shopspring/decimal"
)

// Credentials живут только в рамках одного вызова шлюза.
type Credentials struct {
	AccountID string
	Secret    string
}

type CreatePaymentRequest struct {
	OrderID        uint64
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	ReturnURL      string
	Description    string
}

// Payment описывает платёж в терминах ядра; Status в словаре шлюза (pending, succeeded, canceled...).
type Payment struct {
	ID              string
	Status          string
	ConfirmationURL string
	Amount          decimal.NullDecimal
}
