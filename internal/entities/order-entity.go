package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID               uint64              `json:"id"`
	ShopID           uint64              `json:"shop_id"`
	Price            decimal.Decimal     `json:"price"`
	Note             string              `json:"note"`
	ConfirmationCode string              `json:"confirmation_code"`
	Color            string              `json:"color"`
	Status           string              `json:"status"`
	FileExtension    string              `json:"file_extension"`
	FilePath         string              `json:"file_path"`
	UserID           string              `json:"user_id"`
	Pages            int                 `json:"pages"`
	PaymentID        null.String         `json:"payment_id"`
	PaymentStatus    null.String         `json:"payment_status"`
	ConfirmationURL  null.String         `json:"confirmation_url"`
	PaidAt           null.Time           `json:"paid_at"`
	PaymentAmount    decimal.NullDecimal `json:"payment_amount"`
	IdempotencyKey   null.String         `json:"idempotency_key"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
