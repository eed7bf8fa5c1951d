package dto

import (
	"github.com/shopspring/decimal"
)

// CreateOrderDTO приходит от сервиса загрузки: файл уже сохранён, ядру передаётся ссылка.
// Price необязательна: цену считает ядро по тарифу точки, переданная сверяется с ним.
type CreateOrderDTO struct {
	ShopID           uint64          `json:"shop_id" validate:"required,gt=0"`
	UserID           string          `json:"user_id" validate:"required,max=64"`
	Pages            int             `json:"pages" validate:"required,gt=0"`
	Color            string          `json:"color" validate:"required,print_color"`
	Price            decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	ConfirmationCode string          `json:"confirmation_code" validate:"required,confirmation_code"`
	Note             string          `json:"note" validate:"max=1000"`
	FileExtension    string          `json:"file_extension" validate:"max=16"`
	FilePath         string          `json:"file_path" validate:"required,max=500"`
}

type OrderResponseDTO struct {
	ID               uint64           `json:"id"`
	ShopID           uint64           `json:"shop_id"`
	Status           string           `json:"status"`
	Price            decimal.Decimal  `json:"price"`
	Pages            int              `json:"pages"`
	Color            string           `json:"color"`
	Note             string           `json:"note"`
	ConfirmationCode string           `json:"confirmation_code"`
	FileExtension    string           `json:"file_extension"`
	FilePath         string           `json:"file_path"`
	UserID           string           `json:"user_id"`
	PaymentStatus    *string          `json:"payment_status,omitempty"`
	PaymentAmount    *decimal.Decimal `json:"payment_amount,omitempty"`
	PaidAt           *string          `json:"paid_at,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

// OrderFileDTO описывает файл заказа для выдачи оператору.
type OrderFileDTO struct {
	OrderID       uint64
	FilePath      string
	FileExtension string
}

type OrderFilterDTO struct {
	ShopID   uint64
	Statuses []string
}

type CompleteOrderDTO struct {
	ConfirmationCode string `json:"confirmation_code" validate:"omitempty,confirmation_code"`
}

// TransitionResultDTO возвращается на операции оператора.
type TransitionResultDTO struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}
