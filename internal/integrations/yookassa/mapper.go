package yookassa

import (
	"fmt"

	internalDTO "send-to-print/internal/integrations/dto"

	"github.com/shopspring/decimal"
)

func mapPaymentToInternal(ext PaymentResponse) (*internalDTO.Payment, error) {
	if ext.ID == "" {
		return nil, fmt.Errorf("ответ шлюза без id платежа")
	}

	payment := &internalDTO.Payment{
		ID:     ext.ID,
		Status: ext.Status,
	}
	if ext.Confirmation != nil {
		payment.ConfirmationURL = ext.Confirmation.ConfirmationURL
	}
	if ext.Amount.Value != "" {
		amount, err := decimal.NewFromString(ext.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("неверная сумма платежа %q: %w", ext.Amount.Value, err)
		}
		payment.Amount = decimal.NewNullDecimal(amount)
	}
	return payment, nil
}
