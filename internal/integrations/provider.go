package integrations

import (
	"context"

	"send-to-print/internal/integrations/dto"
)

// PaymentGateway не хранит реквизиты: они передаются в каждый вызов.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, creds dto.Credentials, req dto.CreatePaymentRequest) (*dto.Payment, error)
	FindPayment(ctx context.Context, creds dto.Credentials, paymentID string) (*dto.Payment, error)
}
