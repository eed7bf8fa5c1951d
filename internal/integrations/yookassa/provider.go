package yookassa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"send-to-print/internal/integrations"
	internalDTO "send-to-print/internal/integrations/dto"
)

// Provider ходит в API ЮKassa. Реквизиты франшизы приходят в каждый вызов,
// общим остаётся только http.Client без состояния авторизации.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) integrations.PaymentGateway {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger.Named("yookassa_provider"),
	}
}

func (p *Provider) Name() string {
	return "yookassa"
}

func (p *Provider) newCall(creds internalDTO.Credentials) call {
	return call{
		httpClient: p.httpClient,
		baseURL:    p.baseURL,
		accountID:  creds.AccountID,
		secret:     creds.Secret,
	}
}

func (p *Provider) CreatePayment(ctx context.Context, creds internalDTO.Credentials, req internalDTO.CreatePaymentRequest) (*internalDTO.Payment, error) {
	body := CreatePaymentRequest{
		Amount: Amount{
			Value:    req.Amount.StringFixed(2),
			Currency: req.Currency,
		},
		Capture: true,
		Confirmation: ConfirmationRequest{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Description: req.Description,
		Metadata:    map[string]string{"order_id": strconv.FormatUint(req.OrderID, 10)},
	}

	resp, err := p.newCall(creds).do(ctx, http.MethodPost, "/payments", req.IdempotencyKey, body)
	if err != nil {
		p.logger.Warn("Не удалось создать платёж",
			zap.Uint64("order_id", req.OrderID),
			zap.String("account_id", creds.AccountID),
			zap.Error(err),
		)
		return nil, err
	}

	payment, err := mapPaymentToInternal(*resp)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Платёж создан",
		zap.Uint64("order_id", req.OrderID),
		zap.String("payment_id", payment.ID),
		zap.String("status", payment.Status),
	)
	return payment, nil
}

func (p *Provider) FindPayment(ctx context.Context, creds internalDTO.Credentials, paymentID string) (*internalDTO.Payment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("пустой id платежа")
	}

	resp, err := p.newCall(creds).do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), "", nil)
	if err != nil {
		return nil, err
	}
	return mapPaymentToInternal(*resp)
}
