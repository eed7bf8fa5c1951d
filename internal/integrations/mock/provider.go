package mock

import (
	"context"
	"fmt"
	"sync"

	"send-to-print/internal/integrations/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockProvider используется при разработке: платёж становится succeeded
// после SucceedAfter запросов статуса.
type MockProvider struct {
	SucceedAfter int

	mu       sync.Mutex
	byKey    map[string]string
	payments map[string]*mockPayment
}

type mockPayment struct {
	amount  decimal.Decimal
	lookups int
}

func NewProvider(succeedAfter int) *MockProvider {
	return &MockProvider{
		SucceedAfter: succeedAfter,
		byKey:        make(map[string]string),
		payments:     make(map[string]*mockPayment),
	}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) CreatePayment(ctx context.Context, creds dto.Credentials, req dto.CreatePaymentRequest) (*dto.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Тот же ключ идемпотентности возвращает тот же платёж.
	id, ok := m.byKey[req.IdempotencyKey]
	if !ok {
		id = "mock-" + uuid.NewString()
		m.byKey[req.IdempotencyKey] = id
		m.payments[id] = &mockPayment{amount: req.Amount}
	}

	return &dto.Payment{
		ID:              id,
		Status:          "pending",
		ConfirmationURL: fmt.Sprintf("%s?payment=%s", req.ReturnURL, id),
		Amount:          decimal.NewNullDecimal(m.payments[id].amount),
	}, nil
}

func (m *MockProvider) FindPayment(ctx context.Context, creds dto.Credentials, paymentID string) (*dto.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("mock: платёж %s не найден", paymentID)
	}

	p.lookups++
	status := "pending"
	if m.SucceedAfter > 0 && p.lookups >= m.SucceedAfter {
		status = "succeeded"
	}
	return &dto.Payment{ID: paymentID, Status: status, Amount: decimal.NewNullDecimal(p.amount)}, nil
}
