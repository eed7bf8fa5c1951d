package services

import (
	"context"

	"send-to-print/internal/entities"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// Рёбра жизненного цикла заказа. in_progress сюда не входит.
var allowedTransitions = map[string][]string{
	constants.StatusCreated:        {constants.StatusWaitingPayment, constants.StatusReady},
	constants.StatusWaitingPayment: {constants.StatusPaid, constants.StatusCanceled},
	constants.StatusPaid:           {constants.StatusReady},
	constants.StatusReady:          {constants.StatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition описывает одно ребро. ShopID != 0 включает проверку владельца;
// Check и Apply выполняются под блокировкой строки.
type Transition struct {
	OrderID uint64
	To      string
	ShopID  uint64
	Check   func(order *entities.Order) error
	Apply   func(ctx context.Context, tx pgx.Tx, order *entities.Order) error
}

type TransitionResult struct {
	Order entities.Order
	From  string
}

type OrderStateMachine struct {
	txManager repositories.TxManagerInterface
	orderRepo repositories.OrderRepositoryInterface
}

func NewOrderStateMachine(txManager repositories.TxManagerInterface, orderRepo repositories.OrderRepositoryInterface) *OrderStateMachine {
	return &OrderStateMachine{txManager: txManager, orderRepo: orderRepo}
}

// Apply: блокировка строки, повторное чтение статуса, проверка, запись, коммит.
func (m *OrderStateMachine) Apply(ctx context.Context, t Transition) (*TransitionResult, error) {
	var result *TransitionResult

	err := m.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, err := m.orderRepo.FindOrderForUpdateInTx(ctx, tx, t.OrderID)
		if err != nil {
			return err
		}

		// чужой заказ неотличим от несуществующего
		if t.ShopID != 0 && order.ShopID != t.ShopID {
			return apperrors.ErrNotFound
		}

		if !CanTransition(order.Status, t.To) {
			return apperrors.NewTransitionError(order.ID, order.Status, t.To)
		}

		if t.Check != nil {
			if err := t.Check(order); err != nil {
				return err
			}
		}

		if t.Apply != nil {
			err = t.Apply(ctx, tx, order)
		} else {
			err = m.orderRepo.UpdateStatusInTx(ctx, tx, order.ID, t.To)
		}
		if err != nil {
			return err
		}

		from := order.Status
		order.Status = t.To
		result = &TransitionResult{Order: *order, From: from}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
