// Package reconcile реализует клиентскую сторону сверки оплаты: частые проверки
// в горячей фазе, редкие в тёплой, затем отмена по таймауту.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"send-to-print/internal/dto"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/scheduler"
)

const (
	// OutcomeTimeout означает, что заказ отменён самим поллером по истечении окна.
	OutcomeTimeout = "timeout"
	// OutcomeNotWaiting: заказ не ждёт оплаты (например, ещё created), опрашивать нечего.
	OutcomeNotWaiting = "not_waiting"
)

type StatusChecker interface {
	CheckPaymentStatus(ctx context.Context, orderID uint64) (*dto.PaymentStatusDTO, error)
	CancelOnTimeout(ctx context.Context, orderID uint64) (*dto.TimeoutResultDTO, error)
}

type Schedule struct {
	HotInterval  time.Duration
	HotWindow    time.Duration
	WarmInterval time.Duration
	WarmWindow   time.Duration
}

type Result struct {
	OrderID uint64
	Status  string
	Err     error
}

type ResultFunc func(Result)

type Poller struct {
	checker  StatusChecker
	sched    *scheduler.Scheduler
	schedule Schedule
	onResult ResultFunc
	logger   *zap.Logger
}

func NewPoller(checker StatusChecker, sched *scheduler.Scheduler, schedule Schedule, onResult ResultFunc, logger *zap.Logger) *Poller {
	if onResult == nil {
		onResult = func(Result) {}
	}
	return &Poller{
		checker:  checker,
		sched:    sched,
		schedule: schedule,
		onResult: onResult,
		logger:   logger.Named("reconcile"),
	}
}

func key(orderID uint64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// Start запускает опрос заказа. Повторный Start для того же заказа
// начинает окно заново.
func (p *Poller) Start(orderID uint64) {
	started := time.Now()
	p.sched.Schedule(key(orderID), p.schedule.HotInterval, p.tick(orderID, started))
	p.logger.Debug("Опрос оплаты запущен", zap.Uint64("order_id", orderID))
}

func (p *Poller) Stop(orderID uint64) bool {
	return p.sched.Cancel(key(orderID))
}

func (p *Poller) tick(orderID uint64, started time.Time) scheduler.TaskFunc {
	return func(ctx context.Context) {
		res, err := p.checker.CheckPaymentStatus(ctx, orderID)
		switch {
		case err == nil && res.Status != dto.OutcomePending:
			p.onResult(Result{OrderID: orderID, Status: res.Status})
			return
		case err == nil && res.OrderStatus != constants.StatusWaitingPayment:
			p.logger.Debug("Заказ не ожидает оплаты, опрос остановлен",
				zap.Uint64("order_id", orderID), zap.String("order_status", res.OrderStatus))
			p.onResult(Result{OrderID: orderID, Status: OutcomeNotWaiting})
			return
		case errors.Is(err, apperrors.ErrNotFound):
			p.onResult(Result{OrderID: orderID, Err: err})
			return
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			// шлюз недоступен или временная ошибка: опрос продолжается
			p.logger.Warn("Ошибка проверки оплаты", zap.Uint64("order_id", orderID), zap.Error(err))
		}

		next, ok := p.nextDelay(time.Since(started))
		if !ok {
			p.timeout(ctx, orderID)
			return
		}
		p.sched.Reschedule(ctx, key(orderID), next, p.tick(orderID, started))
	}
}

func (p *Poller) nextDelay(elapsed time.Duration) (time.Duration, bool) {
	switch {
	case elapsed < p.schedule.HotWindow:
		return p.schedule.HotInterval, true
	case elapsed < p.schedule.HotWindow+p.schedule.WarmWindow:
		return p.schedule.WarmInterval, true
	default:
		return 0, false
	}
}

func (p *Poller) timeout(ctx context.Context, orderID uint64) {
	res, err := p.checker.CancelOnTimeout(ctx, orderID)
	if err != nil {
		p.logger.Error("Не удалось отменить заказ по таймауту", zap.Uint64("order_id", orderID), zap.Error(err))
		p.onResult(Result{OrderID: orderID, Err: err})
		return
	}
	if res.Status == dto.OutcomeCanceled {
		p.onResult(Result{OrderID: orderID, Status: OutcomeTimeout})
		return
	}

	// ignored: заказ ушёл из waiting_payment раньше, отдаём фактический исход
	final, err := p.checker.CheckPaymentStatus(ctx, orderID)
	if err != nil {
		p.onResult(Result{OrderID: orderID, Err: err})
		return
	}
	p.onResult(Result{OrderID: orderID, Status: final.Status})
}
