package listeners

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"send-to-print/internal/dto"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	"send-to-print/pkg/telegram"
)

const maxBackoff = time.Minute

// DeliveryWorker забирает уведомления из очереди и доставляет их в Telegram
// с ограниченным числом попыток и экспоненциальной паузой.
type DeliveryWorker struct {
	outbox      repositories.OutboxRepositoryInterface
	sender      telegram.ServiceInterface
	workers     int
	maxAttempts int
	baseBackoff time.Duration
	pollTimeout time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
}

func NewDeliveryWorker(
	outbox repositories.OutboxRepositoryInterface,
	sender telegram.ServiceInterface,
	workers, maxAttempts int,
	baseBackoff time.Duration,
	logger *zap.Logger,
) *DeliveryWorker {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &DeliveryWorker{
		outbox:      outbox,
		sender:      sender,
		workers:     workers,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		pollTimeout: 2 * time.Second,
		logger:      logger.Named("delivery_worker"),
	}
}

func (w *DeliveryWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.worker(ctx, i)
	}
	w.logger.Info("Воркеры доставки уведомлений запущены", zap.Int("workers", w.workers))
}

func (w *DeliveryWorker) Wait() {
	w.wg.Wait()
}

func (w *DeliveryWorker) worker(ctx context.Context, id int) {
	defer w.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		payload, err := w.outbox.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("Ошибка чтения очереди уведомлений", zap.Int("worker", id), zap.Error(err))
			_ = sleepCtx(ctx, w.baseBackoff)
			continue
		}
		if payload == nil {
			continue
		}

		w.process(ctx, payload)
	}
}

func (w *DeliveryWorker) process(ctx context.Context, payload []byte) {
	var msg dto.OutboxMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		w.logger.Error("Повреждённое сообщение в очереди", zap.Error(err))
		w.deadLetter(payload)
		return
	}

	chatID, err := strconv.ParseInt(msg.Event.UserID, 10, 64)
	if err != nil {
		w.logger.Warn("user_id не является chat id Telegram", zap.String("user_id", msg.Event.UserID), zap.Uint64("order_id", msg.Event.OrderID))
		w.deadLetter(payload)
		return
	}

	text := FormatCustomerMessage(msg.Event)

	for msg.Attempts < w.maxAttempts {
		err = w.sender.SendMessage(ctx, chatID, text)
		msg.Attempts++
		if err == nil {
			w.logger.Debug("Уведомление доставлено",
				zap.String("id", msg.ID),
				zap.Uint64("order_id", msg.Event.OrderID),
				zap.Int("attempts", msg.Attempts),
			)
			return
		}
		if errors.Is(err, telegram.ErrPermanent) {
			break
		}

		w.logger.Warn("Не удалось доставить уведомление, повтор",
			zap.String("id", msg.ID),
			zap.Int("attempt", msg.Attempts),
			zap.Error(err),
		)
		if msg.Attempts >= w.maxAttempts {
			break
		}
		if sleepCtx(ctx, backoff(w.baseBackoff, msg.Attempts)) != nil {
			// остановка сервиса: возвращаем сообщение в очередь с учётом попыток
			w.requeue(msg)
			return
		}
	}

	w.logger.Error("Уведомление не доставлено",
		zap.String("id", msg.ID),
		zap.Uint64("order_id", msg.Event.OrderID),
		zap.Int("attempts", msg.Attempts),
		zap.Error(err),
	)
	raw, _ := json.Marshal(msg)
	w.deadLetter(raw)
}

func (w *DeliveryWorker) requeue(msg dto.OutboxMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.outbox.Enqueue(ctx, raw); err != nil {
		w.logger.Error("Не удалось вернуть уведомление в очередь", zap.String("id", msg.ID), zap.Error(err))
	}
}

func (w *DeliveryWorker) deadLetter(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.outbox.DeadLetter(ctx, payload); err != nil {
		w.logger.Error("Не удалось записать уведомление в dead-letter", zap.Error(err))
	}
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func FormatCustomerMessage(n dto.NotificationDTO) string {
	switch n.Type {
	case constants.EventOrderPaid:
		return fmt.Sprintf("✅ Оплата заказа №%d получена. Мы сообщим, когда он будет готов.", n.OrderID)
	case constants.EventOrderReady:
		msg := fmt.Sprintf("🖨️ Заказ №%d готов!", n.OrderID)
		if n.Address != "" {
			msg += fmt.Sprintf(" Адрес получения: %s", n.Address)
		}
		if n.ConfirmationCode != "" {
			msg += fmt.Sprintf("\nКод для получения: %s", n.ConfirmationCode)
		}
		return msg
	case constants.EventOrderCompleted:
		return fmt.Sprintf("✅ Заказ №%d выдан! Спасибо, что воспользовались нашим сервисом.", n.OrderID)
	default:
		return fmt.Sprintf("Статус заказа №%d: %s", n.OrderID, n.Status)
	}
}
