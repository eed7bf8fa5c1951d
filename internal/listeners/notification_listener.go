package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"send-to-print/internal/dto"
	"send-to-print/internal/events"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	"send-to-print/pkg/eventbus"
)

// OperatorFeed доставляет события в живую ленту операторов точки (websocket.Hub).
type OperatorFeed interface {
	SendMessageToShop(shopID uint64, payload interface{}, messageType string) (int, error)
}

// NotificationListener превращает события смены статуса в уведомления:
// клиенту через очередь доставки, оператору напрямую в websocket.
type NotificationListener struct {
	shopRepo repositories.ShopRepositoryInterface
	outbox   repositories.OutboxRepositoryInterface
	feed     OperatorFeed
	logger   *zap.Logger
}

func NewNotificationListener(
	shopRepo repositories.ShopRepositoryInterface,
	outbox repositories.OutboxRepositoryInterface,
	feed OperatorFeed,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		shopRepo: shopRepo,
		outbox:   outbox,
		feed:     feed,
		logger:   logger.Named("notification_listener"),
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderStatusChanged, l.handleStatusChanged)
	bus.Subscribe(events.OrderCreated, l.handleOrderCreated)
	l.logger.Info("NotificationListener подписан на события заказов")
}

func customerEventType(status string) (string, bool) {
	switch status {
	case constants.StatusPaid:
		return constants.EventOrderPaid, true
	case constants.StatusReady:
		return constants.EventOrderReady, true
	case constants.StatusCompleted:
		return constants.EventOrderCompleted, true
	}
	return "", false
}

func (l *NotificationListener) handleStatusChanged(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}

	notification := dto.NotificationDTO{
		Type:             "order_" + event.To,
		OrderID:          event.Order.ID,
		ShopID:           event.Order.ShopID,
		UserID:           event.Order.UserID,
		Status:           event.To,
		Address:          l.shopAddress(ctx, event.Order.ShopID),
		ConfirmationCode: event.Order.ConfirmationCode,
	}

	l.pushToOperators(notification)

	eventType, notify := customerEventType(event.To)
	if !notify {
		return nil
	}
	notification.Type = eventType
	l.enqueueForCustomer(ctx, notification)
	return nil
}

func (l *NotificationListener) handleOrderCreated(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	l.pushToOperators(dto.NotificationDTO{
		Type:             constants.EventOrderCreated,
		OrderID:          event.Order.ID,
		ShopID:           event.Order.ShopID,
		UserID:           event.Order.UserID,
		Status:           event.Order.Status,
		ConfirmationCode: event.Order.ConfirmationCode,
	})
	return nil
}

func (l *NotificationListener) shopAddress(ctx context.Context, shopID uint64) string {
	shop, err := l.shopRepo.FindShop(ctx, shopID)
	if err != nil {
		l.logger.Warn("Не удалось получить адрес точки для уведомления", zap.Uint64("shop_id", shopID), zap.Error(err))
		return ""
	}
	return shop.Address
}

func (l *NotificationListener) pushToOperators(n dto.NotificationDTO) {
	if l.feed == nil {
		return
	}
	if _, err := l.feed.SendMessageToShop(n.ShopID, n, n.Type); err != nil {
		l.logger.Warn("Не удалось отправить событие в ленту оператора", zap.Uint64("order_id", n.OrderID), zap.Error(err))
	}
}

func (l *NotificationListener) enqueueForCustomer(ctx context.Context, n dto.NotificationDTO) {
	payload, err := json.Marshal(dto.OutboxMessage{ID: uuid.NewString(), Event: n})
	if err != nil {
		l.logger.Error("Ошибка сериализации уведомления", zap.Error(err))
		return
	}
	if err := l.outbox.Enqueue(ctx, payload); err != nil {
		l.logger.Error("Не удалось поставить уведомление в очередь",
			zap.Uint64("order_id", n.OrderID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
		return
	}
	l.logger.Debug("Уведомление поставлено в очередь", zap.Uint64("order_id", n.OrderID), zap.String("type", n.Type))
}
