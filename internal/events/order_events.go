package events

import (
	"send-to-print/internal/entities"
)

const (
	OrderStatusChanged = "order.status.changed"
	OrderCreated       = "order.created"
)

// OrderStatusChangedEvent публикуется после коммита перехода.
type OrderStatusChangedEvent struct {
	Order entities.Order
	From  string
	To    string
}

func (e OrderStatusChangedEvent) Name() string {
	return OrderStatusChanged
}

type OrderCreatedEvent struct {
	Order entities.Order
}

func (e OrderCreatedEvent) Name() string {
	return OrderCreated
}
