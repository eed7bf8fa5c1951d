package dto

// NotificationDTO уходит в чат-клиент и в ленту оператора.
type NotificationDTO struct {
	Type             string `json:"type"`
	OrderID          uint64 `json:"order_id"`
	ShopID           uint64 `json:"shop_id"`
	UserID           string `json:"user_id"`
	Status           string `json:"status"`
	Address          string `json:"address"`
	ConfirmationCode string `json:"confirmation_code"`
}

// OutboxMessage хранится в очереди доставки уведомлений.
type OutboxMessage struct {
	ID       string          `json:"id"`
	Attempts int             `json:"attempts"`
	Event    NotificationDTO `json:"event"`
}
