package constants

const (
	BotKeyHeader      = "X-Bot-Key"
	IdempotenceHeader = "Idempotence-Key"

	// Типы событий для клиента и оператора
	EventOrderCreated   = "order_created"
	EventOrderPaid      = "order_paid"
	EventOrderReady     = "order_ready"
	EventOrderCompleted = "order_completed"
)
