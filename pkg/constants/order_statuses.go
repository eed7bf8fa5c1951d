package constants

// --- СТАТУСЫ ЗАКАЗОВ (совпадают со значениями enum order_status в БД) ---
const (
	StatusCreated        = "created"
	StatusWaitingPayment = "waiting_payment"
	StatusPaid           = "paid"
	StatusInProgress     = "in_progress" // устаревший, переходов в него нет
	StatusReady          = "ready"
	StatusCompleted      = "completed"
	StatusCanceled       = "canceled"
)

func IsKnownStatus(code string) bool {
	switch code {
	case StatusCreated, StatusWaitingPayment, StatusPaid, StatusInProgress,
		StatusReady, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Цветность печати
const (
	ColorBW    = "bw"
	ColorColor = "color"
)

// Статусы платежа на стороне шлюза
const (
	GatewayPending           = "pending"
	GatewayWaitingForCapture = "waiting_for_capture"
	GatewaySucceeded         = "succeeded"
	GatewayCanceled          = "canceled"
)
