package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrAccountLocked      = fmt.Errorf("слишком много попыток входа, попробуйте позже")

	// Контекст
	ErrShopIDNotFoundInContext = fmt.Errorf("ShopID не найден в контексте запроса")

	// Жизненный цикл заказа
	ErrNotFound           = fmt.Errorf("запись не найдена")
	ErrInvalidTransition  = fmt.Errorf("недопустимый переход статуса")
	ErrConflict           = fmt.Errorf("конфликт уникального ключа")
	ErrConfiguration      = fmt.Errorf("ошибка конфигурации платёжных реквизитов")
	ErrServiceUnavailable = fmt.Errorf("платёжный шлюз недоступен")

	// Общие
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError несёт HTTP-код и сообщение для клиента; Err остаётся только в логах.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// TransitionError уточняет, из какого статуса переход был отклонён.
type TransitionError struct {
	OrderID uint64
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("заказ %d: переход %s -> %s недопустим", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func NewTransitionError(orderID uint64, from, to string) error {
	return &TransitionError{OrderID: orderID, From: from, To: to}
}
