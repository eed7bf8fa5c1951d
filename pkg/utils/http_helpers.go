package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "send-to-print/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Message: message, Body: body})
}

// ErrorResponse переводит ошибки сервисов в HTTP. Сырые ошибки шлюза и
// конфигурации в тело ответа не попадают, только в лог.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Ошибка валидации: " + strings.Join(msgs, "; ")})
	}

	code, message := classify(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Unexpected Error", zap.Int("code", code), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("code", code), zap.Error(err))
	}
	return c.JSON(code, map[string]interface{}{
		"status":  false,
		"message": message,
	})
}

func classify(err error) (int, string) {
	var transitionErr *apperrors.TransitionError
	var inputErr *apperrors.InvalidInputError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, apperrors.ErrNotFound.Error()
	case errors.As(err, &transitionErr):
		return http.StatusConflict, transitionErr.Error()
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict, apperrors.ErrInvalidTransition.Error()
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, apperrors.ErrConflict.Error()
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, apperrors.ErrBadRequest.Error()
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "Платёжный сервис временно недоступен, попробуйте позже"
	case errors.Is(err, apperrors.ErrAccountLocked):
		return http.StatusTooManyRequests, apperrors.ErrAccountLocked.Error()
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrShopIDNotFoundInContext):
		return http.StatusUnauthorized, apperrors.ErrUnauthorized.Error()
	default:
		// ErrConfiguration сюда же: клиенту только общий текст
		return http.StatusInternalServerError, "Внутренняя ошибка сервера"
	}
}
