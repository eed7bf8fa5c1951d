package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
)

// call хранит конфигурацию одного запроса. Создаётся на каждый вызов и нигде не сохраняется.
type call struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	secret     string
}

func (c call) do(ctx context.Context, method, endpoint, idempotenceKey string, body any) (*PaymentResponse, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.SetBasicAuth(c.accountID, c.secret)
	req.Header.Set("Content-Type", "application/json")
	if idempotenceKey != "" {
		req.Header.Set(constants.IdempotenceHeader, idempotenceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrServiceUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: чтение ответа: %v", apperrors.ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, raw)
	}

	var payment PaymentResponse
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа шлюза: %w", err)
	}
	return &payment, nil
}

func classifyStatus(code int, raw []byte) error {
	var apiErr ErrorResponse
	_ = json.Unmarshal(raw, &apiErr)

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: шлюз отклонил реквизиты (%d %s)", apperrors.ErrConfiguration, code, apiErr.Code)
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: статус %d", apperrors.ErrServiceUnavailable, code)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: платёж не найден в шлюзе", apperrors.ErrNotFound)
	default:
		return fmt.Errorf("шлюз вернул статус %d: %s %s", code, apiErr.Code, apiErr.Description)
	}
}
