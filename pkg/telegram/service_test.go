package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_EscapesAndPosts(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	svc := NewServiceWithURL("TOKEN", srv.URL)
	require.NoError(t, svc.SendMessage(context.Background(), 42, "Заказ №7 готов!"))

	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "MarkdownV2", got.ParseMode)
	assert.Equal(t, "Заказ №7 готов\\!", got.Text)
}

func TestSendMessage_PermanentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := NewServiceWithURL("TOKEN", srv.URL).SendMessage(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestSendMessage_TransientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests"}`))
	}))
	defer srv.Close()

	err := NewServiceWithURL("TOKEN", srv.URL).SendMessage(context.Background(), 1, "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestSendMessage_NoToken(t *testing.T) {
	err := NewService("", false).SendMessage(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrPermanent)
}
