package listeners

import (
	"context"
	"sync"
	"time"

	"send-to-print/internal/entities"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/telegram"
)

type memoryOutbox struct {
	mu    sync.Mutex
	queue [][]byte
	dead  [][]byte
}

func (o *memoryOutbox) Enqueue(ctx context.Context, payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, payload)
	return nil
}

func (o *memoryOutbox) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	o.mu.Lock()
	if len(o.queue) > 0 {
		p := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()
		return p, nil
	}
	o.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
		return nil, nil
	}
}

func (o *memoryOutbox) DeadLetter(ctx context.Context, payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dead = append(o.dead, payload)
	return nil
}

func (o *memoryOutbox) queued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *memoryOutbox) deadCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.dead)
}

type stubShops struct {
	shop *entities.Shop
}

func (s *stubShops) FindShop(ctx context.Context, id uint64) (*entities.Shop, error) {
	if s.shop == nil || s.shop.ID != id {
		return nil, apperrors.ErrNotFound
	}
	return s.shop, nil
}

func (s *stubShops) GetShops(ctx context.Context, activeOnly bool) ([]entities.Shop, error) {
	if s.shop == nil {
		return nil, nil
	}
	return []entities.Shop{*s.shop}, nil
}

func (s *stubShops) FindFranchise(ctx context.Context, id uint64) (*entities.Franchise, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubShops) CreateFranchise(ctx context.Context, f *entities.Franchise) (uint64, error) {
	return 0, nil
}

func (s *stubShops) CreateShop(ctx context.Context, sh *entities.Shop) (uint64, error) {
	return 0, nil
}

type feedMessage struct {
	shopID  uint64
	msgType string
}

type recordingFeed struct {
	mu   sync.Mutex
	sent []feedMessage
}

func (f *recordingFeed) SendMessageToShop(shopID uint64, payload interface{}, messageType string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, feedMessage{shopID: shopID, msgType: messageType})
	return 1, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

// scriptedSender возвращает ошибки из errs по порядку, затем nil.
type scriptedSender struct {
	mu   sync.Mutex
	errs []error
	sent []sentMessage
}

func newScriptedSender(errs ...error) *scriptedSender {
	return &scriptedSender{errs: errs}
}

func (s *scriptedSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	return err
}

func (s *scriptedSender) SendMessageEx(ctx context.Context, chatID int64, text string, options ...telegram.MessageOption) error {
	return s.SendMessage(ctx, chatID, text)
}

func (s *scriptedSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
