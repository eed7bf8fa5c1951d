package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub держит подключения операторов, сгруппированные по точке.
type Hub struct {
	clients     map[*Client]bool
	shopClients map[uint64][]*Client
	Register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	mu          sync.RWMutex
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		shopClients: make(map[uint64][]*Client),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		logger:      logger.Named("ws_hub"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.shopClients[client.ShopID] = append(h.shopClients[client.ShopID], client)
			h.mu.Unlock()
			h.logger.Info("Клиент зарегистрирован", zap.Uint64("shop_id", client.ShopID))
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Unregister не блокируется после остановки Run.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	clients := h.shopClients[client.ShopID]
	for i, c := range clients {
		if c == client {
			h.shopClients[client.ShopID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.shopClients[client.ShopID]) == 0 {
		delete(h.shopClients, client.ShopID)
	}
	h.logger.Info("Клиент отсоединён", zap.Uint64("shop_id", client.ShopID))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
	h.shopClients = make(map[uint64][]*Client)
}

// SendMessageToShop рассылает сообщение всем операторам точки.
// Медленный клиент с полным буфером пропускает сообщение, отправитель не ждёт.
func (h *Hub) SendMessageToShop(shopID uint64, payload interface{}, messageType string) (int, error) {
	envelope := Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.shopClients[shopID] {
		select {
		case client.Send <- messageBytes:
			delivered++
		default:
			h.logger.Warn("Буфер клиента переполнен, сообщение пропущено", zap.Uint64("shop_id", shopID))
		}
	}
	return delivered, nil
}

func (h *Hub) ConnectedShops() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.shopClients)
}
