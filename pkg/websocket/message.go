package websocket

import "time"

// Envelope оборачивает сообщение; по Type клиент понимает, что пришло.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
