package ws

import (
	"encoding/json"
	"sync"

	"go-pos-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

// StoreEvent tells connected views that a store document changed. There is
// no version token to merge with, so the expected reaction is a full
// re-read of the named key.
type StoreEvent struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// Hub fans out change events to every connected websocket client.
type Hub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte

	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 16),
		clients:    make(map[*websocket.Conn]bool),
	}
}

// StoreChanged satisfies service.ChangeNotifier.
func (h *Hub) StoreChanged(key string) {
	msg, err := json.Marshal(StoreEvent{Type: "store_update", Key: key})
	if err != nil {
		return
	}
	// Non-blocking: a stalled hub must never stall a commit.
	select {
	case h.Broadcast <- msg:
	default:
		log := logger.WithComponent("ws")
		log.Warn().Str("key", key).Msg("broadcast buffer full, event dropped")
	}
}

func (h *Hub) Run() {
	log := logger.WithComponent("ws")
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			log.Debug().Msg("client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
