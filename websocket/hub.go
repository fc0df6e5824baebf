package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type outbound struct {
	userID  uuid.UUID
	payload interface{}
}

// Hub keeps one live connection per user and pushes events to it. All map
// access happens on the Run goroutine except Connected.
type Hub struct {
	clients    map[uuid.UUID]Conn
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	send       chan outbound
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan outbound, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// SendToUser queues payload for userID. It never blocks; when the queue is
// full the event is dropped.
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) {
	select {
	case h.send <- outbound{userID: userID, payload: payload}:
	default:
		log.Printf("⚠️ Websocket queue full, dropping event for %s", userID)
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Stop ends Run and closes every connection.
func (h *Hub) Stop() { close(h.done) }

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("Client registered: %s", client.UserID)
			h.clientsMu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client.Conn {
				_ = old.Close()
			}
			h.clients[client.UserID] = client.Conn
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.clientsMu.Unlock()
		case msg := <-h.send:
			h.clientsMu.RLock()
			conn, ok := h.clients[msg.userID]
			h.clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(msg.payload); err != nil {
				log.Printf("Error sending event to client %s: %v", msg.userID, err)
				_ = conn.Close()
				h.clientsMu.Lock()
				if cur, ok := h.clients[msg.userID]; ok && cur == conn {
					delete(h.clients, msg.userID)
				}
				h.clientsMu.Unlock()
			}
		case <-h.done:
			h.clientsMu.Lock()
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}
