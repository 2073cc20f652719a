package websocket

import (
	"encoding/json"
	"sync"
)

// ImportUpdate is pushed to a user's sockets when a statement import
// finishes.
type ImportUpdate struct {
	ImportID string `json:"import_id"`
	FileName string `json:"file_name"`
	Created  int    `json:"created"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) BroadcastImport(userID string, update ImportUpdate) {
	payload, _ := json.Marshal(map[string]any{
		"event": "import_completed",
		"data":  update,
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
