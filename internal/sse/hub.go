package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventImportStarted   EventType = "import.started"
	EventImportCompleted EventType = "import.completed"
	EventImportFailed    EventType = "import.failed"
)

// ImportEvent is the payload streamed to the clients of one company.
type ImportEvent struct {
	Event          EventType `json:"event"`
	CompanyID      string    `json:"companyId"`
	UserID         int       `json:"userId"`
	Source         string    `json:"source"`
	Rows           int       `json:"rows"`
	Created        int       `json:"created"`
	InvalidCount   int       `json:"invalidCount"`
	DuplicateCount int       `json:"duplicateCount"`
	NewCategories  []string  `json:"newCategories,omitempty"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Client represents a connected SSE client.
type Client struct {
	ID        string
	CompanyID string
	Events    chan []byte
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client of the company and returns it for streaming.
func (h *Hub) Register(clientID, companyID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:        clientID,
		CompanyID: companyID,
		Events:    make(chan []byte, 64),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("company_id", companyID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to the clients of the event's company.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Broadcast(event *ImportEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.CompanyID != event.CompanyID {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
