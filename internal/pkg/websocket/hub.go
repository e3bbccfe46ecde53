package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
)

// Message types sent to dashboard clients
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeEvent    = "event"
)

// Message is the JSON frame written to dashboard clients
type Message struct {
	Type      string                 `json:"type"`
	Event     *models.AdmissionEvent `json:"event,omitempty"`
	Stats     *models.Stats          `json:"stats,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub fans admission events out to connected staff dashboards
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// clientCount mirrors len(clients) for readers outside Run
	mu          sync.RWMutex
	clientCount int

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "dashboard_hub").Logger(),
	}
}

// Run handles registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case data := <-h.broadcast:
			h.broadcastMessage(data)
		case <-h.done:
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return
		}
	}
}

// Stop ends Run and disconnects every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.setCount(len(h.clients))

	h.logger.Info().
		Str("identityID", client.identityID).
		Str("role", string(client.role)).
		Msg("Dashboard client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))

	h.logger.Info().
		Str("identityID", client.identityID).
		Msg("Dashboard client unregistered")
}

func (h *Hub) broadcastMessage(data []byte) {
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	// dropped after the loop so the map is not mutated while ranging
	for _, client := range slow {
		h.logger.Warn().Str("identityID", client.identityID).Msg("Dropping slow dashboard client")
		h.unregisterClient(client)
	}
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.clientCount = n
	h.mu.Unlock()
}

// ClientsCount returns the number of connected dashboards
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// Publish queues an admission event for every dashboard. It never blocks:
// when the queue is full the event is dropped and logged.
func (h *Hub) Publish(event models.AdmissionEvent) {
	data, err := json.Marshal(Message{
		Type:      MessageTypeEvent,
		Event:     &event,
		Stats:     event.Stats,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("eventType", string(event.Type)).Msg("Failed to marshal admission event")
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- data:
	default:
		h.logger.Warn().Str("eventType", string(event.Type)).Msg("Broadcast queue full, event dropped")
	}
}
