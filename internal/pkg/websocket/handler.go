package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
)

// StatsProvider supplies the snapshot sent when a dashboard connects
type StatsProvider interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// Handler upgrades staff requests to the live dashboard feed
type Handler struct {
	hub    *Hub
	stats  StatsProvider
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, stats StatsProvider, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		stats:  stats,
		logger: logger.With().Str("component", "dashboard_ws").Logger(),
	}
}

// HandleConnection godoc
// @Summary Live dashboard feed
// @Description Upgrades to a WebSocket that first sends a stats snapshot, then one message per admission event
// @Tags dashboard
// @Security BearerAuth
// @Param token query string false "Access token when the Authorization header cannot be set"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	identityID := c.GetString("identityID")
	role, _ := c.Get("role")
	staffRole, _ := role.(models.Role)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("identityID", identityID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		identityID: identityID,
		role:       staffRole,
		logger:     h.logger,
	}

	// queue the snapshot before registering so it is the first frame
	if snapshot := h.snapshot(c.Request.Context()); snapshot != nil {
		client.send <- snapshot
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) snapshot(ctx context.Context) []byte {
	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load stats snapshot")
		return nil
	}
	data, err := json.Marshal(Message{
		Type:      MessageTypeSnapshot,
		Stats:     stats,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil
	}
	return data
}
