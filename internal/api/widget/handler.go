package widget

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/service"
	"github.com/liliang-cn/chatspark/internal/speech"
)

// Handler handles widget API requests
type Handler struct {
	chat        *service.ChatService
	store       *service.SessionStore
	catalog     *service.ModelCatalog
	metrics     *service.MetricsService
	caps        speech.Capabilities
	transcriber speech.Transcriber
}

// NewHandler creates a new widget handler
func NewHandler(
	chat *service.ChatService,
	store *service.SessionStore,
	catalog *service.ModelCatalog,
	metrics *service.MetricsService,
	caps speech.Capabilities,
	transcriber speech.Transcriber,
) *Handler {
	return &Handler{
		chat:        chat,
		store:       store,
		catalog:     catalog,
		metrics:     metrics,
		caps:        caps,
		transcriber: transcriber,
	}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/widget/config", h.GetConfig)
	r.POST("/chat", h.Chat)
	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions/new", h.NewSession)
	r.POST("/sessions/:id/load", h.LoadSession)
	r.DELETE("/sessions/:id", h.DeleteSession)
	r.GET("/ai-models", h.ListModels)
	r.GET("/analytics/overview", h.Overview)
	r.GET("/analytics/session", h.SessionAnalytics)
	r.POST("/analytics/track", h.TrackEvent)
	r.GET("/transcript", h.Transcript)
	r.POST("/speech/transcribe", h.Transcribe)
}

// SessionSummary is the list representation of a stored session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
	Active       bool      `json:"active"`
}

// GetConfig returns the widget bootstrap configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	settings := h.chat.Settings()
	c.JSON(http.StatusOK, gin.H{
		"welcome_message": h.store.Active().Messages[0].Text,
		"placeholder":     "Type your message...",
		"personality":     settings.Personality,
		"defensive_mode":  settings.Defensive,
		"default_model":   h.catalog.DefaultID(),
		"max_retries":     h.chat.MaxRetries(),
		"speech":          h.caps,
	})
}

// Chat runs one conversation turn on the active session.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chat.Send(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSessions returns the recent session collection, most recent first.
func (h *Handler) ListSessions(c *gin.Context) {
	activeID := h.store.ActiveID()
	sessions := h.store.Recent()
	summaries := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		summaries[i] = SessionSummary{
			ID:           s.ID,
			Title:        s.Title,
			MessageCount: len(s.Messages),
			CreatedAt:    s.CreatedAt,
			LastModified: s.LastModified,
			Active:       s.ID == activeID,
		}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries, "active_id": activeID})
}

// NewSession starts a fresh active session.
func (h *Handler) NewSession(c *gin.Context) {
	h.chat.StartNew()
	c.JSON(http.StatusOK, h.store.Active())
}

// LoadSession switches the active session to a stored one.
func (h *Handler) LoadSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.chat.Load(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.store.Active())
}

// DeleteSession removes a stored session.
func (h *Handler) DeleteSession(c *gin.Context) {
	h.chat.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"active_id": h.store.ActiveID()})
}

// ListModels returns the model catalog.
func (h *Handler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.catalog.List()})
}

// Overview returns the aggregate service counters.
func (h *Handler) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Overview())
}

// SessionAnalytics returns the active session's analytics snapshot.
func (h *Handler) SessionAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// trackRequest is the body of a telemetry event.
type trackRequest struct {
	Event string         `json:"event" binding:"required"`
	Data  map[string]any `json:"data,omitempty"`
}

// TrackEvent sinks a fire-and-forget telemetry event.
func (h *Handler) TrackEvent(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.metrics.Track(c.Request.Context(), req.Event, req.Data)
	c.Status(http.StatusNoContent)
}

// Transcript returns the active session as plain text.
func (h *Handler) Transcript(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=chat-transcript.txt")
	c.String(http.StatusOK, h.store.Transcript())
}

// Transcribe converts uploaded audio to text when the capability exists.
func (h *Handler) Transcribe(c *gin.Context) {
	if !h.caps.Input || h.transcriber == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "speech input is not available"})
		return
	}

	audio, err := io.ReadAll(c.Request.Body)
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty audio payload"})
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), audio)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupported) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "speech input is not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
