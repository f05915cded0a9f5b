package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotel-faq/internal/errors"
	"hotel-faq/internal/hotel"
	"hotel-faq/internal/logger"
	"hotel-faq/internal/pipeline"
	"hotel-faq/internal/session"
	"hotel-faq/internal/utils"
)

// ChatHandler exposes the grounded-answer pipeline over HTTP.
type ChatHandler struct {
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(orchestrator *pipeline.Orchestrator, sessions *session.Store) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, sessions: sessions}
}

// ChatTurn is one prior exchange supplied by the caller.
type ChatTurn struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string     `json:"session_id"`
	Query     string     `json:"query" binding:"required"`
	Hotel     string     `json:"hotel"`
	History   []ChatTurn `json:"history"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	SessionID          string   `json:"session_id"`
	Answer             string   `json:"answer"`
	Sources            []string `json:"sources,omitempty"`
	Hotel              string   `json:"hotel,omitempty"`
	Category           string   `json:"category,omitempty"`
	NeedsClarification bool     `json:"needs_clarification"`
	ClarificationType  string   `json:"clarification_type,omitempty"`
	Options            []string `json:"options,omitempty"`
	EvidencePassed     bool     `json:"evidence_passed"`
	PolicyReason       string   `json:"policy_reason,omitempty"`
	ElapsedMS          int64    `json:"elapsed_ms"`
}

// Chat runs one query through the pipeline and returns the policy-filtered
// answer. A missing or unknown session_id starts a new session.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{
			"code": errors.ErrBadRequest, "message": err.Error(),
		}})
		return
	}

	query, ok := utils.ValidateInput(req.Query)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{
			"code": errors.ErrBadRequest, "message": "query rejected: invalid or unsafe input",
		}})
		return
	}
	req.Query = query

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	sessCtx := h.sessions.GetOrCreate(sessionID)

	history := make([]pipeline.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, pipeline.Turn{Role: t.Role, Content: utils.SanitizeHTML(t.Content)})
	}

	rec := pipeline.NewRecord(req.Query, req.Hotel, history, sessCtx)
	ctx := c.Request.Context()
	rec = h.orchestrator.Run(ctx, rec)

	logger.GetLogger(ctx).Infof("chat session=%s hotel=%s elapsed=%s", sessCtx.SessionID, rec.DetectedHotel, rec.TotalElapsed)

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:          sessCtx.SessionID,
		Answer:             rec.FinalAnswer,
		Sources:            rec.Sources,
		Hotel:              rec.DetectedHotel,
		Category:           rec.DetectedCategory,
		NeedsClarification: rec.NeedsClarification,
		ClarificationType:  rec.ClarificationType,
		Options:            rec.ClarificationOptions,
		EvidencePassed:     rec.EvidencePassed,
		PolicyReason:       rec.PolicyReason,
		ElapsedMS:          rec.TotalElapsed.Milliseconds(),
	})
}

// HotelInfo is one entry in the GET /hotels listing.
type HotelInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	LocationURL string `json:"location_url"`
}

// ListHotels returns the five covered properties.
func (h *ChatHandler) ListHotels(c *gin.Context) {
	out := make([]HotelInfo, 0, len(hotel.Keys))
	for _, key := range hotel.Keys {
		info := hotel.HotelInfo[key]
		out = append(out, HotelInfo{Key: info.Key, Name: info.Name, Phone: info.Phone, LocationURL: info.LocationURL})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}
