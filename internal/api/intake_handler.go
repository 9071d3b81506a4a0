package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"postureai/app"
	"postureai/domain/intake"
	"postureai/internal"
	"postureai/ports"
)

// IntakeHandler serves the discovery questionnaire recommendation flow
type IntakeHandler struct {
	intake   *app.IntakeService
	sessions ports.IntakeRepository
	log      *internal.Logger
}

// NewIntakeHandler creates an intake handler
func NewIntakeHandler(intakeService *app.IntakeService, sessions ports.IntakeRepository, log *internal.Logger) *IntakeHandler {
	return &IntakeHandler{
		intake:   intakeService,
		sessions: sessions,
		log:      log.Component("IntakeHandler"),
	}
}

type recommendRequest struct {
	Answers intake.Answers `json:"answers" binding:"required"`
	UserID  string         `json:"user_id"`
}

// Recommend maps intake answers to a recommended section set
func (h *IntakeHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		userID = &parsed
	}

	result, err := h.intake.Recommend(c.Request.Context(), req.Answers, userID)
	if err != nil {
		h.log.Error("intake recommendation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSession returns one stored intake session
func (h *IntakeHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions returns recent intake sessions, newest first
func (h *IntakeHandler) ListSessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	sessions, err := h.sessions.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to list intake sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
