package api

import (
	"errors"
	"log"
	"net/http"

	"detectorbot/relay/internal/repository"
	"detectorbot/relay/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoryHandler exposes detection history reads.
type HistoryHandler struct {
	history service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/history: records visible to the caller, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	principal := principalFromContext(c, c.Query("session_id"))

	records, err := h.history.ListFor(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrSessionRequired) {
			errorResponse(c, http.StatusBadRequest, "session_required",
				"Session not found. Please provide session_id or authentication token.")
			return
		}
		log.Printf("ERROR: History listing failed: %v", err)
		errorResponse(c, http.StatusInternalServerError, "internal", "Failed to fetch history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "count": len(records)})
}

// GetOne handles GET /api/history/:id.
func (h *HistoryHandler) GetOne(c *gin.Context) {
	principal := principalFromContext(c, c.Query("session_id"))

	record, err := h.history.GetOne(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			errorResponse(c, http.StatusNotFound, "not_found", "Record not found")
		case errors.Is(err, service.ErrUnauthorized):
			errorResponse(c, http.StatusForbidden, "unauthorized", "Unauthorized access")
		default:
			log.Printf("ERROR: History lookup failed: %v", err)
			errorResponse(c, http.StatusInternalServerError, "internal", "Failed to fetch record")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}
