package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/service"
)

// CoachHandler holds the coach service dependency.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- DTOs for API (Data Transfer Objects) ---

// RegisterCoachRequest defines the expected JSON for registering a coach.
type RegisterCoachRequest struct {
	TelegramID string  `json:"telegram_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Username   *string `json:"username"`
}

// CoachResponse is the DTO for returning coach details.
type CoachResponse struct {
	ID         int64     `json:"id"`
	TelegramID string    `json:"telegram_id"`
	Name       string    `json:"name"`
	Username   *string   `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapCoachToResponse converts a domain.Coach to CoachResponse DTO.
func MapCoachToResponse(coach *domain.Coach) CoachResponse {
	if coach == nil {
		return CoachResponse{}
	}
	return CoachResponse{
		ID:         coach.ID,
		TelegramID: coach.TelegramID,
		Name:       coach.Name,
		Username:   coach.Username,
		CreatedAt:  coach.CreatedAt,
		UpdatedAt:  coach.UpdatedAt,
	}
}

// --- Handler Methods ---

// RegisterCoach handles POST /coaches. Registration is create-or-get: an
// already-registered identity key returns the existing coach with 200, a new
// one is created and returned with 201.
func (h *CoachHandler) RegisterCoach(c *gin.Context) {
	var req RegisterCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coach, created, err := h.coachService.RegisterCoach(c.Request.Context(), req.TelegramID, req.Name, req.Username)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to register coach.")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, MapCoachToResponse(coach))
}

// Me handles GET /me: the coach resolved by the identity middleware.
func (h *CoachHandler) Me(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}
	c.JSON(http.StatusOK, MapCoachToResponse(coach))
}

// Stats handles GET /stats for the authenticated coach.
func (h *CoachHandler) Stats(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}

	report, err := h.coachService.Stats(c.Request.Context(), coach.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute statistics.")
		return
	}
	c.JSON(http.StatusOK, report)
}
