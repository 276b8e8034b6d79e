package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/service"
)

// ClientHandler holds the coach service dependency for client management.
type ClientHandler struct {
	coachService service.CoachService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(coachService service.CoachService) *ClientHandler {
	return &ClientHandler{coachService: coachService}
}

// --- DTOs ---

// CreateClientRequest defines the expected JSON for adding a client.
type CreateClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	TelegramID  *string `json:"telegram_id"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
	FitnessGoal *string `json:"fitness_goal"`
}

// UpdateClientRequest carries the optional fields of a partial update.
// Absent fields stay untouched.
type UpdateClientRequest struct {
	Name        *string `json:"name"`
	TelegramID  *string `json:"telegram_id"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
	FitnessGoal *string `json:"fitness_goal"`
}

// ClientResponse is the DTO for returning client details.
type ClientResponse struct {
	ID          int64     `json:"id"`
	CoachID     *int64    `json:"coach_id,omitempty"`
	Name        string    `json:"name"`
	TelegramID  *string   `json:"telegram_id,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	FitnessGoal *string   `json:"fitness_goal,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapClientToResponse converts a domain.Client to ClientResponse DTO.
func MapClientToResponse(client *domain.Client) ClientResponse {
	if client == nil {
		return ClientResponse{}
	}
	return ClientResponse{
		ID:          client.ID,
		CoachID:     client.CoachID,
		Name:        client.Name,
		TelegramID:  client.TelegramID,
		Phone:       client.Phone,
		Notes:       client.Notes,
		FitnessGoal: client.FitnessGoal,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

// MapClientsToResponse converts a slice of domain.Client to DTOs.
func MapClientsToResponse(clients []domain.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = MapClientToResponse(&clients[i])
	}
	return responses
}

func clientIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid client id.")
		return 0, false
	}
	return id, true
}

// --- Handler Methods ---

// CreateClient handles POST /clients for the authenticated coach.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	client, err := h.coachService.AddClient(c.Request.Context(), domain.NewClient{
		CoachID:     coach.ID,
		Name:        req.Name,
		TelegramID:  req.TelegramID,
		Phone:       req.Phone,
		Notes:       req.Notes,
		FitnessGoal: req.FitnessGoal,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create client.")
		return
	}

	c.JSON(http.StatusCreated, MapClientToResponse(client))
}

// GetClients handles GET /clients: every client of the authenticated coach,
// newest first.
func (h *ClientHandler) GetClients(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}

	clients, err := h.coachService.Clients(c.Request.Context(), coach.ID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}
	c.JSON(http.StatusOK, MapClientsToResponse(clients))
}

// GetClient handles GET /clients/:id.
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	client, err := h.coachService.Client(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, "Client not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve client.")
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// UpdateClient handles PATCH /clients/:id. Only supplied fields change; an
// empty body is accepted and changes nothing.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.coachService.UpdateClient(c.Request.Context(), id, domain.ClientUpdate{
		Name:        req.Name,
		TelegramID:  req.TelegramID,
		Phone:       req.Phone,
		Notes:       req.Notes,
		FitnessGoal: req.FitnessGoal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, "Client not found.")
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update client.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteClient handles DELETE /clients/:id.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	if err := h.coachService.RemoveClient(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, "Client not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete client.")
		return
	}
	c.Status(http.StatusNoContent)
}
