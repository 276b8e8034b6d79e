package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/service"
)

// WorkoutHandler holds the coach service dependency for workout management.
type WorkoutHandler struct {
	coachService service.CoachService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(coachService service.CoachService) *WorkoutHandler {
	return &WorkoutHandler{coachService: coachService}
}

// --- DTOs ---

// CreateWorkoutRequest defines the expected JSON for scheduling a workout.
// Date may be omitted for the quick-create flow (defaults to tomorrow).
type CreateWorkoutRequest struct {
	ClientID    int64               `json:"client_id" binding:"required"`
	Date        *time.Time          `json:"date"`
	Exercises   domain.ExerciseList `json:"exercises"`
	Notes       *string             `json:"notes"`
	WorkoutType *string             `json:"workout_type"`
}

// UpdateWorkoutStatusRequest carries a status change with optional notes.
type UpdateWorkoutStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// WorkoutResponse is the DTO for returning workout details.
type WorkoutResponse struct {
	ID          int64               `json:"id"`
	CoachID     *int64              `json:"coach_id,omitempty"`
	ClientID    int64               `json:"client_id"`
	ClientName  string              `json:"client_name,omitempty"`
	Date        time.Time           `json:"date"`
	Exercises   domain.ExerciseList `json:"exercises"`
	Notes       *string             `json:"notes,omitempty"`
	WorkoutType *string             `json:"workout_type,omitempty"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	exercises := w.Exercises
	if exercises == nil {
		exercises = domain.ExerciseList{}
	}
	return WorkoutResponse{
		ID:          w.ID,
		CoachID:     w.CoachID,
		ClientID:    w.ClientID,
		ClientName:  w.ClientName,
		Date:        w.Date,
		Exercises:   exercises,
		Notes:       w.Notes,
		WorkoutType: w.WorkoutType,
		Status:      w.Status,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of domain.Workout to DTOs.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func workoutIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid workout id.")
		return 0, false
	}
	return id, true
}

// --- Handler Methods ---

// CreateWorkout handles POST /workouts for the authenticated coach.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}

	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	nw := domain.NewWorkout{
		CoachID:     coach.ID,
		ClientID:    req.ClientID,
		Exercises:   req.Exercises,
		Notes:       req.Notes,
		WorkoutType: req.WorkoutType,
	}
	if req.Date != nil {
		nw.Date = *req.Date
	}

	workout, err := h.coachService.ScheduleWorkout(c.Request.Context(), nw)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkouts handles GET /workouts?limit=N, most recently scheduled first.
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	coach, err := getCoachFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get coach from context")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid limit.")
			return
		}
	}

	workouts, err := h.coachService.Workouts(c.Request.Context(), coach.ID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout handles GET /workouts/:id.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := workoutIDParam(c)
	if !ok {
		return
	}

	workout, err := h.coachService.Workout(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkoutStatus handles PATCH /workouts/:id/status.
func (h *WorkoutHandler) UpdateWorkoutStatus(c *gin.Context) {
	id, ok := workoutIDParam(c)
	if !ok {
		return
	}

	var req UpdateWorkoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.coachService.UpdateWorkoutStatus(c.Request.Context(), id, req.Status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found.")
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
