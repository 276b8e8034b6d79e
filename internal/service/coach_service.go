package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrCoachNotFound    = errors.New("coach not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrWorkoutNotFound  = errors.New("workout not found")
)

// StatsReport is the dashboard aggregate enriched with the completion rate
// both the bot and the web app display.
type StatsReport struct {
	domain.Stats
	CompletionRate float64 `json:"completion_rate"`
}

// CoachService exposes the use cases the bot and web layers perform. All
// data access goes through the store contract; the service adds validation,
// defaults and derived values.
type CoachService interface {
	// RegisterCoach resolves the external identity key to a coach, creating
	// one when none exists. Calling it twice with the same key yields the
	// same coach. The second return reports whether a new record was made.
	RegisterCoach(ctx context.Context, telegramID, name string, username *string) (*domain.Coach, bool, error)
	CoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error)

	AddClient(ctx context.Context, nc domain.NewClient) (*domain.Client, error)
	Clients(ctx context.Context, coachID int64) ([]domain.Client, error)
	Client(ctx context.Context, id int64) (*domain.Client, error)
	UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error
	RemoveClient(ctx context.Context, id int64) error

	// ScheduleWorkout creates a planned workout; a zero date defaults to
	// tomorrow at the same time, matching the bot's quick-create flow.
	ScheduleWorkout(ctx context.Context, nw domain.NewWorkout) (*domain.Workout, error)
	Workouts(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error)
	Workout(ctx context.Context, id int64) (*domain.Workout, error)
	UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error
	CompleteWorkout(ctx context.Context, id int64) error

	Stats(ctx context.Context, coachID int64) (StatsReport, error)
}

type coachService struct {
	store store.Store
}

// NewCoachService creates a CoachService on top of the selected store.
func NewCoachService(st store.Store) CoachService {
	return &coachService{store: st}
}

const minNameLength = 2

func validName(name string) bool {
	return len(strings.TrimSpace(name)) >= minNameLength
}

// === Coaches ===

func (s *coachService) RegisterCoach(ctx context.Context, telegramID, name string, username *string) (*domain.Coach, bool, error) {
	if telegramID == "" {
		return nil, false, fmt.Errorf("%w: telegram id is required", ErrValidationFailed)
	}

	coach, err := s.store.GetCoachByTelegramID(ctx, telegramID)
	if err == nil {
		return coach, false, nil
	}
	if !store.IsNotFound(err) {
		return nil, false, err
	}

	if !validName(name) {
		return nil, false, fmt.Errorf("%w: coach name must be at least %d characters", ErrValidationFailed, minNameLength)
	}

	id, err := s.store.CreateCoach(ctx, telegramID, strings.TrimSpace(name), username)
	if err != nil {
		return nil, false, err
	}
	log.Printf("New coach registered: %s (ID: %d)", name, id)

	coach, err = s.store.GetCoach(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return coach, true, nil
}

func (s *coachService) CoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error) {
	coach, err := s.store.GetCoachByTelegramID(ctx, telegramID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

// === Clients ===

func (s *coachService) AddClient(ctx context.Context, nc domain.NewClient) (*domain.Client, error) {
	if nc.CoachID == 0 {
		return nil, fmt.Errorf("%w: coach id is required", ErrValidationFailed)
	}
	if !validName(nc.Name) {
		return nil, fmt.Errorf("%w: client name must be at least %d characters", ErrValidationFailed, minNameLength)
	}
	nc.Name = strings.TrimSpace(nc.Name)

	id, err := s.store.CreateClient(ctx, nc)
	if err != nil {
		return nil, err
	}

	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *coachService) Clients(ctx context.Context, coachID int64) ([]domain.Client, error) {
	return s.store.GetClientsForCoach(ctx, coachID)
}

func (s *coachService) Client(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *coachService) UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error {
	if upd.Name != nil && !validName(*upd.Name) {
		return fmt.Errorf("%w: client name must be at least %d characters", ErrValidationFailed, minNameLength)
	}

	err := s.store.UpdateClient(ctx, id, upd)
	if store.IsNotFound(err) {
		return ErrClientNotFound
	}
	return err
}

func (s *coachService) RemoveClient(ctx context.Context, id int64) error {
	// Verify existence first so callers get a clean not-found instead of a
	// silent no-op delete.
	if _, err := s.store.GetClient(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return ErrClientNotFound
		}
		return err
	}
	return s.store.DeleteClient(ctx, id)
}

// === Workouts ===

func (s *coachService) ScheduleWorkout(ctx context.Context, nw domain.NewWorkout) (*domain.Workout, error) {
	if nw.CoachID == 0 || nw.ClientID == 0 {
		return nil, fmt.Errorf("%w: coach id and client id are required", ErrValidationFailed)
	}

	// The bot's quick-create schedules for tomorrow when no date is given.
	if nw.Date.IsZero() {
		nw.Date = time.Now().Add(24 * time.Hour)
	}
	if nw.Exercises == nil {
		nw.Exercises = domain.ExerciseList{}
	}

	id, err := s.store.CreateWorkout(ctx, nw)
	if err != nil {
		return nil, err
	}

	workout, err := s.store.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *coachService) Workouts(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error) {
	return s.store.GetWorkoutsForCoach(ctx, coachID, store.NormalizeLimit(limit))
}

func (s *coachService) Workout(ctx context.Context, id int64) (*domain.Workout, error) {
	workout, err := s.store.GetWorkout(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *coachService) UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", ErrValidationFailed)
	}

	err := s.store.UpdateWorkoutStatus(ctx, id, status, notes)
	if store.IsNotFound(err) {
		return ErrWorkoutNotFound
	}
	return err
}

func (s *coachService) CompleteWorkout(ctx context.Context, id int64) error {
	return s.UpdateWorkoutStatus(ctx, id, domain.StatusCompleted, nil)
}

// === Stats ===

func (s *coachService) Stats(ctx context.Context, coachID int64) (StatsReport, error) {
	stats, err := s.store.GetStatsForCoach(ctx, coachID)
	if err != nil {
		return StatsReport{}, err
	}
	return StatsReport{
		Stats:          stats,
		CompletionRate: stats.CompletionRate(),
	}, nil
}
