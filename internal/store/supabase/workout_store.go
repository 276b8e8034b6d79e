package supabase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

// CreateWorkout inserts a workout with status "planned". The generated id
// comes back in the returned representation.
func (s *Store) CreateWorkout(ctx context.Context, nw domain.NewWorkout) (int64, error) {
	exercises := nw.Exercises
	if exercises == nil {
		exercises = domain.ExerciseList{}
	}

	body := map[string]any{
		"coach_id":     nw.CoachID,
		"client_id":    nw.ClientID,
		"date":         nw.Date.UTC(),
		"exercises":    exercises,
		"notes":        nw.Notes,
		"workout_type": nw.WorkoutType,
		"status":       domain.StatusPlanned,
		"created_at":   nowStamp(),
		"updated_at":   nowStamp(),
	}

	var inserted []domain.Workout
	if err := s.insert(ctx, "/workouts", body, &inserted); err != nil {
		return 0, fmt.Errorf("create workout: %w", err)
	}
	if len(inserted) == 0 {
		return 0, fmt.Errorf("create workout: gateway returned no representation")
	}
	return inserted[0].ID, nil
}

// annotateClientNames fills the ClientName annotation, batching one lookup
// for any client ids the provided map does not cover.
func (s *Store) annotateClientNames(ctx context.Context, workouts []domain.Workout, names map[int64]string) {
	var missing []int64
	for _, w := range workouts {
		if _, ok := names[w.ClientID]; !ok {
			missing = append(missing, w.ClientID)
			names[w.ClientID] = ""
		}
	}
	if len(missing) > 0 {
		clients, err := s.clientsByIDs(ctx, missing)
		if err == nil {
			for _, c := range clients {
				names[c.ID] = c.Name
			}
		}
	}
	for i := range workouts {
		workouts[i].ClientName = names[workouts[i].ClientID]
	}
}

// GetWorkoutsForCoach unions workouts owned directly with workouts reached
// through client ownership, most recently scheduled first, bounded by limit
// and annotated with client names.
func (s *Store) GetWorkoutsForCoach(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error) {
	limit = store.NormalizeLimit(limit)

	q := url.Values{}
	q.Set("coach_id", fmt.Sprintf("eq.%d", coachID))
	q.Set("order", "date.desc")
	q.Set("limit", strconv.Itoa(limit))

	var direct []domain.Workout
	if err := s.fetch(ctx, "/workouts?"+q.Encode(), &direct); err != nil {
		return nil, err
	}

	clients, err := s.GetClientsForCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(clients))
	clientIDs := make([]int64, 0, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
		clientIDs = append(clientIDs, c.ID)
	}

	seen := make(map[int64]bool, len(direct))
	for _, w := range direct {
		seen[w.ID] = true
	}

	workouts := direct
	if len(clientIDs) > 0 {
		rq := url.Values{}
		rq.Set("client_id", inList(clientIDs))
		rq.Set("order", "date.desc")
		rq.Set("limit", strconv.Itoa(limit))

		var related []domain.Workout
		if err := s.fetch(ctx, "/workouts?"+rq.Encode(), &related); err != nil {
			return nil, err
		}
		for _, w := range related {
			if !seen[w.ID] {
				seen[w.ID] = true
				workouts = append(workouts, w)
			}
		}
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Date.After(workouts[j].Date)
	})
	if len(workouts) > limit {
		workouts = workouts[:limit]
	}

	s.annotateClientNames(ctx, workouts, names)
	return workouts, nil
}

// GetWorkout retrieves a workout by id with its client-name annotation.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	var workouts []domain.Workout
	if err := s.fetch(ctx, eq("workouts", "id", id), &workouts); err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, store.ErrNotFound
	}
	w := workouts[0]

	if client, err := s.GetClient(ctx, w.ClientID); err == nil {
		w.ClientName = client.Name
	}
	return &w, nil
}

// UpdateWorkoutStatus PATCHes the status (and notes, when supplied).
func (s *Store) UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error {
	body := map[string]any{
		"status":     status,
		"updated_at": nowStamp(),
	}
	if notes != nil {
		body["notes"] = *notes
	}

	payload, err := s.patch(ctx, eq("workouts", "id", id), body)
	if err != nil {
		return fmt.Errorf("update workout status: %w", err)
	}
	if !hasRows(payload) {
		return store.ErrNotFound
	}
	return nil
}
