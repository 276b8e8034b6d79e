package supabase

import (
	"context"
	"log"

	"mkurbatov/coach-assistant/internal/domain"
)

// statsWorkoutBound keeps the client-side count from being capped by the
// default listing limit.
const statsWorkoutBound = 1000

// GetStatsForCoach computes the aggregate client-side from the two list
// reads; the gateway exposes no count endpoint worth depending on. Failures
// zero the aggregate and are logged.
func (s *Store) GetStatsForCoach(ctx context.Context, coachID int64) (domain.Stats, error) {
	clients, err := s.GetClientsForCoach(ctx, coachID)
	if err != nil {
		log.Printf("ERROR: stats client read failed for coach %d: %v", coachID, err)
		return domain.Stats{}, nil
	}

	workouts, err := s.GetWorkoutsForCoach(ctx, coachID, statsWorkoutBound)
	if err != nil {
		log.Printf("ERROR: stats workout read failed for coach %d: %v", coachID, err)
		return domain.Stats{}, nil
	}

	completed := 0
	for _, w := range workouts {
		if w.IsCompleted() {
			completed++
		}
	}

	return domain.Stats{
		ClientsCount:      len(clients),
		WorkoutsCount:     len(workouts),
		CompletedWorkouts: completed,
	}, nil
}
