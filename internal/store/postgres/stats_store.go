package postgres

import (
	"context"
	"log"

	"mkurbatov/coach-assistant/internal/domain"
)

// Count queries cover both ownership expressions, mirroring the list reads.
const (
	clientsCountQuery = `
		SELECT COUNT(*) FROM clients
		WHERE coach_id = $1 OR id IN (
			SELECT client_id FROM trainer_client WHERE trainer_id = $1
		)`

	workoutsCountQuery = `
		SELECT COUNT(*) FROM workouts
		WHERE coach_id = $1 OR client_id IN (
			SELECT client_id FROM trainer_client WHERE trainer_id = $1
		)`

	completedCountQuery = `
		SELECT COUNT(*) FROM workouts
		WHERE (coach_id = $1 OR client_id IN (
			SELECT client_id FROM trainer_client WHERE trainer_id = $1
		)) AND status = 'completed'`
)

func (s *Store) countFor(ctx context.Context, query string, coachID int64) (int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var count int64
	if err := s.pool.QueryRow(ctx, query, coachID).Scan(&count); err != nil {
		return 0, err
	}
	return int(count), nil
}

// GetStatsForCoach computes the dashboard aggregate from three independent
// counts. Any query failure zeroes the whole aggregate; the failure is logged
// so operators can tell "no data" from "query failed".
func (s *Store) GetStatsForCoach(ctx context.Context, coachID int64) (domain.Stats, error) {
	var stats domain.Stats
	var err error

	if stats.ClientsCount, err = s.countFor(ctx, clientsCountQuery, coachID); err == nil {
		if stats.WorkoutsCount, err = s.countFor(ctx, workoutsCountQuery, coachID); err == nil {
			stats.CompletedWorkouts, err = s.countFor(ctx, completedCountQuery, coachID)
		}
	}
	if err != nil {
		log.Printf("ERROR: stats query failed for coach %d: %v", coachID, err)
		return domain.Stats{}, nil
	}

	return stats, nil
}
