package domain

// Stats is the per-coach aggregate shown on the dashboard. It is derived on
// every request from current row counts and never persisted.
type Stats struct {
	ClientsCount      int `json:"clients_count"`
	WorkoutsCount     int `json:"workouts_count"`
	CompletedWorkouts int `json:"completed_workouts"`
}

// CompletionRate returns the completed share as a percentage, guarding the
// zero-workout case.
func (s Stats) CompletionRate() float64 {
	if s.WorkoutsCount == 0 {
		return 0
	}
	return float64(s.CompletedWorkouts) / float64(s.WorkoutsCount) * 100
}
