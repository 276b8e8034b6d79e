package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recognized workout statuses. The column itself is a free-form string, so
// these are display/aggregation hints rather than a closed enum.
const (
	StatusPlanned   = "planned"
	StatusCompleted = "completed"
)

// Exercise is one entry of a workout's exercise list. Entries are schema-free
// records (e.g. {"name": "Squat", "sets": 5, "reps": 5} or
// {"name": "Plank", "duration": "60s"}), so they stay loosely typed.
type Exercise map[string]any

// ExerciseList is the ordered exercise sequence of a workout.
//
// Older rows store the list double-encoded: a JSON string whose content is
// the array, written by a previous client. UnmarshalJSON accepts both shapes
// so reads work across deployments; writes always produce a plain array.
type ExerciseList []Exercise

func (l *ExerciseList) UnmarshalJSON(data []byte) error {
	var entries []Exercise
	if err := json.Unmarshal(data, &entries); err == nil {
		*l = entries
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("exercise list is neither array nor string: %w", err)
	}
	if encoded == "" {
		*l = ExerciseList{}
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &entries); err != nil {
		return fmt.Errorf("decode embedded exercise list: %w", err)
	}
	*l = entries
	return nil
}

// Workout is a scheduled or completed training session.
// ClientName is an annotation filled on reads by joining through the client;
// it is never written back.
type Workout struct {
	ID          int64        `json:"id"`
	CoachID     *int64       `json:"coach_id,omitempty"`
	ClientID    int64        `json:"client_id"`
	Date        time.Time    `json:"date"`
	Exercises   ExerciseList `json:"exercises"`
	Notes       *string      `json:"notes,omitempty"`
	WorkoutType *string      `json:"workout_type,omitempty"`
	Status      string       `json:"status"`
	ClientName  string       `json:"client_name,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsCompleted reports whether the workout counts toward completed stats.
func (w *Workout) IsCompleted() bool {
	return w.Status == StatusCompleted
}

// NewWorkout carries the fields accepted when scheduling a workout.
// A nil Exercises defaults to an empty list; Status always starts as planned.
type NewWorkout struct {
	CoachID     int64
	ClientID    int64
	Date        time.Time
	Exercises   ExerciseList
	Notes       *string
	WorkoutType *string
}
