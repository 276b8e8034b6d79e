package supabase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

func seedWorkout(g *fakeGateway, coachID any, clientID int64, date, status string) int64 {
	return g.seed("workouts", row{
		"coach_id":   coachID,
		"client_id":  clientID,
		"date":       date,
		"exercises":  []any{},
		"status":     status,
		"created_at": date,
		"updated_at": date,
	})
}

func TestCreateWorkoutDefaults(t *testing.T) {
	st, g := newTestStore(t)
	client := seedClient(g, "Ivan", int64(1), stamp(0))

	id, err := st.CreateWorkout(context.Background(), domain.NewWorkout{
		CoachID:  1,
		ClientID: client,
		Date:     time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	w, err := st.GetWorkout(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanned, w.Status)
	assert.NotNil(t, w.Exercises, "nil exercise list is stored as an empty one")
	assert.Empty(t, w.Exercises)
	assert.Equal(t, "Ivan", w.ClientName)
}

func TestCreateWorkoutKeepsExerciseOrder(t *testing.T) {
	st, _ := newTestStore(t)

	exercises := domain.ExerciseList{
		{"name": "Squat", "sets": 5.0, "reps": 5.0},
		{"name": "Plank", "duration": "60s"},
	}
	id, err := st.CreateWorkout(context.Background(), domain.NewWorkout{
		CoachID:   1,
		ClientID:  1,
		Date:      time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		Exercises: exercises,
	})
	require.NoError(t, err)

	w, err := st.GetWorkout(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, w.Exercises, 2)
	assert.Equal(t, "Squat", w.Exercises[0]["name"])
	assert.Equal(t, "Plank", w.Exercises[1]["name"])
}

func TestGetWorkoutsForCoachUnionsOwnershipPaths(t *testing.T) {
	st, g := newTestStore(t)

	mine := seedClient(g, "Ivan", int64(1), stamp(0))
	theirs := seedClient(g, "Stranger", int64(2), stamp(1))

	direct := seedWorkout(g, int64(1), mine, stamp(10), domain.StatusPlanned)
	viaClient := seedWorkout(g, nil, mine, stamp(20), domain.StatusPlanned)
	bothPaths := seedWorkout(g, int64(1), mine, stamp(30), domain.StatusCompleted)
	seedWorkout(g, int64(2), theirs, stamp(40), domain.StatusPlanned)

	workouts, err := st.GetWorkoutsForCoach(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, workouts, 3, "union must not duplicate workouts owned both ways")

	ids := []int64{workouts[0].ID, workouts[1].ID, workouts[2].ID}
	assert.Equal(t, []int64{bothPaths, viaClient, direct}, ids, "most recently scheduled first")
	for _, w := range workouts {
		assert.Equal(t, "Ivan", w.ClientName)
	}
}

func TestGetWorkoutsForCoachHonorsLimit(t *testing.T) {
	st, g := newTestStore(t)
	client := seedClient(g, "Ivan", int64(1), stamp(0))
	seedWorkout(g, int64(1), client, stamp(10), domain.StatusPlanned)
	second := seedWorkout(g, int64(1), client, stamp(20), domain.StatusPlanned)
	third := seedWorkout(g, int64(1), client, stamp(30), domain.StatusPlanned)

	workouts, err := st.GetWorkoutsForCoach(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, third, workouts[0].ID)
	assert.Equal(t, second, workouts[1].ID)
}

func TestGetWorkoutNotFound(t *testing.T) {
	st, _ := newTestStore(t)
	_, err := st.GetWorkout(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateWorkoutStatus(t *testing.T) {
	st, g := newTestStore(t)
	client := seedClient(g, "Ivan", int64(1), stamp(0))
	id := seedWorkout(g, int64(1), client, stamp(10), domain.StatusPlanned)

	err := st.UpdateWorkoutStatus(context.Background(), id, domain.StatusCompleted, strPtr("good session"))
	require.NoError(t, err)

	w, err := st.GetWorkout(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, w.IsCompleted())
	require.NotNil(t, w.Notes)
	assert.Equal(t, "good session", *w.Notes)
}

func TestUpdateWorkoutStatusMissingRowNotFound(t *testing.T) {
	st, _ := newTestStore(t)

	err := st.UpdateWorkoutStatus(context.Background(), 42, domain.StatusCompleted, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateWorkoutStatusWithoutNotes(t *testing.T) {
	st, g := newTestStore(t)
	client := seedClient(g, "Ivan", int64(1), stamp(0))
	id := seedWorkout(g, int64(1), client, stamp(10), domain.StatusPlanned)

	require.NoError(t, st.UpdateWorkoutStatus(context.Background(), id, domain.StatusCompleted, nil))

	w, err := st.GetWorkout(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, w.Status)
	assert.Nil(t, w.Notes, "notes stay untouched when not supplied")
}
