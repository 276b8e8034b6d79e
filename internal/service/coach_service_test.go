package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

// memStore is an in-memory store.Store used to exercise the service layer
// without a backend.
type memStore struct {
	coaches  map[int64]*domain.Coach
	clients  map[int64]*domain.Client
	workouts map[int64]*domain.Workout
	nextID   int64

	updateStatusCalls int
}

func newMemStore() *memStore {
	return &memStore{
		coaches:  make(map[int64]*domain.Coach),
		clients:  make(map[int64]*domain.Client),
		workouts: make(map[int64]*domain.Workout),
		nextID:   1,
	}
}

func (m *memStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) Connect(ctx context.Context) error { return nil }
func (m *memStore) Close(ctx context.Context) error   { return nil }
func (m *memStore) Ping(ctx context.Context) error    { return nil }

func (m *memStore) GetCoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error) {
	for _, c := range m.coaches {
		if c.TelegramID == telegramID {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateCoach(ctx context.Context, telegramID, name string, username *string) (int64, error) {
	if existing, err := m.GetCoachByTelegramID(ctx, telegramID); err == nil {
		return existing.ID, nil
	}
	id := m.id()
	m.coaches[id] = &domain.Coach{ID: id, TelegramID: telegramID, Name: name, Username: username}
	return id, nil
}

func (m *memStore) GetCoach(ctx context.Context, id int64) (*domain.Coach, error) {
	if c, ok := m.coaches[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateClient(ctx context.Context, nc domain.NewClient) (int64, error) {
	id := m.id()
	coachID := nc.CoachID
	m.clients[id] = &domain.Client{
		ID:      id,
		CoachID: &coachID,
		Name:    nc.Name,
		Notes:   nc.Notes,
	}
	return id, nil
}

func (m *memStore) GetClientsForCoach(ctx context.Context, coachID int64) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range m.clients {
		if c.CoachID != nil && *c.CoachID == coachID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error {
	c, ok := m.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	return nil
}

func (m *memStore) DeleteClient(ctx context.Context, id int64) error {
	delete(m.clients, id)
	return nil
}

func (m *memStore) CreateWorkout(ctx context.Context, nw domain.NewWorkout) (int64, error) {
	id := m.id()
	coachID := nw.CoachID
	m.workouts[id] = &domain.Workout{
		ID:        id,
		CoachID:   &coachID,
		ClientID:  nw.ClientID,
		Date:      nw.Date,
		Exercises: nw.Exercises,
		Status:    domain.StatusPlanned,
	}
	return id, nil
}

func (m *memStore) GetWorkoutsForCoach(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range m.workouts {
		if w.CoachID != nil && *w.CoachID == coachID {
			out = append(out, *w)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	if w, ok := m.workouts[id]; ok {
		return w, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error {
	m.updateStatusCalls++
	w, ok := m.workouts[id]
	if !ok {
		return store.ErrNotFound
	}
	w.Status = status
	if notes != nil {
		w.Notes = notes
	}
	return nil
}

func (m *memStore) GetStatsForCoach(ctx context.Context, coachID int64) (domain.Stats, error) {
	workouts, _ := m.GetWorkoutsForCoach(ctx, coachID, 1000)
	clients, _ := m.GetClientsForCoach(ctx, coachID)
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

func newTestService() (CoachService, *memStore) {
	m := newMemStore()
	return NewCoachService(m), m
}

func TestRegisterCoachIsIdempotent(t *testing.T) {
	svc, _ := newTestService()

	first, created, err := svc.RegisterCoach(context.Background(), "tg-1", "Maria", nil)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.RegisterCoach(context.Background(), "tg-1", "Someone Else", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Maria", second.Name)
}

func TestRegisterCoachValidation(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.RegisterCoach(context.Background(), "", "Maria", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, _, err = svc.RegisterCoach(context.Background(), "tg-1", " x ", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterCoachTrimsName(t *testing.T) {
	svc, _ := newTestService()

	coach, _, err := svc.RegisterCoach(context.Background(), "tg-1", "  Maria  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Maria", coach.Name)
}

func TestCoachByTelegramIDNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CoachByTelegramID(context.Background(), "tg-none")
	assert.ErrorIs(t, err, ErrCoachNotFound)
}

func TestAddClientValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddClient(context.Background(), domain.NewClient{Name: "Ivan"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.AddClient(context.Background(), domain.NewClient{CoachID: 1, Name: "X"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAddClientReturnsStoredRecord(t *testing.T) {
	svc, _ := newTestService()

	client, err := svc.AddClient(context.Background(), domain.NewClient{CoachID: 1, Name: "  Ivan "})
	require.NoError(t, err)
	assert.Equal(t, "Ivan", client.Name)
	assert.Positive(t, client.ID)
}

func TestUpdateClientRejectsShortName(t *testing.T) {
	svc, m := newTestService()
	id, _ := m.CreateClient(context.Background(), domain.NewClient{CoachID: 1, Name: "Ivan"})

	err := svc.UpdateClient(context.Background(), id, domain.ClientUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateClientNotFound(t *testing.T) {
	svc, _ := newTestService()
	err := svc.UpdateClient(context.Background(), 99, domain.ClientUpdate{Name: strPtr("Ivan")})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestRemoveClientNotFound(t *testing.T) {
	svc, _ := newTestService()
	err := svc.RemoveClient(context.Background(), 99)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestScheduleWorkoutDefaults(t *testing.T) {
	svc, m := newTestService()
	clientID, _ := m.CreateClient(context.Background(), domain.NewClient{CoachID: 1, Name: "Ivan"})

	workout, err := svc.ScheduleWorkout(context.Background(), domain.NewWorkout{
		CoachID:  1,
		ClientID: clientID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanned, workout.Status)
	assert.NotNil(t, workout.Exercises)

	// Quick-create with no date lands roughly a day out.
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), workout.Date, time.Minute)
}

func TestScheduleWorkoutRequiresIDs(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ScheduleWorkout(context.Background(), domain.NewWorkout{ClientID: 1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.ScheduleWorkout(context.Background(), domain.NewWorkout{CoachID: 1})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCompleteWorkout(t *testing.T) {
	svc, m := newTestService()
	id, _ := m.CreateWorkout(context.Background(), domain.NewWorkout{CoachID: 1, ClientID: 1, Date: time.Now()})

	require.NoError(t, svc.CompleteWorkout(context.Background(), id))
	w, err := m.GetWorkout(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, w.IsCompleted())
}

func TestUpdateWorkoutStatusValidation(t *testing.T) {
	svc, m := newTestService()

	err := svc.UpdateWorkoutStatus(context.Background(), 1, "  ", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, m.updateStatusCalls, "blank status never reaches the store")

	err = svc.UpdateWorkoutStatus(context.Background(), 99, domain.StatusCompleted, nil)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestStatsReportCompletionRate(t *testing.T) {
	svc, m := newTestService()
	clientID, _ := m.CreateClient(context.Background(), domain.NewClient{CoachID: 1, Name: "Ivan"})
	for i := 0; i < 4; i++ {
		id, _ := m.CreateWorkout(context.Background(), domain.NewWorkout{CoachID: 1, ClientID: clientID, Date: time.Now()})
		if i < 3 {
			require.NoError(t, m.UpdateWorkoutStatus(context.Background(), id, domain.StatusCompleted, nil))
		}
	}

	report, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ClientsCount)
	assert.Equal(t, 4, report.WorkoutsCount)
	assert.Equal(t, 3, report.CompletedWorkouts)
	assert.InDelta(t, 75.0, report.CompletionRate, 0.01)
}

func strPtr(s string) *string { return &s }
