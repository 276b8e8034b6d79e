package store

import (
	"context"
	"errors"
	"log"

	"mkurbatov/coach-assistant/internal/config"
	"mkurbatov/coach-assistant/internal/domain"
)

// Error constants for the store layer.
var (
	ErrNotFound      = StoreError("not found")
	ErrNotConfigured = StoreError("no storage backend configured")
)

// StoreError helps distinguish store errors from everything else.
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// DefaultWorkoutLimit bounds workout listings when the caller passes no limit.
const DefaultWorkoutLimit = 50

// Store is the single data-access contract the bot and web layers consume.
// Two implementations exist: a pooled PostgreSQL store and a Supabase-style
// REST gateway. Callers never branch on which one they got; the behavioral
// contract is identical.
//
// Lookups that find nothing return ErrNotFound, not an error value callers
// have to parse. Mutations propagate failures except where a method
// documents otherwise (coach create-or-get, stats).
type Store interface {
	// Connect establishes the backend resource (connection pool; no-op for
	// the REST gateway). Close releases it and is safe to call even when
	// Connect was never attempted or failed.
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	// Ping is the liveness probe used by the health endpoint.
	Ping(ctx context.Context) error

	// GetCoachByTelegramID looks a coach up by the external identity key.
	GetCoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error)

	// CreateCoach inserts a coach and returns the new id. If a coach with
	// the same telegram id already exists, the existing id is returned
	// instead of an error (create-or-get).
	CreateCoach(ctx context.Context, telegramID, name string, username *string) (int64, error)

	GetCoach(ctx context.Context, id int64) (*domain.Coach, error)

	// CreateClient inserts the client row with the direct coach column set
	// and best-effort records the trainer_client relation; a failed relation
	// write never fails the create.
	CreateClient(ctx context.Context, nc domain.NewClient) (int64, error)

	// GetClientsForCoach returns clients owned through either ownership
	// expression, newest first, without duplicates.
	GetClientsForCoach(ctx context.Context, coachID int64) ([]domain.Client, error)

	GetClient(ctx context.Context, id int64) (*domain.Client, error)

	// UpdateClient applies the non-nil fields of upd. An empty update is a
	// no-op and issues no query.
	UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error

	// DeleteClient removes relation rows first, then the client row.
	DeleteClient(ctx context.Context, id int64) error

	// CreateWorkout inserts a workout with status "planned". A nil exercise
	// list is stored as an empty one.
	CreateWorkout(ctx context.Context, nw domain.NewWorkout) (int64, error)

	// GetWorkoutsForCoach returns up to limit workouts owned by the coach
	// (directly or through client ownership), most recently scheduled first,
	// each annotated with its client's name. limit <= 0 means the default.
	GetWorkoutsForCoach(ctx context.Context, coachID int64, limit int) ([]domain.Workout, error)

	GetWorkout(ctx context.Context, id int64) (*domain.Workout, error)

	// UpdateWorkoutStatus sets the status, refreshes the update timestamp
	// and, when notes is non-nil, replaces the notes.
	UpdateWorkoutStatus(ctx context.Context, id int64, status string, notes *string) error

	// GetStatsForCoach computes the dashboard aggregate. Query failures
	// yield zeroed stats (logged), never an error, so the dashboard always
	// renders.
	GetStatsForCoach(ctx context.Context, coachID int64) (domain.Stats, error)
}

// Factory builds concrete stores. Split out so selection logic is testable
// without dialing anything.
type Factory struct {
	NewPostgres func(cfg config.DatabaseConfig) Store
	NewSupabase func(cfg config.SupabaseConfig) Store
}

// Select picks the backend once at process start: the direct PostgreSQL pool
// when a database URL is configured and the pool comes up, else the REST
// gateway. The choice is not revisited at runtime; a dead primary with a
// configured gateway degrades with a warning instead of aborting.
func (f Factory) Select(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.Database.URL != "" {
		st := f.NewPostgres(cfg.Database)
		err := st.Connect(ctx)
		if err == nil {
			log.Println("Storage backend: PostgreSQL (direct connection pool)")
			return st, nil
		}
		if cfg.Supabase.URL == "" {
			return nil, err
		}
		log.Printf("WARN: PostgreSQL connection failed (%v), falling back to REST gateway", err)
	}

	if cfg.Supabase.URL == "" {
		return nil, ErrNotConfigured
	}

	st := f.NewSupabase(cfg.Supabase)
	if err := st.Connect(ctx); err != nil {
		return nil, err
	}
	log.Println("Storage backend: Supabase REST gateway")
	return st, nil
}

// NormalizeLimit clamps a caller-supplied listing limit to something sane.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultWorkoutLimit
	}
	return limit
}

// IsNotFound reports whether err represents an absent row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
