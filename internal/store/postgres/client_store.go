package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

const clientColumns = "id, coach_id, name, telegram_id, phone, notes, fitness_goal, created_at, updated_at"

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.CoachID, &c.Name, &c.TelegramID, &c.Phone,
		&c.Notes, &c.FitnessGoal, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func collectClients(rows pgx.Rows) ([]domain.Client, error) {
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient inserts the client row and best-effort records the
// trainer_client relation. The relation write failing (missing table, stale
// schema) must not fail the create.
func (s *Store) CreateClient(ctx context.Context, nc domain.NewClient) (int64, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	var id int64
	err := s.pool.QueryRow(opCtx, `
		INSERT INTO clients (coach_id, name, telegram_id, phone, notes, fitness_goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`,
		nc.CoachID, nc.Name, nc.TelegramID, nc.Phone, nc.Notes, nc.FitnessGoal).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}

	relCtx, relCancel := s.opContext(ctx)
	defer relCancel()
	_, relErr := s.pool.Exec(relCtx,
		"INSERT INTO trainer_client (trainer_id, client_id, created_at) VALUES ($1, $2, NOW())",
		nc.CoachID, id)
	if relErr != nil {
		log.Printf("WARN: trainer_client relation write skipped for client %d: %v", id, relErr)
	}

	return id, nil
}

// GetClientsForCoach returns the coach's clients, newest first. The combined
// predicate covers both ownership expressions in one statement; if that query
// fails (relation table absent in this deployment) the strict join through
// trainer_client is tried instead. The failed first attempt is the branch
// condition, not a schema pre-check.
func (s *Store) GetClientsForCoach(ctx context.Context, coachID int64) ([]domain.Client, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(opCtx, `
		SELECT `+clientColumns+` FROM clients
		WHERE coach_id = $1 OR id IN (
			SELECT client_id FROM trainer_client WHERE trainer_id = $1
		)
		ORDER BY created_at DESC`, coachID)
	if err == nil {
		clients, scanErr := collectClients(rows)
		if scanErr == nil {
			return clients, nil
		}
		err = scanErr
	}

	log.Printf("WARN: combined client query failed (%v), using relation join", err)

	joinCtx, joinCancel := s.opContext(ctx)
	defer joinCancel()
	rows, err = s.pool.Query(joinCtx, `
		SELECT c.id, c.coach_id, c.name, c.telegram_id, c.phone, c.notes, c.fitness_goal, c.created_at, c.updated_at
		FROM clients c
		JOIN trainer_client tc ON c.id = tc.client_id
		WHERE tc.trainer_id = $1
		ORDER BY c.created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("get clients for coach: %w", err)
	}
	return collectClients(rows)
}

// GetClient retrieves a client by id.
func (s *Store) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	return scanClient(row)
}

// buildClientUpdate assembles the dynamic UPDATE for the supplied fields.
// Returns ok=false when no fields are set; all values bind through positional
// placeholders.
func buildClientUpdate(id int64, upd domain.ClientUpdate) (query string, args []any, ok bool) {
	sets := []string{}
	args = []any{}

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	appendSet("name", upd.Name)
	appendSet("telegram_id", upd.TelegramID)
	appendSet("phone", upd.Phone)
	appendSet("notes", upd.Notes)
	appendSet("fitness_goal", upd.FitnessGoal)

	if len(sets) == 0 {
		return "", nil, false
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query = fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	return query, args, true
}

// UpdateClient applies the non-nil fields of upd. An empty update issues no
// query and leaves timestamps untouched.
func (s *Store) UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error {
	query, args, ok := buildClientUpdate(id, upd)
	if !ok {
		return nil
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteClient removes trainer_client rows first, then the client row. A
// missing relation table is tolerated.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	relCtx, relCancel := s.opContext(ctx)
	defer relCancel()
	if _, err := s.pool.Exec(relCtx,
		"DELETE FROM trainer_client WHERE client_id = $1", id); err != nil {
		if !isUndefinedTable(err) {
			return fmt.Errorf("delete client relations: %w", err)
		}
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if _, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
