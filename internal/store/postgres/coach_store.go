package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

const coachColumns = "id, telegram_id, name, username, created_at, updated_at"

func scanCoach(row pgx.Row) (*domain.Coach, error) {
	var c domain.Coach
	err := row.Scan(&c.ID, &c.TelegramID, &c.Name, &c.Username, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetCoachByTelegramID retrieves a coach by the external identity key.
func (s *Store) GetCoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		"SELECT "+coachColumns+" FROM coaches WHERE telegram_id = $1", telegramID)
	return scanCoach(row)
}

// CreateCoach inserts a coach and returns the new id. A duplicate telegram id
// resolves to the already-stored coach instead of an error.
func (s *Store) CreateCoach(ctx context.Context, telegramID, name string, username *string) (int64, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	var id int64
	err := s.pool.QueryRow(opCtx, `
		INSERT INTO coaches (telegram_id, name, username, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id`,
		telegramID, name, username).Scan(&id)
	if err == nil {
		return id, nil
	}

	if isUniqueViolation(err) {
		existing, getErr := s.GetCoachByTelegramID(ctx, telegramID)
		if getErr == nil {
			return existing.ID, nil
		}
	}
	return 0, fmt.Errorf("create coach: %w", err)
}

// GetCoach retrieves a coach by id.
func (s *Store) GetCoach(ctx context.Context, id int64) (*domain.Coach, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		"SELECT "+coachColumns+" FROM coaches WHERE id = $1", id)
	return scanCoach(row)
}
