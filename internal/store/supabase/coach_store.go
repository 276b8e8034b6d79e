package supabase

import (
	"context"
	"fmt"
	"log"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

// GetCoachByTelegramID looks a coach up by the external identity key.
func (s *Store) GetCoachByTelegramID(ctx context.Context, telegramID string) (*domain.Coach, error) {
	var coaches []domain.Coach
	if err := s.fetch(ctx, eq("coaches", "telegram_id", telegramID), &coaches); err != nil {
		return nil, err
	}
	if len(coaches) == 0 {
		return nil, store.ErrNotFound
	}
	return &coaches[0], nil
}

// CreateCoach inserts a coach. When the gateway rejects the insert (typically
// a uniqueness conflict on telegram_id) the existing coach's id is returned
// instead of the error.
func (s *Store) CreateCoach(ctx context.Context, telegramID, name string, username *string) (int64, error) {
	body := map[string]any{
		"telegram_id": telegramID,
		"name":        name,
		"username":    username,
		"created_at":  nowStamp(),
		"updated_at":  nowStamp(),
	}

	var inserted []domain.Coach
	err := s.insert(ctx, "/coaches", body, &inserted)
	if err == nil && len(inserted) > 0 {
		return inserted[0].ID, nil
	}
	if err != nil {
		log.Printf("WARN: coach insert rejected for %s: %v", telegramID, err)
	}

	existing, getErr := s.GetCoachByTelegramID(ctx, telegramID)
	if getErr == nil {
		return existing.ID, nil
	}
	if err == nil {
		err = fmt.Errorf("gateway returned no representation")
	}
	return 0, fmt.Errorf("create coach: %w", err)
}

// GetCoach retrieves a coach by id.
func (s *Store) GetCoach(ctx context.Context, id int64) (*domain.Coach, error) {
	var coaches []domain.Coach
	if err := s.fetch(ctx, eq("coaches", "id", id), &coaches); err != nil {
		return nil, err
	}
	if len(coaches) == 0 {
		return nil, store.ErrNotFound
	}
	return &coaches[0], nil
}
