package supabase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/store"
)

// relationRow mirrors the trainer_client relation table.
type relationRow struct {
	TrainerID int64 `json:"trainer_id"`
	ClientID  int64 `json:"client_id"`
}

// CreateClient inserts the client row, then best-effort records the
// trainer_client relation. The relation write failing never fails the create.
func (s *Store) CreateClient(ctx context.Context, nc domain.NewClient) (int64, error) {
	body := map[string]any{
		"coach_id":     nc.CoachID,
		"name":         nc.Name,
		"telegram_id":  nc.TelegramID,
		"phone":        nc.Phone,
		"notes":        nc.Notes,
		"fitness_goal": nc.FitnessGoal,
		"created_at":   nowStamp(),
		"updated_at":   nowStamp(),
	}

	var inserted []domain.Client
	if err := s.insert(ctx, "/clients", body, &inserted); err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	if len(inserted) == 0 {
		return 0, fmt.Errorf("create client: gateway returned no representation")
	}
	id := inserted[0].ID

	relation := map[string]any{
		"trainer_id": nc.CoachID,
		"client_id":  id,
		"created_at": nowStamp(),
	}
	if err := s.insert(ctx, "/trainer_client", relation, nil); err != nil {
		// Best-effort only; the table may not exist in this deployment.
		log.Printf("WARN: trainer_client relation write skipped for client %d: %v", id, err)
	}

	return id, nil
}

// clientsByIDs fetches a batch of clients with an in.(...) membership filter.
func (s *Store) clientsByIDs(ctx context.Context, ids []int64) ([]domain.Client, error) {
	if len(ids) == 0 {
		return []domain.Client{}, nil
	}
	q := url.Values{}
	q.Set("id", inList(ids))
	q.Set("order", "created_at.desc")

	var clients []domain.Client
	if err := s.fetch(ctx, "/clients?"+q.Encode(), &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// GetClientsForCoach unions the direct-column result with the relation-table
// result. The relation read failing (table absent, gateway hiccup) degrades
// to the direct result alone, so one dead ownership expression never empties
// the list.
func (s *Store) GetClientsForCoach(ctx context.Context, coachID int64) ([]domain.Client, error) {
	q := url.Values{}
	q.Set("coach_id", fmt.Sprintf("eq.%d", coachID))
	q.Set("order", "created_at.desc")

	var direct []domain.Client
	if err := s.fetch(ctx, "/clients?"+q.Encode(), &direct); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(direct))
	for _, c := range direct {
		seen[c.ID] = true
	}

	var relations []relationRow
	_ = s.fetch(ctx, eq("trainer_client", "trainer_id", coachID), &relations)

	var missing []int64
	for _, rel := range relations {
		if !seen[rel.ClientID] {
			seen[rel.ClientID] = true
			missing = append(missing, rel.ClientID)
		}
	}

	related, err := s.clientsByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	clients := append(direct, related...)
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

// GetClient retrieves a client by id.
func (s *Store) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	var clients []domain.Client
	if err := s.fetch(ctx, eq("clients", "id", id), &clients); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, store.ErrNotFound
	}
	return &clients[0], nil
}

// UpdateClient PATCHes the non-nil fields. An empty update sends nothing.
func (s *Store) UpdateClient(ctx context.Context, id int64, upd domain.ClientUpdate) error {
	if upd.IsZero() {
		return nil
	}

	body := map[string]any{"updated_at": nowStamp()}
	if upd.Name != nil {
		body["name"] = *upd.Name
	}
	if upd.TelegramID != nil {
		body["telegram_id"] = *upd.TelegramID
	}
	if upd.Phone != nil {
		body["phone"] = *upd.Phone
	}
	if upd.Notes != nil {
		body["notes"] = *upd.Notes
	}
	if upd.FitnessGoal != nil {
		body["fitness_goal"] = *upd.FitnessGoal
	}

	payload, err := s.patch(ctx, eq("clients", "id", id), body)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if !hasRows(payload) {
		return store.ErrNotFound
	}
	return nil
}

// DeleteClient removes relation rows first, then the client row. A failed
// relation delete (absent table) is tolerated.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	if err := s.delete(ctx, eq("trainer_client", "client_id", id)); err != nil {
		// Tolerated; the relation table may not exist.
		log.Printf("WARN: trainer_client relation delete skipped for client %d: %v", id, err)
	}
	if err := s.delete(ctx, eq("clients", "id", id)); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
