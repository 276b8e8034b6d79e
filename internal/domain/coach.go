package domain

import "time"

// Coach represents a trainer who owns clients and workouts.
// TelegramID is the external identity key: unique, set once at registration,
// and used by the bot/web layer to find the coach record.
type Coach struct {
	ID         int64     `json:"id"`
	TelegramID string    `json:"telegram_id"`
	Name       string    `json:"name"`
	Username   *string   `json:"username,omitempty"` // Optional external handle (may be unset)
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
