package domain

import "time"

// Client is a person managed by a coach.
//
// Ownership is recorded two ways in storage: the CoachID column on the client
// row and a row in the trainer_client relation table. A client belongs to a
// coach if either expression matches; the store layer hides that split from
// callers. CoachID is a pointer because legacy rows created through the
// relation table only may have no direct column value.
type Client struct {
	ID          int64     `json:"id"`
	CoachID     *int64    `json:"coach_id,omitempty"`
	Name        string    `json:"name"`
	TelegramID  *string   `json:"telegram_id,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	FitnessGoal *string   `json:"fitness_goal,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewClient carries the fields accepted when creating a client.
// Optional fields are pointers; nil means "not provided".
type NewClient struct {
	CoachID     int64
	Name        string
	TelegramID  *string
	Phone       *string
	Notes       *string
	FitnessGoal *string
}

// ClientUpdate is a field mask for partial client updates. Only non-nil
// fields are written; an update with every field nil issues no query at all.
type ClientUpdate struct {
	Name        *string
	TelegramID  *string
	Phone       *string
	Notes       *string
	FitnessGoal *string
}

// IsZero reports whether the update carries no fields.
func (u ClientUpdate) IsZero() bool {
	return u.Name == nil && u.TelegramID == nil && u.Phone == nil &&
		u.Notes == nil && u.FitnessGoal == nil
}
