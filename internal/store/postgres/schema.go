package postgres

import (
	"context"
	"fmt"
)

// schema is the full bootstrap DDL. IF NOT EXISTS throughout so running it
// against an already-initialized database is harmless.
const schema = `
CREATE TABLE IF NOT EXISTS coaches (
	id          SERIAL PRIMARY KEY,
	telegram_id VARCHAR(20) UNIQUE NOT NULL,
	name        VARCHAR(100) NOT NULL,
	username    VARCHAR(100),
	created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS clients (
	id           SERIAL PRIMARY KEY,
	coach_id     INTEGER REFERENCES coaches(id) ON DELETE CASCADE,
	name         VARCHAR(100) NOT NULL,
	telegram_id  VARCHAR(20),
	phone        VARCHAR(20),
	notes        TEXT,
	fitness_goal TEXT,
	created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workouts (
	id           SERIAL PRIMARY KEY,
	coach_id     INTEGER REFERENCES coaches(id) ON DELETE CASCADE,
	client_id    INTEGER REFERENCES clients(id) ON DELETE CASCADE,
	date         TIMESTAMP WITH TIME ZONE NOT NULL,
	exercises    JSONB DEFAULT '[]',
	notes        TEXT,
	workout_type VARCHAR(50),
	status       VARCHAR(20) DEFAULT 'planned',
	created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS trainer_client (
	trainer_id INTEGER REFERENCES coaches(id) ON DELETE CASCADE,
	client_id  INTEGER REFERENCES clients(id) ON DELETE CASCADE,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	PRIMARY KEY (trainer_id, client_id)
);

CREATE INDEX IF NOT EXISTS idx_coaches_telegram_id ON coaches(telegram_id);
CREATE INDEX IF NOT EXISTS idx_clients_coach_id ON clients(coach_id);
CREATE INDEX IF NOT EXISTS idx_workouts_coach_id ON workouts(coach_id);
CREATE INDEX IF NOT EXISTS idx_workouts_client_id ON workouts(client_id);
CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(date);
`

// InitSchema ensures tables and indexes exist. Call once at startup when
// bootstrapping a fresh database.
func (s *Store) InitSchema(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
