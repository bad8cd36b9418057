package postgres

import (
	"context"
	"fmt"

	"contact-manager-backend/internal/domain"
	"contact-manager-backend/pkg/logger"
)

// migrations are applied in order on every start; each one is idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "001_create_contacts",
		sql: fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS contacts (
			contact_id  SERIAL PRIMARY KEY,
			name        VARCHAR(%d) NOT NULL,
			name_key    VARCHAR(%d) NOT NULL,
			address     TEXT NOT NULL DEFAULT '',
			tel         TEXT NOT NULL DEFAULT '',
			mobile      VARCHAR(%d) NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			country     VARCHAR(%d) NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, domain.MaxNameLength, 4*domain.MaxNameLength, domain.MaxMobileLength, domain.MaxCountryLength),
	},
	{
		name: "002_contacts_name_key_unique",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS contacts_name_key_idx ON contacts (name_key)`,
	},
}

// Migrate creates the contacts schema if it is missing.
func Migrate(ctx context.Context, db DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		logger.Log.Debug("Migration applied", "name", m.name)
	}
	return nil
}
