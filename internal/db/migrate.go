package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS journeys (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		destination         TEXT NOT NULL,
		origin              TEXT NOT NULL DEFAULT '',
		travelers           INTEGER NOT NULL DEFAULT 1 CHECK(travelers > 0),
		budget              TEXT NOT NULL DEFAULT 'moderate'
		                    CHECK(budget IN ('budget','moderate','luxury')),
		style               TEXT NOT NULL DEFAULT 'destination'
		                    CHECK(style IN ('destination','driving','motorcycle','rv_trip','ski','backpacking','cruise')),
		interests           TEXT NOT NULL DEFAULT '[]',
		preferred_duration  INTEGER NOT NULL DEFAULT 0 CHECK(preferred_duration >= 0),
		start_date          TEXT,
		status              TEXT NOT NULL DEFAULT 'planning'
		                    CHECK(status IN ('planning','confirmed')),
		active_proposal_id  TEXT NOT NULL DEFAULT '',
		confirmed_itinerary TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS proposals (
		journey_id TEXT NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
		id         TEXT NOT NULL,
		position   INTEGER NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		summary    TEXT NOT NULL DEFAULT '',
		days       TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (journey_id, id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_proposals_journey ON proposals(journey_id, position)`,

	// Added after the first release.
	`ALTER TABLE journeys ADD COLUMN owner_id TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE journeys ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_journeys_owner ON journeys(owner_id)`,
}
