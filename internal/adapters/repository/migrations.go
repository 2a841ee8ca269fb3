package repository

import (
	"database/sql"
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS layout (
    org_key TEXT NOT NULL,
    year INTEGER NOT NULL,
    form_type TEXT NOT NULL,
    id TEXT NOT NULL,
    ord INTEGER NOT NULL,
    doc TEXT NOT NULL,
    PRIMARY KEY (org_key, year, form_type, id)
);

CREATE TABLE IF NOT EXISTS matchscouting (
    org_key TEXT NOT NULL,
    event_key TEXT NOT NULL,
    year INTEGER NOT NULL,
    match_key TEXT NOT NULL,
    match_number INTEGER NOT NULL,
    time INTEGER NOT NULL,
    alliance TEXT NOT NULL,
    team_key TEXT NOT NULL,
    match_team_key TEXT NOT NULL,
    assigned_scorer TEXT NOT NULL DEFAULT '',
    actual_scorer TEXT NOT NULL DEFAULT '',
    data TEXT,
    PRIMARY KEY (org_key, match_team_key)
);
CREATE INDEX IF NOT EXISTS idx_matchscouting_org_event ON matchscouting (org_key, event_key, time);

CREATE TABLE IF NOT EXISTS pitscouting (
    org_key TEXT NOT NULL,
    event_key TEXT NOT NULL,
    team_key TEXT NOT NULL,
    primary_name TEXT NOT NULL,
    secondary_name TEXT NOT NULL DEFAULT '',
    tertiary_name TEXT NOT NULL DEFAULT '',
    data TEXT,
    PRIMARY KEY (org_key, event_key, team_key)
);

CREATE TABLE IF NOT EXISTS aggranges (
    org_key TEXT NOT NULL,
    event_key TEXT NOT NULL,
    metric_key TEXT NOT NULL,
    min_min REAL NOT NULL,
    min_max REAL NOT NULL,
    avg_min REAL NOT NULL,
    avg_max REAL NOT NULL,
    var_min REAL NOT NULL,
    var_max REAL NOT NULL,
    max_min REAL NOT NULL,
    max_max REAL NOT NULL,
    PRIMARY KEY (org_key, event_key, metric_key)
);

CREATE TABLE IF NOT EXISTS members (
    org_key TEXT NOT NULL,
    name TEXT NOT NULL,
    seniority TEXT NOT NULL DEFAULT '',
    subteam_key TEXT NOT NULL DEFAULT '',
    present BOOLEAN NOT NULL DEFAULT FALSE,
    assigned BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (org_key, name)
);

CREATE TABLE IF NOT EXISTS scoutingpairs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    org_key TEXT NOT NULL,
    member1 TEXT NOT NULL,
    member2 TEXT NOT NULL DEFAULT '',
    member3 TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_scoutingpairs_org ON scoutingpairs (org_key);

CREATE TABLE IF NOT EXISTS matches (
    key TEXT PRIMARY KEY,
    event_key TEXT NOT NULL,
    comp_level TEXT NOT NULL DEFAULT '',
    match_number INTEGER NOT NULL,
    time INTEGER NOT NULL,
    red_teams TEXT NOT NULL,
    blue_teams TEXT NOT NULL,
    winner TEXT NOT NULL DEFAULT '',
    red_score INTEGER NOT NULL DEFAULT 0,
    blue_score INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_matches_event ON matches (event_key, time);
`,
	},
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.Version, m.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
