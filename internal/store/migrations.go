package store

import (
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-friends/internal/config"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users and friends",
		SQL: `
CREATE TABLE users (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL DEFAULT '',
    email_frequency TEXT NOT NULL DEFAULT 'daily',
    settings        TEXT NOT NULL DEFAULT '{}',
    created_at      INTEGER NOT NULL
);

CREATE TABLE friends (
    user_id                       TEXT NOT NULL,
    id                            TEXT NOT NULL,
    name                          TEXT NOT NULL,
    birthday                      TEXT NOT NULL DEFAULT '',
    relationship_tier             TEXT NOT NULL DEFAULT 'regular',
    reminder_frequency            TEXT NOT NULL DEFAULT '',
    enable_reminders              INTEGER NOT NULL DEFAULT 1,
    enable_birthday_notifications INTEGER NOT NULL DEFAULT 1,
    created_at                    TEXT NOT NULL DEFAULT '',
    position                      INTEGER NOT NULL,

    PRIMARY KEY (user_id, id),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX idx_friends_user ON friends(user_id, position);
`,
	},
	{
		Version:     2,
		Description: "interactions and important dates",
		SQL: `
CREATE TABLE interactions (
    id        INTEGER PRIMARY KEY,
    user_id   TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    date      TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    method    TEXT NOT NULL DEFAULT '',
    notes     TEXT NOT NULL DEFAULT '',

    FOREIGN KEY (user_id, friend_id) REFERENCES friends(user_id, id) ON DELETE CASCADE
);

CREATE INDEX idx_interactions_friend ON interactions(user_id, friend_id, date);

CREATE TABLE important_dates (
    id          INTEGER PRIMARY KEY,
    user_id     TEXT NOT NULL,
    friend_id   TEXT NOT NULL,
    date        TEXT NOT NULL,
    description TEXT NOT NULL,
    recurrence  TEXT NOT NULL DEFAULT 'none' CHECK (recurrence IN ('none', 'yearly', 'monthly')),

    FOREIGN KEY (user_id, friend_id) REFERENCES friends(user_id, id) ON DELETE CASCADE
);

CREATE INDEX idx_important_dates_friend ON important_dates(user_id, friend_id);
`,
	},
	{
		Version:     3,
		Description: "outbox: queued digest emails",
		SQL: `
CREATE TABLE outbox (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL,
    recipient  TEXT NOT NULL DEFAULT '',
    subject    TEXT NOT NULL,
    body       TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    sent_at    INTEGER,
    attempts   INTEGER NOT NULL DEFAULT 0,
    last_error TEXT,

    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX idx_outbox_pending ON outbox(sent_at, created_at);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
		slog.Debug(config.MsgMigration,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyVersion, m.Version,
		)
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
