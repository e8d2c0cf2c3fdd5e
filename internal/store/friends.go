package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
	"github.com/tartampluch/go-friends/internal/source"
)

// ErrNotFound is returned when a user or friend does not exist.
var ErrNotFound = errors.New(config.ErrRecordNotFound)

// SaveFriends upserts friends of a user in a single transaction. The nested
// interactions and important dates of each friend replace the stored ones.
// Friends keep the position they were first saved at.
func (db *DB) SaveFriends(ctx context.Context, userID string, friends []engine.Friend) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", config.ErrStoreWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range friends {
		if err := saveFriend(ctx, tx, userID, f); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", config.ErrStoreWrite, err)
	}
	return nil
}

// SaveFriend upserts one friend and its nested arrays.
func (db *DB) SaveFriend(ctx context.Context, userID string, f engine.Friend) error {
	return db.SaveFriends(ctx, userID, []engine.Friend{f})
}

func saveFriend(ctx context.Context, tx *sql.Tx, userID string, f engine.Friend) error {
	doc := source.NewFriendDoc(f)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO friends (user_id, id, name, birthday, relationship_tier, reminder_frequency,
			enable_reminders, enable_birthday_notifications, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM friends WHERE user_id = ?))
		ON CONFLICT(user_id, id) DO UPDATE SET
			name = excluded.name,
			birthday = excluded.birthday,
			relationship_tier = excluded.relationship_tier,
			reminder_frequency = excluded.reminder_frequency,
			enable_reminders = excluded.enable_reminders,
			enable_birthday_notifications = excluded.enable_birthday_notifications,
			created_at = CASE WHEN friends.created_at = '' THEN excluded.created_at ELSE friends.created_at END
	`, userID, doc.ID, doc.Name, doc.Birthday, doc.RelationshipTier, doc.ReminderFrequency,
		f.EnableReminders, f.EnableBirthdayNotifications, doc.CreatedAt, userID)
	if err != nil {
		return fmt.Errorf("%s: upsert friend %s: %w", config.ErrStoreWrite, f.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE user_id = ? AND friend_id = ?`, userID, f.ID); err != nil {
		return fmt.Errorf("%s: clear interactions: %w", config.ErrStoreWrite, err)
	}
	for _, in := range doc.Interactions {
		if err := insertInteraction(ctx, tx, userID, f.ID, in); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM important_dates WHERE user_id = ? AND friend_id = ?`, userID, f.ID); err != nil {
		return fmt.Errorf("%s: clear important dates: %w", config.ErrStoreWrite, err)
	}
	for _, d := range doc.ImportantDates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO important_dates (user_id, friend_id, date, description, recurrence)
			VALUES (?, ?, ?, ?, ?)
		`, userID, f.ID, d.Date, d.Description, string(engine.ParseRecurrence(d.Recurrence)))
		if err != nil {
			return fmt.Errorf("%s: insert important date: %w", config.ErrStoreWrite, err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertInteraction(ctx context.Context, ex execer, userID, friendID string, in source.InteractionDoc) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO interactions (user_id, friend_id, date, timestamp, method, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, friendID, in.Date, in.Timestamp, in.Method, in.Notes)
	if err != nil {
		return fmt.Errorf("%s: insert interaction: %w", config.ErrStoreWrite, err)
	}
	return nil
}

// AppendInteraction logs a new interaction for an existing friend.
func (db *DB) AppendInteraction(ctx context.Context, userID, friendID string, in engine.Interaction) error {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friends WHERE user_id = ? AND id = ?`, userID, friendID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: lookup friend: %w", config.ErrStoreQuery, err)
	}
	if exists == 0 {
		return fmt.Errorf("%s: %w", friendID, ErrNotFound)
	}

	doc := source.NewFriendDoc(engine.Friend{Interactions: []engine.Interaction{in}})
	return insertInteraction(ctx, db, userID, friendID, doc.Interactions[0])
}

// DeleteFriend removes a friend and everything attached to it.
func (db *DB) DeleteFriend(ctx context.Context, userID, friendID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM friends WHERE user_id = ? AND id = ?`, userID, friendID)
	if err != nil {
		return fmt.Errorf("%s: delete friend: %w", config.ErrStoreWrite, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", friendID, ErrNotFound)
	}
	return nil
}

// ListFriends loads the friends of a user in insertion order, normalized for
// evaluation.
func (db *DB) ListFriends(ctx context.Context, userID string) ([]engine.Friend, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, birthday, relationship_tier, reminder_frequency,
			enable_reminders, enable_birthday_notifications, created_at
		FROM friends WHERE user_id = ? ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: list friends: %w", config.ErrStoreQuery, err)
	}

	var docs []*source.FriendDoc
	byID := map[string]*source.FriendDoc{}
	for rows.Next() {
		var (
			d                   source.FriendDoc
			reminders, birthday bool
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Birthday, &d.RelationshipTier, &d.ReminderFrequency,
			&reminders, &birthday, &d.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: scan friend: %w", config.ErrStoreQuery, err)
		}
		d.EnableReminders, d.EnableBirthdayNotifications = &reminders, &birthday
		docs = append(docs, &d)
		byID[d.ID] = &d
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%s: list friends: %w", config.ErrStoreQuery, err)
	}
	_ = rows.Close()

	if err := db.loadInteractions(ctx, userID, byID); err != nil {
		return nil, err
	}
	if err := db.loadImportantDates(ctx, userID, byID); err != nil {
		return nil, err
	}

	friends := make([]engine.Friend, 0, len(docs))
	for _, d := range docs {
		friends = append(friends, d.Friend())
	}
	return engine.NormalizeFriends(friends), nil
}

func (db *DB) loadInteractions(ctx context.Context, userID string, byID map[string]*source.FriendDoc) error {
	rows, err := db.QueryContext(ctx, `
		SELECT friend_id, date, timestamp, method, notes
		FROM interactions WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return fmt.Errorf("%s: list interactions: %w", config.ErrStoreQuery, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			friendID string
			in       source.InteractionDoc
		)
		if err := rows.Scan(&friendID, &in.Date, &in.Timestamp, &in.Method, &in.Notes); err != nil {
			return fmt.Errorf("%s: scan interaction: %w", config.ErrStoreQuery, err)
		}
		if d, ok := byID[friendID]; ok {
			d.Interactions = append(d.Interactions, in)
		}
	}
	return rows.Err()
}

func (db *DB) loadImportantDates(ctx context.Context, userID string, byID map[string]*source.FriendDoc) error {
	rows, err := db.QueryContext(ctx, `
		SELECT friend_id, date, description, recurrence
		FROM important_dates WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return fmt.Errorf("%s: list important dates: %w", config.ErrStoreQuery, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			friendID string
			imp      source.ImportantDateDoc
		)
		if err := rows.Scan(&friendID, &imp.Date, &imp.Description, &imp.Recurrence); err != nil {
			return fmt.Errorf("%s: scan important date: %w", config.ErrStoreQuery, err)
		}
		if d, ok := byID[friendID]; ok {
			d.ImportantDates = append(d.ImportantDates, imp)
		}
	}
	return rows.Err()
}
