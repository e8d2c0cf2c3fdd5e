package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// OutboxEntry is a digest email waiting for (or done with) delivery.
type OutboxEntry struct {
	ID        int64
	UserID    string
	Recipient string
	Email     engine.DigestEmail
	CreatedAt time.Time
	SentAt    *time.Time
	Attempts  int
	LastError string
}

// EnqueueDigest queues a digest email for a user and returns its outbox ID.
func (db *DB) EnqueueDigest(ctx context.Context, userID, recipient string, email engine.DigestEmail, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO outbox (user_id, recipient, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, recipient, email.Subject, email.Body, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%s: enqueue digest: %w", config.ErrStoreWrite, err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// PendingDigests returns the unsent entries, oldest first.
func (db *DB) PendingDigests(ctx context.Context) ([]OutboxEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, recipient, subject, body, created_at, sent_at, attempts, last_error
		FROM outbox WHERE sent_at IS NULL
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: pending digests: %w", config.ErrStoreQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []OutboxEntry
	for rows.Next() {
		var (
			e         OutboxEntry
			createdAt int64
			sentAt    *int64
			lastError sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Recipient, &e.Email.Subject, &e.Email.Body,
			&createdAt, &sentAt, &e.Attempts, &lastError); err != nil {
			return nil, fmt.Errorf("%s: scan outbox: %w", config.ErrStoreQuery, err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		if sentAt != nil {
			t := time.UnixMilli(*sentAt)
			e.SentAt = &t
		}
		e.LastError = lastError.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkSent records a successful delivery.
func (db *DB) MarkSent(ctx context.Context, id int64, now time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE outbox SET sent_at = ?, attempts = attempts + 1, last_error = NULL
		WHERE id = ? AND sent_at IS NULL
	`, now.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("%s: mark sent: %w", config.ErrStoreWrite, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("outbox %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkFailed records a failed delivery attempt; the entry stays pending.
func (db *DB) MarkFailed(ctx context.Context, id int64, cause error) error {
	_, err := db.ExecContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = ?
		WHERE id = ? AND sent_at IS NULL
	`, cause.Error(), id)
	if err != nil {
		return fmt.Errorf("%s: mark failed: %w", config.ErrStoreWrite, err)
	}
	return nil
}
