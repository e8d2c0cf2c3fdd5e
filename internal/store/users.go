package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// User is the owner of a friend list.
type User struct {
	ID             string
	Email          string
	EmailFrequency string
	Settings       config.Settings
	CreatedAt      time.Time
}

// UpsertUser creates the user or updates its email, frequency and settings.
func (db *DB) UpsertUser(ctx context.Context, u User) error {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	if u.EmailFrequency == "" {
		u.EmailFrequency = config.DefaultEmailFrequency
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, email_frequency, settings, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			email_frequency = excluded.email_frequency,
			settings = excluded.settings
	`, u.ID, u.Email, u.EmailFrequency, string(settings), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: upsert user: %w", config.ErrStoreWrite, err)
	}
	return nil
}

// EnsureUser creates the user with default settings unless it exists.
func (db *DB) EnsureUser(ctx context.Context, id string) error {
	if _, err := db.GetUser(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return db.UpsertUser(ctx, User{ID: id, Settings: config.DefaultSettings()})
}

// GetUser returns a user by ID, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, email, email_frequency, settings, created_at
		FROM users WHERE id = ?
	`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: get user: %w", config.ErrStoreQuery, err)
	}
	return u, nil
}

// ListDigestUsers returns the users subscribed to digests of the given
// frequency that have an email address, ordered by ID.
func (db *DB) ListDigestUsers(ctx context.Context, frequency string) ([]User, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, email, email_frequency, settings, created_at
		FROM users WHERE email_frequency = ? AND email != ''
		ORDER BY id
	`, frequency)
	if err != nil {
		return nil, fmt.Errorf("%s: list digest users: %w", config.ErrStoreQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan user: %w", config.ErrStoreQuery, err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var (
		u         User
		settings  string
		createdAt int64
	)
	if err := s.Scan(&u.ID, &u.Email, &u.EmailFrequency, &settings, &createdAt); err != nil {
		return nil, err
	}

	// Stored settings only override the defaults they carry.
	u.Settings = config.DefaultSettings()
	if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSettingsDecode, err)
	}
	u.CreatedAt = time.UnixMilli(createdAt)
	return &u, nil
}
