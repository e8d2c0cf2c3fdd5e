package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenMemory_Schema(t *testing.T) {
	db := openTest(t)

	assert.Equal(t, memoryPath, db.Path)

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	for _, table := range []string{"schema_versions", "users", "friends", "interactions", "important_dates", "outbox"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoErrorf(t, err, "table %q not found", table)
	}
}

func TestOpen_FileIsReusable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.DBFileName)

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.UpsertUser(context.Background(), User{ID: "u1", Settings: config.DefaultSettings()}))
	require.NoError(t, db.Close())

	// Reopening skips the applied migrations and keeps the data.
	db, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.GetUser(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)

	settings := config.DefaultSettings()
	settings.QuietHoursStart = "23:00"
	settings.Language = "fr"
	require.NoError(t, db.UpsertUser(ctx, User{ID: "u1", Email: "u1@example.com", Settings: settings}))
	require.NoError(t, db.UpsertUser(ctx, User{ID: "u2", Email: "u2@example.com", EmailFrequency: "weekly", Settings: config.DefaultSettings()}))
	require.NoError(t, db.UpsertUser(ctx, User{ID: "u3", Settings: config.DefaultSettings()}))

	u, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEmailFrequency, u.EmailFrequency)
	assert.Equal(t, "23:00", u.Settings.QuietHoursStart)
	assert.Equal(t, "fr", u.Settings.Language)

	_, err = db.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	daily, err := db.ListDigestUsers(ctx, "daily")
	require.NoError(t, err)
	require.Len(t, daily, 1, "Users without an email are not digest recipients")
	assert.Equal(t, "u1", daily[0].ID)

	require.NoError(t, db.EnsureUser(ctx, "u1"))
	u, err = db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email, "EnsureUser leaves existing users alone")

	require.NoError(t, db.EnsureUser(ctx, "u4"))
	_, err = db.GetUser(ctx, "u4")
	assert.NoError(t, err)
}

func TestFriends_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureUser(ctx, "u1"))

	alex := engine.Friend{
		ID:                          "alex",
		Name:                        "Alex",
		Birthday:                    day(1990, 6, 20),
		BirthYearKnown:              true,
		Tier:                        engine.TierClose,
		ReminderFrequency:           engine.ParseFrequency("bi-weekly"),
		EnableReminders:             true,
		EnableBirthdayNotifications: false,
		CreatedAt:                   day(2024, 1, 1),
		Interactions: []engine.Interaction{
			{Date: day(2025, 3, 5), Timestamp: day(2025, 3, 5).Add(time.Hour), Method: "Call"},
			{Date: day(2025, 2, 1), Timestamp: day(2025, 2, 1).Add(time.Hour), Method: "Text", Notes: "hi"},
		},
		ImportantDates: []engine.ImportantDate{
			{Date: day(2019, 9, 10), Description: "Anniversary", Recurrence: engine.RecurrenceYearly},
		},
	}
	sam := engine.Friend{ID: "sam", Name: "Sam", Tier: engine.TierRegular, EnableReminders: true, EnableBirthdayNotifications: true}

	require.NoError(t, db.SaveFriends(ctx, "u1", []engine.Friend{alex, sam}))

	friends, err := db.ListFriends(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "alex", friends[0].ID, "Insertion order is kept")

	got := friends[0]
	assert.Equal(t, alex.Birthday, got.Birthday)
	assert.Equal(t, engine.TierClose, got.Tier)
	assert.Equal(t, engine.FrequencyBiWeekly, got.ReminderFrequency.Kind)
	assert.False(t, got.EnableBirthdayNotifications)
	assert.Equal(t, alex.CreatedAt, got.CreatedAt)
	require.Len(t, got.Interactions, 2)
	assert.Equal(t, "Text", got.Interactions[0].Method, "Loaded friends are normalized")
	assert.Equal(t, "hi", got.Interactions[0].Notes)
	require.Len(t, got.ImportantDates, 1)
	assert.Equal(t, engine.RecurrenceYearly, got.ImportantDates[0].Recurrence)

	other, err := db.ListFriends(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveFriend_ReplacesNestedArrays(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureUser(ctx, "u1"))

	f := engine.Friend{
		ID:        "f1",
		Name:      "First",
		CreatedAt: day(2024, 1, 1),
		Interactions: []engine.Interaction{
			{Date: day(2025, 1, 1), Timestamp: day(2025, 1, 1)},
			{Date: day(2025, 1, 8), Timestamp: day(2025, 1, 8)},
		},
		ImportantDates: []engine.ImportantDate{{Date: day(2025, 5, 1), Description: "Exam"}},
	}
	require.NoError(t, db.SaveFriend(ctx, "u1", f))
	require.NoError(t, db.SaveFriend(ctx, "u1", engine.Friend{ID: "f2", Name: "Second"}))

	f.Name = "Renamed"
	f.CreatedAt = time.Time{}
	f.Interactions = f.Interactions[:1]
	f.ImportantDates = nil
	require.NoError(t, db.SaveFriend(ctx, "u1", f))

	friends, err := db.ListFriends(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "Renamed", friends[0].Name, "Updating keeps the original position")
	assert.Equal(t, day(2024, 1, 1), friends[0].CreatedAt, "The first creation date is kept")
	assert.Len(t, friends[0].Interactions, 1)
	assert.Empty(t, friends[0].ImportantDates)
}

func TestSaveFriend_UnknownUser(t *testing.T) {
	db := openTest(t)

	err := db.SaveFriend(context.Background(), "nobody", engine.Friend{ID: "f1", Name: "F"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrStoreWrite)
}

func TestAppendInteraction(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureUser(ctx, "u1"))
	require.NoError(t, db.SaveFriend(ctx, "u1", engine.Friend{ID: "f1", Name: "F"}))

	in := engine.Interaction{Date: day(2025, 6, 1), Timestamp: day(2025, 6, 1).Add(9 * time.Hour), Method: "Call", Notes: "Long chat"}
	require.NoError(t, db.AppendInteraction(ctx, "u1", "f1", in))

	friends, err := db.ListFriends(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, friends[0].Interactions, 1)
	assert.Equal(t, in, friends[0].Interactions[0])

	err = db.AppendInteraction(ctx, "u1", "ghost", in)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteFriend_Cascades(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureUser(ctx, "u1"))
	require.NoError(t, db.SaveFriend(ctx, "u1", engine.Friend{
		ID:           "f1",
		Name:         "F",
		Interactions: []engine.Interaction{{Date: day(2025, 1, 1), Timestamp: day(2025, 1, 1)}},
	}))

	require.NoError(t, db.DeleteFriend(ctx, "u1", "f1"))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&n))
	assert.Zero(t, n)
	assert.ErrorIs(t, db.DeleteFriend(ctx, "u1", "f1"), ErrNotFound)
}

func TestOutbox_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureUser(ctx, "u1"))

	now := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	first, err := db.EnqueueDigest(ctx, "u1", "u1@example.com", engine.DigestEmail{Subject: "S1", Body: "B1"}, now)
	require.NoError(t, err)
	second, err := db.EnqueueDigest(ctx, "u1", "u1@example.com", engine.DigestEmail{Subject: "S2", Body: "B2"}, now.Add(time.Minute))
	require.NoError(t, err)

	pending, err := db.PendingDigests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, "S1", pending[0].Email.Subject)
	assert.Equal(t, "u1@example.com", pending[0].Recipient)
	assert.Nil(t, pending[0].SentAt)

	require.NoError(t, db.MarkFailed(ctx, second, errors.New("smtp down")))
	require.NoError(t, db.MarkSent(ctx, first, now.Add(time.Hour)))

	pending, err = db.PendingDigests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "smtp down", pending[0].LastError)

	assert.ErrorIs(t, db.MarkSent(ctx, first, now), ErrNotFound, "An entry is only sent once")
}
