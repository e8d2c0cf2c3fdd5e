package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/delivery"
	"github.com/tartampluch/go-friends/internal/engine"
	"github.com/tartampluch/go-friends/internal/i18n"
	"github.com/tartampluch/go-friends/internal/source"
	"github.com/tartampluch/go-friends/internal/store"
)

// workspace is the snapshot one command run evaluates.
type workspace struct {
	Friends  []engine.Friend
	Settings config.Settings

	// Store is nil when the friends come from a file.
	Store *store.DB
}

// Close releases the store, if any.
func (w *workspace) Close() error {
	if w.Store == nil {
		return nil
	}
	return w.Store.Close()
}

// open loads the friends and settings selected by the persistent flags:
// --friends wins over the store, --settings wins over the stored settings.
func (a *app) open(ctx context.Context) (*workspace, error) {
	ws := &workspace{Settings: config.DefaultSettings()}

	switch {
	case a.friendsPath != "":
		friends, err := loadFriendsFile(ctx, a.friendsPath)
		if err != nil {
			return nil, err
		}
		ws.Friends = friends

	case a.userID != "":
		db, err := a.openStore()
		if err != nil {
			return nil, err
		}
		ws.Store = db

		user, err := db.GetUser(ctx, a.userID)
		switch {
		case err == nil:
			ws.Settings = user.Settings
		case !errors.Is(err, store.ErrNotFound):
			_ = db.Close()
			return nil, err
		}

		if ws.Friends, err = db.ListFriends(ctx, a.userID); err != nil {
			_ = db.Close()
			return nil, err
		}

	default:
		return nil, errors.New(config.ErrSnapshotMissing)
	}

	if a.settingsPath != "" {
		settings, err := config.LoadSettings(a.settingsPath)
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		ws.Settings = settings
	}
	return ws, nil
}

// loadFriendsFile reads a JSON snapshot, or a vCard file by extension.
func loadFriendsFile(ctx context.Context, path string) ([]engine.Friend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case config.ExtVCF, config.ExtVCard:
		return source.VCardSource{Path: path}.Load(ctx)
	default:
		return source.LoadSnapshot(path)
	}
}

func (a *app) openStore() (*store.DB, error) {
	path := a.dbPath
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}

	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Debug(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyPath, path,
	)
	return db, nil
}

// requireUser opens the store for commands that write a user's data.
func (a *app) requireUser() (*store.DB, error) {
	if a.userID == "" {
		return nil, errors.New(config.ErrUserRequired)
	}
	return a.openStore()
}

// clock honours --at.
func (a *app) clock() (engine.Clock, error) {
	if a.at == "" {
		return engine.RealClock{}, nil
	}
	t, err := time.Parse(time.RFC3339, a.at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAtParse, err)
	}
	return engine.FixedClock(t), nil
}

// generator builds an engine generator speaking the settings language.
func (a *app) generator(settings config.Settings) (*engine.Generator, error) {
	clock, err := a.clock()
	if err != nil {
		return nil, err
	}

	gen := engine.NewGenerator(clock, nil)
	catalog, err := i18n.New(settings.Language)
	if err != nil {
		// English fallbacks are built into the engine.
		slog.Warn(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
		return gen, nil
	}
	gen.Phrases = catalog
	return gen, nil
}

// senderFor picks the webhook sender when an endpoint is given, else the log.
func senderFor(webhook string) (delivery.Sender, error) {
	if webhook == "" {
		return delivery.NewLogSender(), nil
	}
	sender, err := delivery.NewWebhookSender(webhook)
	if err != nil {
		return nil, err
	}
	return sender, nil
}
