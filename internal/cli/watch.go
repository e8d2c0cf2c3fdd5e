package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/delivery"
	"github.com/tartampluch/go-friends/internal/engine"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		interval time.Duration
		webhook  string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate the friends on an interval and deliver each notification once",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFor(webhook)
			if err != nil {
				return err
			}
			return a.runWatch(cmd.Context(), cmd.OutOrStdout(), sender, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, config.FlagInterval, config.DefaultPollInterval, config.FlagDescInt)
	cmd.Flags().StringVar(&webhook, config.FlagWebhook, "", config.FlagDescWebhook)
	return cmd
}

// runWatch polls until ctx is cancelled. The session remembers what was
// delivered, so each occurrence is notified once per process; logging an
// interaction with a friend re-arms its contact reminder.
func (a *app) runWatch(ctx context.Context, out io.Writer, sender delivery.Notifier, interval time.Duration) error {
	session := engine.NewSession()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info(config.MsgWatchStart,
		config.LogKeyComponent, config.CompWatcher,
		config.LogKeyInterval, interval.String(),
	)

	for {
		if err := a.watchTick(ctx, out, sender, session); err != nil && ctx.Err() == nil {
			slog.Error(config.MsgWatchTick,
				config.LogKeyComponent, config.CompWatcher,
				config.LogKeyError, err,
			)
		}

		select {
		case <-ctx.Done():
			slog.Info(config.MsgWatchStop, config.LogKeyComponent, config.CompWatcher)
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) watchTick(ctx context.Context, out io.Writer, sender delivery.Notifier, session *engine.Session) error {
	// Reload every tick to pick up edits made by other processes.
	ws, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	gen, err := a.generator(ws.Settings)
	if err != nil {
		return err
	}
	settings, err := engine.ParseGateSettings(ws.Settings)
	if err != nil {
		return err
	}

	session.Observe(ws.Friends)
	gate := engine.NewGate(settings, session.Keys)
	return a.deliver(ctx, out, sender, gen.Notifications(ws.Friends, gate))
}
