package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/delivery"
	"github.com/tartampluch/go-friends/internal/store"
)

type digestOptions struct {
	frequency string
	sendEmpty bool
	webhook   string
}

func (a *app) digestCmd() *cobra.Command {
	var opts digestOptions

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Queue and deliver the batch digest of every subscribed user",
		Long: "With --friends, prints the digest of the snapshot. Otherwise every user of the store " +
			"subscribed to --email-frequency gets a digest queued in the outbox, then every pending " +
			"digest is delivered and marked sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFor(opts.webhook)
			if err != nil {
				return err
			}
			if a.friendsPath != "" {
				return a.runSnapshotDigest(cmd.Context(), cmd.OutOrStdout(), sender, opts)
			}
			return a.runStoreDigest(cmd.Context(), sender, opts)
		},
	}
	cmd.Flags().StringVar(&opts.frequency, config.FlagFrequency, config.DefaultEmailFrequency, config.FlagDescFreq)
	cmd.Flags().BoolVar(&opts.sendEmpty, config.FlagSendEmpty, false, config.FlagDescEmpty)
	cmd.Flags().StringVar(&opts.webhook, config.FlagWebhook, "", config.FlagDescWebhook)
	return cmd
}

func (a *app) runSnapshotDigest(ctx context.Context, out io.Writer, sender delivery.Mailer, opts digestOptions) error {
	ws, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	gen, err := a.generator(ws.Settings)
	if err != nil {
		return err
	}

	email, in := gen.Digest(ws.Friends)
	if in.Empty() && !opts.sendEmpty {
		slog.Info(config.MsgDigestSkipped, config.LogKeyComponent, config.CompDigest)
		return nil
	}

	_, _ = fmt.Fprintf(out, config.FormatDigestOutput, email.Subject, email.Body)
	if opts.webhook == "" {
		return nil
	}
	return sender.SendDigest(ctx, a.userID, "", email)
}

// runStoreDigest composes into the outbox first and delivers second, so a
// digest that failed to send is retried by the next run.
func (a *app) runStoreDigest(ctx context.Context, sender delivery.Mailer, opts digestOptions) error {
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	clock, err := a.clock()
	if err != nil {
		return err
	}

	users, err := db.ListDigestUsers(ctx, opts.frequency)
	if err != nil {
		return err
	}

	var queued, skipped int
	for _, u := range users {
		if a.userID != "" && u.ID != a.userID {
			continue
		}
		ok, err := a.queueDigest(ctx, db, u, opts.sendEmpty, clock.Now())
		if err != nil {
			return err
		}
		if ok {
			queued++
		} else {
			skipped++
		}
	}

	sent, failures, err := flushOutbox(ctx, db, sender, clock.Now)
	slog.Info(config.MsgDigestRun,
		config.LogKeyComponent, config.CompDigest,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, queued+skipped),
			slog.Int(config.LogKeyQueued, queued),
			slog.Int(config.LogKeySkipped, skipped),
			slog.Int(config.LogKeyCount, sent),
		),
	)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s: %w", config.ErrDigestFailed, errors.Join(failures...))
	}
	return nil
}

func (a *app) queueDigest(ctx context.Context, db *store.DB, u store.User, sendEmpty bool, now time.Time) (bool, error) {
	friends, err := db.ListFriends(ctx, u.ID)
	if err != nil {
		return false, err
	}
	gen, err := a.generator(u.Settings)
	if err != nil {
		return false, err
	}

	email, in := gen.Digest(friends)
	if in.Empty() && !sendEmpty {
		slog.Debug(config.MsgDigestSkipped,
			config.LogKeyComponent, config.CompDigest,
			config.LogKeyUser, u.ID,
		)
		return false, nil
	}

	id, err := db.EnqueueDigest(ctx, u.ID, u.Email, email, now)
	if err != nil {
		return false, err
	}
	slog.Info(config.MsgDigestQueued,
		config.LogKeyComponent, config.CompDigest,
		config.LogKeyUser, u.ID,
		config.LogKeyDigestID, id,
	)
	return true, nil
}

// flushOutbox delivers every pending digest. Delivery failures are recorded on
// the entry and returned; store failures abort the flush.
func flushOutbox(ctx context.Context, db *store.DB, sender delivery.Mailer, now func() time.Time) (int, []error, error) {
	pending, err := db.PendingDigests(ctx)
	if err != nil {
		return 0, nil, err
	}

	var (
		sent     int
		failures []error
	)
	for _, e := range pending {
		if err := sender.SendDigest(ctx, e.UserID, e.Recipient, e.Email); err != nil {
			failures = append(failures, err)
			if err := db.MarkFailed(ctx, e.ID, err); err != nil {
				return sent, failures, err
			}
			continue
		}
		if err := db.MarkSent(ctx, e.ID, now()); err != nil {
			return sent, failures, err
		}
		sent++
	}
	return sent, failures, nil
}
