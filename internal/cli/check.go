package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/delivery"
	"github.com/tartampluch/go-friends/internal/engine"
)

func (a *app) checkCmd() *cobra.Command {
	var (
		ignoreSchedule bool
		webhook        string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the friends once and deliver the notifications due now",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFor(webhook)
			if err != nil {
				return err
			}
			return a.runCheck(cmd.Context(), cmd.OutOrStdout(), sender, ignoreSchedule)
		},
	}
	cmd.Flags().BoolVar(&ignoreSchedule, config.FlagNow, false, config.FlagDescNow)
	cmd.Flags().StringVar(&webhook, config.FlagWebhook, "", config.FlagDescWebhook)
	return cmd
}

func (a *app) runCheck(ctx context.Context, out io.Writer, sender delivery.Notifier, ignoreSchedule bool) error {
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

	gate := engine.NewGate(settings, nil)
	gate.IgnoreSchedule = ignoreSchedule

	requests := gen.Notifications(ws.Friends, gate)
	err = a.deliver(ctx, out, sender, requests)

	slog.Info(config.MsgCheckDone,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyCount, len(requests),
	)
	return err
}

// deliver prints and sends every request. A failed delivery does not stop the
// others.
func (a *app) deliver(ctx context.Context, out io.Writer, sender delivery.Notifier, requests []engine.NotificationRequest) error {
	var errs []error
	for _, r := range requests {
		_, _ = fmt.Fprintf(out, config.FormatNotificationLine, r.Kind, r.Title, r.Body)
		if err := sender.Notify(ctx, a.userID, r); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", config.ErrNotifyFailed, errors.Join(errs...))
	}
	return nil
}
