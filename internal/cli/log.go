package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

type logOptions struct {
	friendID string
	method   string
	notes    string
	date     string
}

func (a *app) logCmd() *cobra.Command {
	var opts logOptions

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record that you were in touch with a friend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLog(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.friendID, config.FlagFriendID, "", config.FlagDescFriend)
	cmd.Flags().StringVar(&opts.method, config.FlagMethod, config.DefaultContactMethod, config.FlagDescMethod)
	cmd.Flags().StringVar(&opts.notes, config.FlagNotes, "", config.FlagDescNotes)
	cmd.Flags().StringVar(&opts.date, config.FlagDate, "", config.FlagDescDate)
	return cmd
}

func (a *app) runLog(ctx context.Context, out io.Writer, opts logOptions) error {
	if opts.friendID == "" {
		return errors.New(config.ErrFriendRequired)
	}

	clock, err := a.clock()
	if err != nil {
		return err
	}
	now := clock.Now()

	in := engine.Interaction{
		Date:      engine.StartOfDay(now),
		Timestamp: now,
		Method:    strings.TrimSpace(opts.method),
		Notes:     strings.TrimSpace(opts.notes),
	}
	if opts.date != "" {
		if in.Date, _, err = engine.ParseDate(opts.date); err != nil {
			return err
		}
	}

	db, err := a.requireUser()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.AppendInteraction(ctx, a.userID, opts.friendID, in); err != nil {
		return err
	}

	slog.Info(config.MsgInteractionAdded,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyUser, a.userID,
		config.LogKeyFriend, opts.friendID,
	)
	_, _ = fmt.Fprintf(out, config.FormatLogSummary, opts.friendID, in.Method, engine.FormatDate(in.Date))
	return nil
}
