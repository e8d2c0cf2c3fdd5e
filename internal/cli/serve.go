package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		port    string
		horizon int
		trigger string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upcoming birthdays and important dates as an iCalendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePort(port); err != nil {
				return err
			}
			return a.runServe(cmd.Context(), port, horizon, trigger)
		},
	}
	cmd.Flags().StringVar(&port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().IntVar(&horizon, config.FlagHorizon, config.DefaultFeedHorizon, config.FlagDescHorizon)
	cmd.Flags().StringVar(&trigger, config.FlagTrigger, "", config.FlagDescTrigger)
	return cmd
}

func (a *app) runServe(ctx context.Context, port string, horizon int, trigger string) error {
	build := a.feedBuilder(horizon, trigger)
	srv := server.NewCalendarServer(port)

	// Surface configuration errors before listening.
	if err := srv.Refresh(ctx, build); err != nil {
		return err
	}
	go srv.Watch(ctx, config.DefaultFeedRefresh, build)

	return srv.Start(ctx)
}

// feedBuilder reloads the snapshot on every build.
func (a *app) feedBuilder(horizon int, trigger string) server.FeedBuilder {
	return func(ctx context.Context) ([]byte, int, error) {
		ws, err := a.open(ctx)
		if err != nil {
			return nil, 0, err
		}
		defer func() { _ = ws.Close() }()

		gen, err := a.generator(ws.Settings)
		if err != nil {
			return nil, 0, err
		}
		return gen.Calendar(ws.Friends, horizon, trigger)
	}
}

func validatePort(port string) error {
	if port == "" {
		return errors.New(config.ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %q", config.ErrPortNumber, port)
	}
	if n < config.MinPort || n > config.MaxPort {
		return fmt.Errorf("%s: %d", config.ErrPortRange, n)
	}
	return nil
}
