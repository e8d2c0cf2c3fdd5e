package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cadence, streak and consistency of every friend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) runStatus(ctx context.Context, out io.Writer) error {
	ws, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	clock, err := a.clock()
	if err != nil {
		return err
	}
	today := clock.Now()

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, config.StatusHeader)
	for i := range ws.Friends {
		f := &ws.Friends[i]
		ev := engine.Evaluate(f, today)

		last, since := config.StatusNever, config.StatusNone
		if !ev.LastContact.IsZero() {
			last = engine.FormatDate(ev.LastContact)
			since = strconv.Itoa(ev.DaysSinceContact)
		}
		due := config.StatusNotDue
		if ev.NeedsContact {
			due = config.StatusDue
		}

		_, _ = fmt.Fprintf(tw, config.FormatStatusRow,
			f.ID, f.Name, f.Tier, ev.IntervalDays, last, since, due, ev.Streak, ev.Consistency)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, config.FormatDashboard,
		engine.AverageConsistency(ws.Friends, today),
		engine.OnTrackPercentage(ws.Friends, today),
	)
	return err
}
