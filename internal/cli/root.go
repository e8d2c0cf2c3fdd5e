// Package cli wires the engine and its collaborators into cobra commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
)

// app holds the persistent flags shared by every command.
type app struct {
	debug        bool
	friendsPath  string
	settingsPath string
	dbPath       string
	userID       string
	at           string

	setup func(debug bool)
}

// NewRootCmd builds the command tree. setup, when non-nil, runs once the flags
// are parsed and before any command, so the entry point can configure logging.
func NewRootCmd(setup func(debug bool)) *cobra.Command {
	a := &app{setup: setup}

	root := &cobra.Command{
		Use:   config.BinaryName,
		Short: "Stay in touch with the people who matter",
		Long: "Go Friends decides when a friend is due for a message, which birthdays and " +
			"important dates are coming up, and delivers reminders, daily digests and a calendar feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.setup != nil {
				a.setup(a.debug)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&a.friendsPath, config.FlagFriends, "", config.FlagDescFriends)
	flags.StringVar(&a.settingsPath, config.FlagSettings, "", config.FlagDescSet)
	flags.StringVar(&a.dbPath, config.FlagDB, "", config.FlagDescDB)
	flags.StringVar(&a.userID, config.FlagUser, "", config.FlagDescUser)
	flags.StringVar(&a.at, config.FlagAt, "", config.FlagDescAt)

	root.AddCommand(
		a.checkCmd(),
		a.watchCmd(),
		a.digestCmd(),
		a.serveCmd(),
		a.importCmd(),
		a.logCmd(),
		a.statusCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the command named by the process arguments.
func Execute(ctx context.Context, setup func(debug bool)) error {
	return NewRootCmd(setup).ExecuteContext(ctx)
}
