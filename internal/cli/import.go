package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
	"github.com/tartampluch/go-friends/internal/source"
	"github.com/zalando/go-keyring"
)

type importOptions struct {
	vcf      string
	url      string
	webUser  string
	password string
	savePass bool
}

func (a *app) importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import friends from a vCard file, a CardDAV/WebDAV URL or a JSON snapshot into the store",
		Long: "Friends are upserted by ID: vCards keep their UID, or get an ID derived from their name " +
			"and birthday, so importing the same address book twice updates rather than duplicates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), cmd.OutOrStdout(), opts, source.NewHTTPFetcher())
		},
	}
	cmd.Flags().StringVar(&opts.vcf, config.FlagVCF, "", config.FlagDescVCF)
	cmd.Flags().StringVar(&opts.url, config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().StringVar(&opts.webUser, config.FlagWebUser, "", config.FlagDescWebUser)
	cmd.Flags().StringVar(&opts.password, config.FlagPassword, "", config.FlagDescPass)
	cmd.Flags().BoolVar(&opts.savePass, config.FlagSavePass, false, config.FlagDescSave)
	return cmd
}

func (a *app) runImport(ctx context.Context, out io.Writer, opts importOptions, fetcher source.VCardFetcher) error {
	if a.userID == "" {
		return errors.New(config.ErrUserRequired)
	}

	friends, err := a.importSource(ctx, opts, fetcher)
	if err != nil {
		return err
	}

	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.EnsureUser(ctx, a.userID); err != nil {
		return err
	}
	if err := db.SaveFriends(ctx, a.userID, friends); err != nil {
		return err
	}

	slog.Info(config.MsgImported,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyUser, a.userID,
		config.LogKeyCount, len(friends),
	)
	_, _ = fmt.Fprintf(out, config.FormatImportSummary, len(friends), a.userID)
	return nil
}

func (a *app) importSource(ctx context.Context, opts importOptions, fetcher source.VCardFetcher) ([]engine.Friend, error) {
	if opts.vcf == "" && opts.url == "" {
		if a.friendsPath == "" {
			return nil, errors.New(config.ErrImportMissing)
		}
		return loadFriendsFile(ctx, a.friendsPath)
	}

	src := source.VCardSource{
		Path:    opts.vcf,
		URL:     opts.url,
		User:    opts.webUser,
		Pass:    opts.password,
		Fetcher: fetcher,
	}
	if src.Path == "" && src.User != "" {
		switch {
		case src.Pass == "":
			src.Pass = lookupPassword(src.User)
		case opts.savePass:
			savePassword(src.User, src.Pass)
		}
	}
	return src.Load(ctx)
}

// lookupPassword reads the CardDAV password stored in the OS keyring.
func lookupPassword(user string) string {
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Warn(config.MsgPassFail,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyUser, user,
			config.LogKeyError, err,
		)
		return ""
	}
	return pass
}

func savePassword(user, pass string) {
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		slog.Warn(config.MsgPassSaveFail,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyUser, user,
			config.LogKeyError, err,
		)
	}
}
