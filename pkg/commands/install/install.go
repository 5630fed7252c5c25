package install

import (
	"context"

	"github.com/dob9601/jointhedots/pkg/commands/internal"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/manifest"
)

// InstallDotfilesOptions defines the options for the InstallDotfiles command
type InstallDotfilesOptions struct {
	internal.SessionOptions
	// Dotfiles names the dotfiles to install. With none and All unset the
	// prompter asks.
	Dotfiles  []string
	All       bool
	Force     bool
	Trust     bool
	SkipHooks bool
	Prompter  manifest.Prompter
	Reporter  manifest.Reporter
}

// InstallDotfiles clones the manifest repository and installs the selected
// dotfiles from it
func InstallDotfiles(ctx context.Context, opts InstallDotfilesOptions) (*manifest.InstallReport, error) {
	log := logging.GetLogger("commands.install")
	log.Debug().Str("repository", opts.Repository).Strs("dotfiles", opts.Dotfiles).Msg("Executing command")

	s, err := internal.OpenSession(ctx, opts.SessionOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("dir", s.Dir).Msg("Could not remove temporary clone")
		}
	}()

	report, err := s.Manifest.Install(ctx, manifest.InstallOptions{
		Workspace:    s.Workspace,
		MetadataPath: s.MetadataPath,
		Requested:    opts.Dotfiles,
		All:          opts.All,
		Force:        opts.Force,
		Trust:        opts.Trust,
		SkipHooks:    opts.SkipHooks,
		Prompter:     opts.Prompter,
		Reporter:     opts.Reporter,
	})
	if err != nil {
		return report, err
	}

	log.Info().Int("installed", len(report.Installed)).Int("skipped", len(report.Skipped)).Msg("Command finished")
	return report, nil
}
