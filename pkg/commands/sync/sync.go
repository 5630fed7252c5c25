package sync

import (
	"context"

	"github.com/dob9601/jointhedots/pkg/commands/internal"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/manifest"
)

// SyncDotfilesOptions defines the options for the SyncDotfiles command
type SyncDotfilesOptions struct {
	internal.SessionOptions
	Dotfiles []string
	All      bool
	// Message replaces the generated commit message
	Message string
	// Naive allows syncing without metadata without asking
	Naive    bool
	Prompter manifest.Prompter
	Resolver manifest.ConflictResolver
	Reporter manifest.Reporter
}

// SyncDotfiles clones the manifest repository, commits local edits of the
// selected dotfiles to it and pushes the result
func SyncDotfiles(ctx context.Context, opts SyncDotfilesOptions) (*manifest.SyncReport, error) {
	log := logging.GetLogger("commands.sync")
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

	report, err := s.Manifest.Sync(ctx, manifest.SyncOptions{
		Workspace:    s.Workspace,
		MetadataPath: s.MetadataPath,
		Requested:    opts.Dotfiles,
		All:          opts.All,
		Message:      opts.Message,
		AllowNaive:   opts.Naive,
		Prompter:     opts.Prompter,
		Resolver:     opts.Resolver,
		Reporter:     opts.Reporter,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("synced", len(report.Synced)).Bool("pushed", report.Pushed).Msg("Command finished")
	return report, nil
}
