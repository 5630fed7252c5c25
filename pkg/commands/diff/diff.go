package diff

import (
	"context"

	"github.com/dob9601/jointhedots/pkg/commands/internal"
	"github.com/dob9601/jointhedots/pkg/logging"
)

// DiffDotfileOptions defines the options for the DiffDotfile command
type DiffDotfileOptions struct {
	internal.SessionOptions
	Dotfile string
}

// DiffDotfile returns the unified diff from the repository copy of a
// dotfile to the local one
func DiffDotfile(ctx context.Context, opts DiffDotfileOptions) ([]string, error) {
	log := logging.GetLogger("commands.diff")
	log.Debug().Str("repository", opts.Repository).Str("dotfile", opts.Dotfile).Msg("Executing command")

	s, err := internal.OpenSession(ctx, opts.SessionOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("dir", s.Dir).Msg("Could not remove temporary clone")
		}
	}()

	return s.Manifest.Diff(ctx, s.Workspace, opts.Dotfile)
}
