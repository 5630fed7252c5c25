package manifest

import (
	"context"
	"strings"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/metadata"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// ConflictPending is a merge of local changes that stopped on conflicts.
// The working tree at RepoDir holds the conflicted files; once every path is
// resolved and staged, Complete concludes the merge.
type ConflictPending struct {
	Dotfile string
	Paths   []string
	RepoDir string

	repo    vcs.Repository
	branch  string
	message string
	base    metadata.DotfileMetadata
	done    bool
}

// Unresolved lists the paths git still reports as unmerged
func (p *ConflictPending) Unresolved(ctx context.Context) ([]string, error) {
	return p.repo.Conflicts(ctx)
}

// Complete commits the resolved merge, or accepts a merge commit the user
// already created, and deletes the temporary branch. It fails with a
// MergeConflict error while paths remain unmerged.
func (p *ConflictPending) Complete(ctx context.Context) (*SyncOutcome, error) {
	if p.done {
		return nil, errors.Newf(errors.ErrInternal, "merge for %s was already completed", p.Dotfile)
	}

	logger := logging.WithDotfile("manifest", p.Dotfile)

	remaining, err := p.Unresolved(ctx)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, errors.Newf(errors.ErrMergeConflict,
			"unresolved conflicts remain for %s: %s", p.Dotfile, strings.Join(remaining, ", ")).
			WithDetails(map[string]interface{}{"dotfile": p.Dotfile, "paths": remaining})
	}

	hash, err := p.repo.CompleteMerge(ctx, p.branch, p.message)
	if err != nil {
		return nil, err
	}

	p.done = true
	if err := p.repo.DeleteBranch(ctx, p.branch); err != nil {
		logger.Warn().Err(err).Str("branch", p.branch).Msg("Could not delete temporary branch")
	}

	logger.Info().Str("commit", hash).Msg("Completed conflicted merge")
	return &SyncOutcome{
		Metadata: metadata.DotfileMetadata{
			InstallHash:     hash,
			SyncHash:        hash,
			PreInstallHash:  p.base.PreInstallHash,
			PostInstallHash: p.base.PostInstallHash,
		},
		Commit: hash,
	}, nil
}
