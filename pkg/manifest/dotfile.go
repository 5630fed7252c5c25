package manifest

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/hooks"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/metadata"
	"github.com/dob9601/jointhedots/pkg/paths"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

const corruptAdvice = "fix the hash in the metadata file or fresh-install this dotfile with --force"

// Dotfile is one tracked configuration file
type Dotfile struct {
	Name        string   `yaml:"-"`
	File        string   `yaml:"file"`
	Target      string   `yaml:"target"`
	PreInstall  []string `yaml:"pre_install"`
	PostInstall []string `yaml:"post_install"`
}

// SyncOutcome is the result of syncing one dotfile
type SyncOutcome struct {
	// Metadata is the dotfile's new provenance. It is only final when
	// Pending is nil.
	Metadata metadata.DotfileMetadata
	// Commit is the commit this sync created, or "" when nothing changed
	Commit string
	// Pending is set when the merge stopped on conflicts
	Pending *ConflictPending
}

// TargetPath returns the home-expanded target
func (d *Dotfile) TargetPath() string {
	return paths.ExpandHome(d.Target)
}

// RepoPath returns the dotfile's location in the repository working tree
func (d *Dotfile) RepoPath(repo vcs.Repository) string {
	return filepath.Join(repo.Dir(), filepath.FromSlash(d.File))
}

// PreInstallHash fingerprints the pre_install commands
func (d *Dotfile) PreInstallHash() string {
	return hooks.Hash(d.PreInstall)
}

// PostInstallHash fingerprints the post_install commands
func (d *Dotfile) PostInstallHash() string {
	return hooks.Hash(d.PostInstall)
}

// HasUnexecutedRunStages reports whether installing would run hooks that
// have not run before
func (d *Dotfile) HasUnexecutedRunStages(meta *metadata.DotfileMetadata) bool {
	if meta == nil {
		return len(d.PreInstall) > 0 || len(d.PostInstall) > 0
	}
	return (len(d.PreInstall) > 0 && meta.PreInstallHash != d.PreInstallHash()) ||
		(len(d.PostInstall) > 0 && meta.PostInstallHash != d.PostInstallHash())
}

// HasChanged reports whether the local target differs from the dotfile as
// recorded in meta.SyncHash. The repository is only read, never checked out.
func (d *Dotfile) HasChanged(ctx context.Context, ws Workspace, meta *metadata.DotfileMetadata) (bool, error) {
	if meta.SyncHash == "" {
		return false, errors.Newf(errors.ErrCorruptMetadata, "no sync hash recorded for %s; %s", d.Name, corruptAdvice).
			WithDetail("dotfile", d.Name)
	}

	recorded, err := ws.Repo.ReadFileAt(ctx, meta.SyncHash, d.File)
	existed := true
	switch {
	case stderrors.Is(err, vcs.ErrRevisionNotFound):
		return false, errors.Wrapf(err, errors.ErrCorruptMetadata,
			"could not find last synced commit %s for %s; %s", meta.SyncHash, d.Name, corruptAdvice).
			WithDetails(map[string]interface{}{"dotfile": d.Name, "sync_hash": meta.SyncHash})
	case stderrors.Is(err, vcs.ErrPathNotFound):
		existed = false
	case err != nil:
		return false, err
	}

	local, err := afero.ReadFile(ws.FS, d.TargetPath())
	if err != nil {
		if os.IsNotExist(err) {
			return existed, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s", d.TargetPath()).
			WithDetail("dotfile", d.Name)
	}
	if !existed {
		return true, nil
	}

	return !bytes.Equal(local, recorded), nil
}

// Install copies the repository content at HEAD to the target, running
// hooks that have not run yet unless skipHooks is set. With prior metadata
// and without force, local edits made since the last sync abort the install
// before anything is touched.
func (d *Dotfile) Install(ctx context.Context, ws Workspace, meta *metadata.DotfileMetadata, skipHooks, force bool) (metadata.DotfileMetadata, error) {
	logger := logging.WithDotfile("manifest", d.Name)

	head, err := ws.Repo.Head(ctx)
	if err != nil {
		return metadata.DotfileMetadata{}, err
	}

	if meta != nil && !force {
		changed, err := d.localEditsAtRisk(ctx, ws, meta)
		if err != nil {
			return metadata.DotfileMetadata{}, err
		}
		if changed {
			return metadata.DotfileMetadata{}, errors.Newf(errors.ErrLocalChangesConflict,
				"refusing to install %s: it has changed since it was last synced (%s); run \"jtd sync %s\" or install again with --force",
				d.Name, meta.SyncHash, d.Name).
				WithDetails(map[string]interface{}{"dotfile": d.Name, "sync_hash": meta.SyncHash})
		}
	}

	var storedPre, storedPost string
	if meta != nil {
		storedPre, storedPost = meta.PreInstallHash, meta.PostInstallHash
	}

	var preHash, postHash string
	if !skipHooks {
		if preHash, err = d.runStage(ctx, ws, "pre_install", d.PreInstall, meta != nil, storedPre); err != nil {
			return metadata.DotfileMetadata{}, err
		}
	}

	if err := filesystem.CopyFile(ws.FS, d.RepoPath(ws.Repo), d.TargetPath()); err != nil {
		return metadata.DotfileMetadata{}, errors.Wrapf(err, errors.ErrFileCopy, "could not install %s", d.Name).
			WithDetails(map[string]interface{}{"dotfile": d.Name, "target": d.TargetPath()})
	}
	logger.Info().Str("target", d.TargetPath()).Str("commit", head).Msg("Installed dotfile")

	if !skipHooks {
		if postHash, err = d.runStage(ctx, ws, "post_install", d.PostInstall, meta != nil, storedPost); err != nil {
			return metadata.DotfileMetadata{}, err
		}
	}

	return metadata.DotfileMetadata{
		InstallHash:     head,
		SyncHash:        head,
		PreInstallHash:  preHash,
		PostInstallHash: postHash,
	}, nil
}

// localEditsAtRisk reports whether installing would overwrite edits made
// since the last sync. A deleted target holds nothing to lose.
func (d *Dotfile) localEditsAtRisk(ctx context.Context, ws Workspace, meta *metadata.DotfileMetadata) (bool, error) {
	present, err := filesystem.Exists(ws.FS, d.TargetPath())
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileCopy, "cannot inspect %s", d.TargetPath()).
			WithDetail("dotfile", d.Name)
	}
	if !present {
		logger := logging.WithDotfile("manifest", d.Name)
		logger.Info().Str("target", d.TargetPath()).Msg("Target is missing, reinstalling")
		return false, nil
	}
	return d.HasChanged(ctx, ws, meta)
}

// runStage runs commands unless they already ran in their current form and
// returns the hash to record
func (d *Dotfile) runStage(ctx context.Context, ws Workspace, stage string, commands []string, haveMeta bool, stored string) (string, error) {
	if len(commands) == 0 {
		return "", nil
	}

	logger := logging.WithDotfile("hooks", d.Name)
	current := hooks.Hash(commands)
	if haveMeta && stored == current {
		logger.Info().Str("stage", stage).Msg("Skipping hooks that ran in a previous install")
		return stored, nil
	}

	if ws.Hooks == nil {
		return "", errors.Newf(errors.ErrInternal, "no hook runner configured for %s", d.Name)
	}

	logger.Info().Str("stage", stage).Int("steps", len(commands)).Msg("Running hooks")
	if err := ws.Hooks.Run(ctx, commands); err != nil {
		return "", errors.Wrapf(err, errors.ErrHookExecution, "%s of %s failed", stage, d.Name).
			WithDetails(map[string]interface{}{"dotfile": d.Name, "stage": stage})
	}
	return current, nil
}

// Sync records the local target in the repository.
//
// Without metadata the local content is committed on top of HEAD. With
// metadata and local edits, the edits are committed on a temporary branch
// rooted at the install commit and merged into the current branch, so
// upstream changes made in the meantime are preserved. A conflicted merge
// is returned as Pending; the caller resolves and completes it.
func (d *Dotfile) Sync(ctx context.Context, ws Workspace, cfg SyncConfig, meta *metadata.DotfileMetadata) (*SyncOutcome, error) {
	if meta == nil {
		return d.naiveSync(ctx, ws, cfg)
	}

	logger := logging.WithDotfile("manifest", d.Name)

	changed, err := d.HasChanged(ctx, ws, meta)
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.Info().Msg("No local changes")
		return &SyncOutcome{Metadata: *meta}, nil
	}

	base, err := ws.Repo.Resolve(ctx, meta.InstallHash)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCorruptMetadata,
			"could not find install commit %s for %s; %s", meta.InstallHash, d.Name, corruptAdvice).
			WithDetails(map[string]interface{}{"dotfile": d.Name, "install_hash": meta.InstallHash})
	}

	original, err := ws.Repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if original == "" {
		return nil, errors.New(errors.ErrVCS, "cannot sync onto a detached HEAD")
	}

	branch := mergeBranchName(d.Name)
	if err := ws.Repo.CreateBranch(ctx, branch, base.Hash); err != nil {
		return nil, err
	}

	pending := false
	defer func() {
		if !pending {
			if err := ws.Repo.DeleteBranch(ctx, branch); err != nil {
				logger.Warn().Err(err).Str("branch", branch).Msg("Could not delete temporary branch")
			}
		}
	}()

	localCommit, err := d.commitOnBranch(ctx, ws, branch, original, cfg)
	if err != nil {
		if stderrors.Is(err, vcs.ErrNothingToCommit) {
			logger.Info().Msg("Local content matches the install commit")
			return &SyncOutcome{Metadata: *meta}, nil
		}
		return nil, err
	}
	logger.Debug().Str("commit", localCommit).Str("base", base.Hash).Msg("Committed local changes")

	message := cfg.CommitMessage([]string{d.Name})
	result, err := ws.Repo.Merge(ctx, branch, message)
	if err != nil {
		return nil, err
	}

	if !result.Clean {
		pending = true
		logger.Warn().Strs("paths", result.Conflicts).Msg("Merge conflicts")
		return &SyncOutcome{
			Pending: &ConflictPending{
				Dotfile: d.Name,
				Paths:   result.Conflicts,
				RepoDir: ws.Repo.Dir(),
				repo:    ws.Repo,
				branch:  branch,
				message: message,
				base:    *meta,
			},
		}, nil
	}

	logger.Info().Str("commit", result.Commit).Msg("Merged local changes")
	return &SyncOutcome{
		Metadata: metadata.DotfileMetadata{
			InstallHash:     result.Commit,
			SyncHash:        result.Commit,
			PreInstallHash:  meta.PreInstallHash,
			PostInstallHash: meta.PostInstallHash,
		},
		Commit: result.Commit,
	}, nil
}

// commitOnBranch checks out branch, commits the local target there and
// returns to original, also on failure
func (d *Dotfile) commitOnBranch(ctx context.Context, ws Workspace, branch, original string, cfg SyncConfig) (hash string, err error) {
	if err := ws.Repo.Checkout(ctx, branch); err != nil {
		return "", err
	}
	defer func() {
		if cerr := ws.Repo.Checkout(ctx, original); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := filesystem.CopyFile(ws.FS, d.TargetPath(), d.RepoPath(ws.Repo)); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileCopy, "could not copy %s into the repository", d.Name).
			WithDetail("dotfile", d.Name)
	}

	return ws.Repo.Commit(ctx, vcs.CommitRequest{
		Paths:   []string{d.File},
		Message: cfg.CommitMessage([]string{d.Name}),
	})
}

func (d *Dotfile) naiveSync(ctx context.Context, ws Workspace, cfg SyncConfig) (*SyncOutcome, error) {
	logger := logging.WithDotfile("manifest", d.Name)

	if err := filesystem.CopyFile(ws.FS, d.TargetPath(), d.RepoPath(ws.Repo)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileCopy, "could not copy %s into the repository", d.Name).
			WithDetail("dotfile", d.Name)
	}

	hash, err := ws.Repo.Commit(ctx, vcs.CommitRequest{
		Paths:   []string{d.File},
		Message: cfg.CommitMessage([]string{d.Name}),
	})
	created := hash
	if stderrors.Is(err, vcs.ErrNothingToCommit) {
		logger.Info().Msg("Repository already holds the local content")
		if hash, err = ws.Repo.Head(ctx); err != nil {
			return nil, err
		}
		created = ""
	} else if err != nil {
		return nil, err
	}

	return &SyncOutcome{
		Metadata: metadata.DotfileMetadata{
			InstallHash:     hash,
			SyncHash:        hash,
			PreInstallHash:  d.PreInstallHash(),
			PostInstallHash: d.PostInstallHash(),
		},
		Commit: created,
	}, nil
}

// Diff returns the unified diff from the repository copy at HEAD to the
// local target. A target that is not installed is an error.
func (d *Dotfile) Diff(ctx context.Context, ws Workspace) ([]string, error) {
	present, err := filesystem.Exists(ws.FS, d.TargetPath())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileCopy, "cannot inspect %s", d.TargetPath()).
			WithDetail("dotfile", d.Name)
	}
	if !present {
		return nil, errors.Newf(errors.ErrFileCopy, "%s is not installed: %s does not exist", d.Name, d.TargetPath()).
			WithDetails(map[string]interface{}{"dotfile": d.Name, "path": d.TargetPath()})
	}
	return ws.Repo.DiffFiles(ctx, d.RepoPath(ws.Repo), d.TargetPath())
}

var unsafeBranchChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func mergeBranchName(name string) string {
	return fmt.Sprintf("jtd-merge-%s", unsafeBranchChars.ReplaceAllString(name, "-"))
}
