package manifest

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/metadata"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// SyncOptions controls Manifest.Sync
type SyncOptions struct {
	Workspace    Workspace
	MetadataPath string
	Requested    []string
	All          bool
	// Message replaces the generated message of the squashed commit
	Message string
	// AllowNaive syncs without asking when no metadata exists
	AllowNaive bool
	Prompter   Prompter
	Resolver   ConflictResolver
	Reporter   Reporter
}

// SyncReport lists what a sync did
type SyncReport struct {
	Synced    []string
	Unchanged []string
	// Commits holds the commits that were pushed, after squashing
	Commits []string
	Pushed  bool
}

// Sync commits local edits of the selected dotfiles to the repository,
// squashes the commits of this run when the manifest asks for it, pushes
// and saves the metadata store. Nothing is saved when an error stops the
// run, since the metadata would name commits that never reached the remote.
func (m *Manifest) Sync(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	done := logging.LogOperationStart(log, "sync")
	defer done()

	reporter := reporterOrNop(opts.Reporter)
	ws := opts.Workspace

	store, err := metadata.Get(ws.FS, opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	if store == nil {
		if !opts.AllowNaive {
			reporter.Warn("Could not find any metadata on the installed dotfiles. " +
				"A naive sync overwrites the repository copies with the local files.")
			ok, err := confirm(opts.Prompter, "Use naive sync?", false)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.New(errors.ErrNaiveSyncRefused, "aborting sync: no metadata on the installed dotfiles")
			}
		}
		store = metadata.New()
	}

	targets, err := m.TargetDotfiles(opts.Requested, opts.All, opts.Prompter)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	var created []string
	var synced []*Dotfile

	for _, d := range targets {
		reporter.Info("Syncing %s", d.Name)
		meta, _ := store.Lookup(d.Name)

		outcome, err := d.Sync(ctx, ws, m.Config, meta)
		if err != nil {
			return nil, err
		}
		if outcome.Pending != nil {
			if outcome, err = resolveConflict(ctx, opts.Resolver, outcome.Pending); err != nil {
				return nil, err
			}
		}

		store.Set(d.Name, outcome.Metadata)
		if outcome.Commit == "" {
			report.Unchanged = append(report.Unchanged, d.Name)
			continue
		}
		created = append(created, outcome.Commit)
		synced = append(synced, d)
		report.Synced = append(report.Synced, d.Name)
	}

	if len(created) == 0 {
		reporter.Info("Nothing to sync")
		return report, store.Save(ws.FS, opts.MetadataPath)
	}

	report.Commits = created
	if m.shouldSquash(created, opts.Message) {
		message := opts.Message
		if message == "" {
			message = m.Config.CommitMessage(dotfileNames(synced))
		}

		squashed, err := squash(ctx, ws.Repo, created, message)
		if err != nil {
			return nil, err
		}
		for _, d := range synced {
			meta, _ := store.Lookup(d.Name)
			meta.InstallHash = squashed
			meta.SyncHash = squashed
			store.Set(d.Name, *meta)
		}
		report.Commits = []string{squashed}
	} else {
		log.Info().Int("commits", len(created)).Msg("Not squashing commits")
	}

	if err := ws.Repo.Push(ctx); err != nil {
		return nil, err
	}
	report.Pushed = true

	if err := store.Save(ws.FS, opts.MetadataPath); err != nil {
		return nil, err
	}

	reporter.Success("Synced %s", strings.Join(report.Synced, ", "))
	return report, nil
}

// shouldSquash squashes two or more commits, or rewords a single one when a
// message was given
func (m *Manifest) shouldSquash(created []string, message string) bool {
	if !m.Config.SquashCommits {
		return false
	}
	return len(created) > 1 || message != ""
}

func resolveConflict(ctx context.Context, resolver ConflictResolver, pending *ConflictPending) (*SyncOutcome, error) {
	if resolver == nil {
		return nil, errors.Newf(errors.ErrMergeConflict,
			"merging %s stopped on conflicts in %s", pending.Dotfile, strings.Join(pending.Paths, ", ")).
			WithDetails(map[string]interface{}{"dotfile": pending.Dotfile, "paths": pending.Paths})
	}
	if err := resolver.Resolve(ctx, pending); err != nil {
		return nil, err
	}
	return pending.Complete(ctx)
}

// squash replaces the given commits, which must sit on top of each other at
// the tip of the current branch, with one commit carrying message. The
// oldest commit is picked by committer time; ties keep the given order.
func squash(ctx context.Context, repo vcs.Repository, commits []string, message string) (string, error) {
	var oldest *vcs.Commit
	for _, hash := range commits {
		c, err := repo.Resolve(ctx, hash)
		if err != nil {
			return "", err
		}
		if oldest == nil || c.When.Before(oldest.When) {
			oldest = c
		}
	}
	if len(oldest.Parents) == 0 {
		return "", errors.Newf(errors.ErrVCS, "cannot squash onto the parent of root commit %s", oldest.Hash)
	}

	base := oldest.Parents[0]
	if err := repo.SoftReset(ctx, base); err != nil {
		return "", err
	}

	hash, err := repo.Commit(ctx, vcs.CommitRequest{Message: message})
	if stderrors.Is(err, vcs.ErrNothingToCommit) {
		log.Info().Str("base", base).Msg("Squashed commits cancel out")
		return repo.Head(ctx)
	}
	if err != nil {
		return "", err
	}

	log.Info().Str("commit", hash).Int("squashed", len(commits)).Msg("Squashed sync commits")
	return hash, nil
}

// Diff returns the diff between the repository copy and the local target of
// the named dotfile
func (m *Manifest) Diff(ctx context.Context, ws Workspace, name string) ([]string, error) {
	d, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return d.Diff(ctx, ws)
}
