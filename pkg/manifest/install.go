package manifest

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/metadata"
)

// InstallOptions controls Manifest.Install
type InstallOptions struct {
	Workspace    Workspace
	MetadataPath string
	Requested    []string
	All          bool
	// Force overwrites existing targets without asking and ignores local
	// changes made since the last sync
	Force bool
	// Trust runs hooks without asking first
	Trust     bool
	SkipHooks bool
	Prompter  Prompter
	Reporter  Reporter
}

// InstallReport lists what an install did
type InstallReport struct {
	Installed []string
	Skipped   []string
}

// Install copies the selected dotfiles from the repository to their targets
// and records their provenance. The metadata store is saved even when an
// error stops the run, so dotfiles installed before the failure keep
// accurate metadata.
func (m *Manifest) Install(ctx context.Context, opts InstallOptions) (report *InstallReport, err error) {
	done := logging.LogOperationStart(log, "install")
	defer done()

	reporter := reporterOrNop(opts.Reporter)
	ws := opts.Workspace

	store, err := metadata.GetOrCreate(ws.FS, opts.MetadataPath)
	if err != nil {
		return nil, err
	}

	targets, err := m.TargetDotfiles(opts.Requested, opts.All, opts.Prompter)
	if err != nil {
		return nil, err
	}

	skipHooks := opts.SkipHooks
	if !skipHooks && !opts.Trust && HasUnexecutedRunStages(targets, store) {
		reporter.Warn("Some of the dotfiles being installed run pre_install or post_install commands. " +
			"If you do not trust this manifest you can skip them.")
		if skipHooks, err = confirm(opts.Prompter, "Skip running pre/post install?", false); err != nil {
			return nil, err
		}
	}

	report = &InstallReport{}
	defer func() {
		if saveErr := store.Save(ws.FS, opts.MetadataPath); saveErr != nil && err == nil {
			err = saveErr
		}
	}()

	for _, d := range targets {
		exists, err := filesystem.Exists(ws.FS, d.TargetPath())
		if err != nil {
			return report, errors.Wrapf(err, errors.ErrFileCopy, "cannot inspect %s", d.TargetPath())
		}
		if exists && !opts.Force {
			same, err := d.matchesRepository(ws)
			if err != nil {
				return report, err
			}
			exists = !same
		}
		if exists && !opts.Force {
			overwrite, err := confirm(opts.Prompter,
				fmt.Sprintf("Dotfile %q already exists on disk. Overwrite?", d.Name), false)
			if err != nil {
				return report, err
			}
			if !overwrite {
				log.Info().Str("dotfile", d.Name).Msg("Keeping existing target")
				report.Skipped = append(report.Skipped, d.Name)
				continue
			}
		}

		reporter.Info("Installing %s", d.Name)
		meta, _ := store.Lookup(d.Name)
		installed, err := d.Install(ctx, ws, meta, skipHooks, opts.Force)
		if err != nil {
			return report, err
		}
		store.Set(d.Name, installed)
		report.Installed = append(report.Installed, d.Name)
		reporter.Success("Installed %s to %s", d.Name, d.Target)
	}

	return report, nil
}

// matchesRepository reports whether the target already holds the
// repository copy at HEAD
func (d *Dotfile) matchesRepository(ws Workspace) (bool, error) {
	data, err := afero.ReadFile(ws.FS, d.RepoPath(ws.Repo))
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s from the repository", d.File).
			WithDetail("dotfile", d.Name)
	}
	same, err := filesystem.SameContent(ws.FS, d.TargetPath(), data)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s", d.TargetPath()).
			WithDetail("dotfile", d.Name)
	}
	return same, nil
}

func confirm(p Prompter, message string, def bool) (bool, error) {
	if p == nil {
		return false, errors.Newf(errors.ErrInvalidInput, "cannot ask %q without a terminal", message)
	}
	return p.Confirm(message, def)
}
