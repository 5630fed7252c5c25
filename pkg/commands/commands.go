// Package commands provides the command implementations behind the jtd CLI.
//
// Each command lives in its own subdirectory:
//   - install/     - InstallDotfiles
//   - sync/        - SyncDotfiles
//   - diff/        - DiffDotfile
//   - interactive/ - RunWizard
//   - internal/    - cloning the manifest repository and loading its manifest
//
// This file re-exports the command functions so callers import one package.
package commands

import (
	"context"

	"github.com/dob9601/jointhedots/pkg/commands/diff"
	"github.com/dob9601/jointhedots/pkg/commands/install"
	"github.com/dob9601/jointhedots/pkg/commands/interactive"
	"github.com/dob9601/jointhedots/pkg/commands/internal"
	synccmd "github.com/dob9601/jointhedots/pkg/commands/sync"
	"github.com/dob9601/jointhedots/pkg/config"
	"github.com/dob9601/jointhedots/pkg/manifest"
)

// SessionOptions describes the repository a command works on
type SessionOptions = internal.SessionOptions

type InstallDotfilesOptions = install.InstallDotfilesOptions

// InstallDotfiles installs dotfiles from a manifest repository.
func InstallDotfiles(ctx context.Context, opts InstallDotfilesOptions) (*manifest.InstallReport, error) {
	return install.InstallDotfiles(ctx, opts)
}

type SyncDotfilesOptions = synccmd.SyncDotfilesOptions

// SyncDotfiles commits and pushes local edits of dotfiles.
func SyncDotfiles(ctx context.Context, opts SyncDotfilesOptions) (*manifest.SyncReport, error) {
	return synccmd.SyncDotfiles(ctx, opts)
}

type DiffDotfileOptions = diff.DiffDotfileOptions

// DiffDotfile compares a dotfile with its repository copy.
func DiffDotfile(ctx context.Context, opts DiffDotfileOptions) ([]string, error) {
	return diff.DiffDotfile(ctx, opts)
}

type RunWizardOptions = interactive.RunWizardOptions

// Wizard asks the questions of the interactive install
type Wizard = interactive.Wizard

// RunWizard installs dotfiles after asking for the repository.
func RunWizard(ctx context.Context, opts RunWizardOptions) (*manifest.InstallReport, error) {
	return interactive.RunWizard(ctx, opts)
}

// ResolveMetadataPath picks the metadata store location
func ResolveMetadataPath(override string, cfg *config.Config) (string, error) {
	return internal.ResolveMetadataPath(override, cfg)
}
