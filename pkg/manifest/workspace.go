package manifest

import (
	"context"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/hooks"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// Workspace bundles what dotfile operations act on. FS must see both the
// repository working tree and the dotfile targets.
type Workspace struct {
	FS    afero.Fs
	Repo  vcs.Repository
	Hooks hooks.Runner
}

// Selector chooses dotfiles interactively
type Selector interface {
	MultiSelect(message string, options []string) ([]string, error)
}

// Prompter asks the user yes/no questions and for selections
type Prompter interface {
	Selector
	Confirm(message string, defaultValue bool) (bool, error)
}

// ConflictResolver brings a conflicted merge to a state where every path
// is resolved and staged
type ConflictResolver interface {
	Resolve(ctx context.Context, pending *ConflictPending) error
}

// Reporter receives progress messages meant for the user
type Reporter interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Info(string, ...interface{})    {}
func (nopReporter) Success(string, ...interface{}) {}
func (nopReporter) Warn(string, ...interface{})    {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
