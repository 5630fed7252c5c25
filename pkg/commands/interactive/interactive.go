package interactive

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/dob9601/jointhedots/pkg/commands/install"
	"github.com/dob9601/jointhedots/pkg/commands/internal"
	"github.com/dob9601/jointhedots/pkg/config"
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/manifest"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

var log = logging.GetLogger("commands.interactive")

const maxAttempts = 3

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Wizard asks the questions of the interactive install
type Wizard interface {
	manifest.Prompter
	Input(message, defaultValue string) (string, error)
	Select(message string, options []string, defaultOption string) (string, error)
}

// RunWizardOptions defines the options for RunWizard
type RunWizardOptions struct {
	internal.SessionOptions
	Wizard   Wizard
	Reporter manifest.Reporter
}

// RunWizard asks for the repository (owner/name, or the absolute path of a
// local clone), its host and whether existing files
// may be overwritten, then installs the dotfiles the user selects
func RunWizard(ctx context.Context, opts RunWizardOptions) (*manifest.InstallReport, error) {
	if opts.Wizard == nil {
		return nil, errors.New(errors.ErrInvalidInput, "the interactive installer needs a terminal")
	}

	repository, err := askRepository(opts.Wizard)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, len(vcs.Hosts))
	for i, h := range vcs.Hosts {
		hosts[i] = h.String()
	}
	chosen, err := opts.Wizard.Select("Repository source", hosts, vcs.GitHub.String())
	if err != nil {
		return nil, err
	}
	host, err := vcs.ParseHost(chosen)
	if err != nil {
		return nil, err
	}

	force, err := opts.Wizard.Confirm("Overwrite existing dotfiles?", false)
	if err != nil {
		return nil, err
	}

	session := opts.SessionOptions
	session.Repository = repository
	cfg := config.Default()
	if session.Config != nil {
		copied := *session.Config
		cfg = &copied
	}
	cfg.Repository.Source = string(host)
	session.Config = cfg

	return install.InstallDotfiles(ctx, install.InstallDotfilesOptions{
		SessionOptions: session,
		Force:          force,
		Prompter:       opts.Wizard,
		Reporter:       opts.Reporter,
	})
}

func askRepository(w Wizard) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := w.Input("Target repository (owner/name)", "")
		if err != nil {
			return "", err
		}
		if repositoryPattern.MatchString(answer) || filepath.IsAbs(answer) {
			return answer, nil
		}
		log.Warn().Str("input", answer).Msg("Repository should follow the format owner/name")
	}
	return "", errors.New(errors.ErrInvalidInput, "no valid repository given; expected owner/name")
}
