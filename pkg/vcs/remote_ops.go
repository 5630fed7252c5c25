package vcs

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
)

// CloneOptions configures Clone
type CloneOptions struct {
	// Branch to check out. Empty means the remote's default branch.
	Branch string
	Options
}

// Clone clones url into dir, which must not exist or be empty
func Clone(ctx context.Context, url, dir string, opts CloneOptions) (*GitRepository, error) {
	done := logging.LogOperationStart(log, "clone")
	defer done()

	creds := opts.Credentials
	if creds == nil {
		creds = NoCredentials{}
	}

	err := withAuth(url, creds, func(auth transport.AuthMethod) error {
		cloneOpts := &git.CloneOptions{
			URL:  url,
			Auth: auth,
		}
		if opts.Branch != "" {
			cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
			cloneOpts.SingleBranch = true
		}
		_, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "could not clone %s", url).
			WithDetail("url", url)
	}

	log.Info().Str("url", url).Str("dir", dir).Msg("Cloned repository")
	return Open(dir, opts.Options)
}

// Push pushes the current branch to the same branch on the configured remote
func (g *GitRepository) Push(ctx context.Context) error {
	done := logging.LogOperationStart(log, "push")
	defer done()

	r, err := g.open()
	if err != nil {
		return err
	}

	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if branch == "" {
		return errors.New(errors.ErrVCS, "cannot push from a detached HEAD")
	}

	remote, err := r.Remote(g.remote)
	if err != nil {
		return errors.Wrapf(err, errors.ErrVCS, "remote %s not found", g.remote).
			WithDetail("remote", g.remote)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return errors.Newf(errors.ErrVCS, "remote %s has no URL", g.remote)
	}

	creds := g.credentials
	if creds == nil {
		creds = NoCredentials{}
	}

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = withAuth(urls[0], creds, func(auth transport.AuthMethod) error {
		return r.PushContext(ctx, &git.PushOptions{
			RemoteName: g.remote,
			RefSpecs:   []config.RefSpec{refSpec},
			Auth:       auth,
		})
	})
	if stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		log.Debug().Msg("Remote already up to date")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrVCS, "could not push %s to %s", branch, g.remote).
			WithDetails(map[string]interface{}{"branch": branch, "remote": g.remote})
	}

	log.Info().Str("branch", branch).Str("remote", g.remote).Msg("Pushed")
	return nil
}

// withAuth runs op with credentials from creds, asking once more when the
// remote rejects the first attempt
func withAuth(url string, creds CredentialProvider, op func(transport.AuthMethod) error) error {
	auth, err := creds.AuthMethod(url)
	if err != nil {
		return err
	}

	err = op(auth)
	if !isAuthError(err) {
		return err
	}

	retry, rerr := creds.AuthMethod(url)
	if rerr != nil {
		return rerr
	}
	if retry == nil || retry == auth {
		return err
	}
	log.Debug().Str("url", url).Msg("Retrying with credentials")
	return op(retry)
}

func isAuthError(err error) bool {
	return stderrors.Is(err, transport.ErrAuthenticationRequired) ||
		stderrors.Is(err, transport.ErrAuthorizationFailed)
}
