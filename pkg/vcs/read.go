package vcs

import (
	"context"
	stderrors "errors"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/dob9601/jointhedots/pkg/errors"
)

// open returns a fresh go-git handle so reads see objects written by the CLI
func (g *GitRepository) open() (*git.Repository, error) {
	r, err := git.PlainOpen(g.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "cannot open repository %s", g.dir)
	}
	return r, nil
}

// Head returns the commit HEAD points at
func (g *GitRepository) Head(ctx context.Context) (string, error) {
	r, err := g.open()
	if err != nil {
		return "", err
	}
	ref, err := r.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVCS, "cannot resolve HEAD")
	}
	return ref.Hash().String(), nil
}

// CurrentBranch returns the short name of the checked out branch, or "" when
// HEAD is detached
func (g *GitRepository) CurrentBranch(ctx context.Context) (string, error) {
	r, err := g.open()
	if err != nil {
		return "", err
	}
	ref, err := r.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVCS, "cannot resolve HEAD")
	}
	if !ref.Name().IsBranch() {
		return "", nil
	}
	return ref.Name().Short(), nil
}

// Resolve looks up the commit named by rev
func (g *GitRepository) Resolve(ctx context.Context, rev string) (*Commit, error) {
	r, err := g.open()
	if err != nil {
		return nil, err
	}
	c, err := resolveCommit(r, rev)
	if err != nil {
		return nil, err
	}

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return &Commit{
		Hash:    c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When,
		Message: c.Message,
	}, nil
}

// ReadFileAt returns the content of path as recorded in rev without touching
// HEAD or the working tree
func (g *GitRepository) ReadFileAt(ctx context.Context, rev, path string) ([]byte, error) {
	r, err := g.open()
	if err != nil {
		return nil, err
	}
	c, err := resolveCommit(r, rev)
	if err != nil {
		return nil, err
	}

	f, err := c.File(filepath.ToSlash(path))
	if err != nil {
		if stderrors.Is(err, object.ErrFileNotFound) {
			return nil, errors.Wrapf(ErrPathNotFound, errors.ErrVCS, "%s does not exist at %s", path, rev).
				WithDetails(map[string]interface{}{"path": path, "revision": rev})
		}
		return nil, errors.Wrapf(err, errors.ErrVCS, "cannot read %s at %s", path, rev)
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "cannot read %s at %s", path, rev)
	}
	return []byte(contents), nil
}

func resolveCommit(r *git.Repository, rev string) (*object.Commit, error) {
	hash, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, notFound(rev, err)
	}
	c, err := r.CommitObject(*hash)
	if err != nil {
		return nil, notFound(rev, err)
	}
	return c, nil
}

func notFound(rev string, err error) error {
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) || stderrors.Is(err, plumbing.ErrObjectNotFound) {
		return errors.Wrapf(ErrRevisionNotFound, errors.ErrVCS, "revision %s not found", rev).
			WithDetail("revision", rev)
	}
	return errors.Wrapf(err, errors.ErrVCS, "cannot resolve revision %s", rev).
		WithDetail("revision", rev)
}
