package vcs

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
)

var log = logging.GetLogger("vcs")

// DefaultRemote is the remote pushed to when Options.Remote is empty
const DefaultRemote = "origin"

// Options configures a GitRepository
type Options struct {
	Identity Identity
	// Remote is the remote that Push targets
	Remote string
	// Credentials supplies authentication for Push. Nil means anonymous.
	Credentials CredentialProvider
}

// GitRepository implements Repository on a local working tree
type GitRepository struct {
	dir         string
	identity    Identity
	remote      string
	credentials CredentialProvider
}

var _ Repository = (*GitRepository)(nil)

// Open returns a GitRepository for an existing working tree at dir
func Open(dir string, opts Options) (*GitRepository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "cannot resolve repository path %s", dir)
	}
	if _, err := git.PlainOpen(abs); err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "%s is not a git repository", abs).
			WithDetail("path", abs)
	}

	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	return &GitRepository{
		dir:         abs,
		identity:    opts.Identity,
		remote:      remote,
		credentials: opts.Credentials,
	}, nil
}

// Dir returns the working tree root
func (g *GitRepository) Dir() string {
	return g.dir
}

// run executes a git subcommand in the working tree and returns its stdout
func (g *GitRepository) run(ctx context.Context, args ...string) (string, error) {
	out, _, err := g.runWithStatus(ctx, args...)
	return out, err
}

// runWithStatus is like run but also reports the exit code of a command
// that ran to completion. A non-zero exit code is an error.
func (g *GitRepository) runWithStatus(ctx context.Context, args ...string) (string, int, error) {
	full := []string{"-C", g.dir}
	if g.identity.Name != "" {
		full = append(full, "-c", "user.name="+g.identity.Name)
	}
	if g.identity.Email != "" {
		full = append(full, "-c", "user.email="+g.identity.Email)
	}
	full = append(full, "-c", "commit.gpgsign=false")
	full = append(full, args...)

	logging.LogCommand("git", full)

	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_MERGE_AUTOEDIT=no",
		"GIT_EDITOR=true",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		code := -1
		if stderrors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return stdout.String(), code, errors.Wrapf(err, errors.ErrVCS, "git %s failed: %s", args[0], msg).
			WithDetails(map[string]interface{}{"args": args, "dir": g.dir})
	}
	return stdout.String(), 0, nil
}

// Checkout moves HEAD and the working tree to rev
func (g *GitRepository) Checkout(ctx context.Context, rev string) error {
	_, err := g.run(ctx, "checkout", "--quiet", rev)
	return err
}

// CreateBranch creates branch name pointing at rev without checking it out
func (g *GitRepository) CreateBranch(ctx context.Context, name, rev string) error {
	_, err := g.run(ctx, "branch", name, rev)
	return err
}

// DeleteBranch force-deletes a local branch
func (g *GitRepository) DeleteBranch(ctx context.Context, name string) error {
	_, err := g.run(ctx, "branch", "-D", name)
	return err
}

// Commit stages req.Paths and commits the index. ErrNothingToCommit is
// returned when nothing is staged and AllowEmpty is false.
func (g *GitRepository) Commit(ctx context.Context, req CommitRequest) (string, error) {
	if len(req.Paths) > 0 {
		args := append([]string{"add", "--"}, toSlash(req.Paths)...)
		if _, err := g.run(ctx, args...); err != nil {
			return "", err
		}
	}

	if !req.AllowEmpty {
		staged, err := g.hasStagedChanges(ctx)
		if err != nil {
			return "", err
		}
		if !staged {
			return "", ErrNothingToCommit
		}
	}

	args := []string{"commit", "--quiet", "--no-verify", "-m", req.Message}
	if req.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if _, err := g.run(ctx, args...); err != nil {
		return "", err
	}

	hash, err := g.Head(ctx)
	if err != nil {
		return "", err
	}
	log.Debug().Str("commit", hash).Str("message", req.Message).Msg("Created commit")
	return hash, nil
}

func (g *GitRepository) hasStagedChanges(ctx context.Context) (bool, error) {
	_, code, err := g.runWithStatus(ctx, "diff", "--cached", "--quiet")
	switch {
	case err == nil:
		return false, nil
	case code == 1:
		return true, nil
	default:
		return false, err
	}
}

// Merge merges branch into the current branch, always creating a merge
// commit. Conflicts are reported in the result, leaving the repository in
// the merging state.
func (g *GitRepository) Merge(ctx context.Context, branch, message string) (*MergeResult, error) {
	_, mergeErr := g.run(ctx, "merge", "--no-ff", "--no-edit", "-m", message, branch)
	if mergeErr == nil {
		hash, err := g.Head(ctx)
		if err != nil {
			return nil, err
		}
		return &MergeResult{Clean: true, Commit: hash}, nil
	}

	conflicts, err := g.Conflicts(ctx)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, mergeErr
	}

	log.Info().Strs("paths", conflicts).Str("branch", branch).Msg("Merge stopped on conflicts")
	return &MergeResult{Clean: false, Conflicts: conflicts}, nil
}

// Conflicts lists paths that are still unmerged
func (g *GitRepository) Conflicts(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CompleteMerge commits a merge of branch whose conflicts have been
// resolved and staged. If the merge was already committed by hand, HEAD is
// returned as long as it is a merge commit with the tip of branch as a
// parent. Anything else, such as an aborted merge, is a MergeConflict.
func (g *GitRepository) CompleteMerge(ctx context.Context, branch, message string) (string, error) {
	merging, err := g.isMerging(ctx)
	if err != nil {
		return "", err
	}
	if merging {
		if _, err := g.run(ctx, "commit", "--quiet", "--no-verify", "-m", message); err != nil {
			return "", err
		}
		return g.Head(ctx)
	}

	head, err := g.Resolve(ctx, "HEAD")
	if err != nil {
		return "", err
	}
	tip, err := g.Resolve(ctx, branch)
	if err != nil {
		return "", err
	}
	if len(head.Parents) > 1 && slices.Contains(head.Parents, tip.Hash) {
		log.Debug().Str("commit", head.Hash).Msg("Merge already committed, accepting HEAD")
		return head.Hash, nil
	}

	return "", errors.Newf(errors.ErrMergeConflict,
		"no merge of %s is in progress and HEAD does not merge it; was the merge aborted?", branch).
		WithDetails(map[string]interface{}{"branch": branch, "head": head.Hash})
}

func (g *GitRepository) isMerging(ctx context.Context) (bool, error) {
	_, code, err := g.runWithStatus(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD")
	switch {
	case err == nil:
		return true, nil
	case code == 1:
		return false, nil
	default:
		return false, err
	}
}

// SoftReset moves the current branch to rev keeping the index and working tree
func (g *GitRepository) SoftReset(ctx context.Context, rev string) error {
	_, err := g.run(ctx, "reset", "--soft", rev)
	return err
}

// DiffFiles returns the unified diff of two files on disk
func (g *GitRepository) DiffFiles(ctx context.Context, a, b string) ([]string, error) {
	return DiffFiles(ctx, a, b)
}

// DiffFiles returns the unified diff of two files on disk. Identical files
// yield no lines. A missing file is an error, not an empty diff.
func DiffFiles(ctx context.Context, a, b string) ([]string, error) {
	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileCopy, "cannot diff %s", p).
				WithDetail("path", p)
		}
	}

	cmd := exec.CommandContext(ctx, "git", "diff", "--no-index", "--no-color", "--", a, b)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) || exitErr.ExitCode() != 1 || stdout.Len() == 0 {
			return nil, errors.Wrapf(err, errors.ErrVCS, "diff failed: %s", strings.TrimSpace(stderr.String())).
				WithDetails(map[string]interface{}{"a": a, "b": b})
		}
	}
	return splitLines(stdout.String()), nil
}

func splitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func toSlash(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}
