package vcs

import (
	"context"
	stderrors "errors"
	"time"
)

var (
	// ErrRevisionNotFound is returned when a revision does not name a commit
	ErrRevisionNotFound = stderrors.New("revision not found")

	// ErrPathNotFound is returned when a path does not exist at a revision
	ErrPathNotFound = stderrors.New("path not found at revision")

	// ErrNothingToCommit is returned by Commit when the index matches HEAD
	// and AllowEmpty is not set
	ErrNothingToCommit = stderrors.New("nothing to commit")
)

// Commit describes a single commit
type Commit struct {
	Hash    string
	Parents []string
	// When is the committer timestamp
	When    time.Time
	Message string
}

// CommitRequest describes a commit to create. Paths, relative to the
// repository root, are staged first; with no paths the index is committed
// as it stands.
type CommitRequest struct {
	Paths      []string
	Message    string
	AllowEmpty bool
}

// MergeResult is the outcome of a merge
type MergeResult struct {
	Clean bool
	// Commit is the merge commit when Clean is true
	Commit string
	// Conflicts lists unmerged paths when Clean is false
	Conflicts []string
}

// Repository is the set of version-control operations used to install and
// sync dotfiles
type Repository interface {
	Dir() string
	Head(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	Resolve(ctx context.Context, rev string) (*Commit, error)
	Checkout(ctx context.Context, rev string) error
	CreateBranch(ctx context.Context, name, rev string) error
	DeleteBranch(ctx context.Context, name string) error
	ReadFileAt(ctx context.Context, rev, path string) ([]byte, error)
	Commit(ctx context.Context, req CommitRequest) (string, error)
	Merge(ctx context.Context, branch, message string) (*MergeResult, error)
	Conflicts(ctx context.Context) ([]string, error)
	CompleteMerge(ctx context.Context, branch, message string) (string, error)
	SoftReset(ctx context.Context, rev string) error
	Push(ctx context.Context) error
	DiffFiles(ctx context.Context, a, b string) ([]string, error)
}

// Identity is the author and committer recorded on commits
type Identity struct {
	Name  string
	Email string
}
