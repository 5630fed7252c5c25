// pkg/testutil/git.go
// DEPENDENCIES: git CLI
// PURPOSE: Real git repositories for VCS and synchronization tests

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

// Test identity used for every fixture commit
const (
	GitUserName  = "jtd test"
	GitUserEmail = "test@jtd.invalid"
)

// RequireGit skips the test when the git CLI is not available
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// Git runs git in dir with the test identity and returns trimmed stdout.
// The test fails when git exits non-zero.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	full := append([]string{
		"-C", dir,
		"-c", "user.name=" + GitUserName,
		"-c", "user.email=" + GitUserEmail,
		"-c", "commit.gpgsign=false",
		"-c", "init.defaultBranch=main",
	}, args...)
	cmd := exec.Command("git", full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// GitFixture is a bare remote repository seeded with an initial commit
type GitFixture struct {
	// Remote is the path of the bare repository
	Remote string
	// Seed is a working clone used to push "upstream" changes
	Seed string

	t *testing.T
}

// NewGitFixture creates a bare remote on branch main whose first commit
// contains files (path relative to the repository root -> content)
func NewGitFixture(t *testing.T, files map[string]string) *GitFixture {
	t.Helper()
	RequireGit(t)

	root := t.TempDir()
	f := &GitFixture{
		Remote: filepath.Join(root, "remote.git"),
		Seed:   filepath.Join(root, "seed"),
		t:      t,
	}

	Git(t, root, "init", "--quiet", "--bare", "-b", "main", f.Remote)
	Git(t, root, "init", "--quiet", "-b", "main", f.Seed)
	Git(t, f.Seed, "remote", "add", "origin", f.Remote)

	if len(files) == 0 {
		files = map[string]string{"README.md": "dotfiles\n"}
	}
	f.CommitUpstream(files, "Initial commit")

	return f
}

// CommitUpstream commits files in the seed clone and pushes them to the
// remote, returning the new commit hash
func (f *GitFixture) CommitUpstream(files map[string]string, message string) string {
	f.t.Helper()
	hash := CommitFiles(f.t, f.Seed, files, message)
	Git(f.t, f.Seed, "push", "--quiet", "origin", "main")
	return hash
}

// Clone makes a fresh working clone of the remote and returns its path
func (f *GitFixture) Clone() string {
	f.t.Helper()
	dir := filepath.Join(f.t.TempDir(), "clone")
	Git(f.t, filepath.Dir(dir), "clone", "--quiet", f.Remote, dir)
	return dir
}

// RemoteHead returns the commit main points at in the remote
func (f *GitFixture) RemoteHead() string {
	f.t.Helper()
	return Git(f.t, f.Remote, "rev-parse", "main")
}

// CommitFiles writes files into the working tree at dir, stages them and
// commits, returning the new commit hash. Paths are written in sorted order.
func CommitFiles(t *testing.T, dir string, files map[string]string, message string) string {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte(files[name]), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", full, err)
		}
		Git(t, dir, "add", "--", name)
	}

	Git(t, dir, "commit", "--quiet", "-m", message)
	return Git(t, dir, "rev-parse", "HEAD")
}

// CommitCount returns the number of commits reachable from rev
func CommitCount(t *testing.T, dir, rev string) int {
	t.Helper()
	n, err := strconv.Atoi(Git(t, dir, "rev-list", "--count", rev))
	if err != nil {
		t.Fatalf("Failed to count commits: %v", err)
	}
	return n
}

// ChangedFiles lists the paths touched by commit relative to its first parent
func ChangedFiles(t *testing.T, dir, commit string) []string {
	t.Helper()
	out := Git(t, dir, "diff-tree", "--no-commit-id", "--name-only", "-r", commit+"^", commit)
	if out == "" {
		return nil
	}
	files := strings.Split(out, "\n")
	sort.Strings(files)
	return files
}
