// TEST TYPE: Test Helpers
// DEPENDENCIES: git CLI, testutil
// PURPOSE: Shared fixtures, fakes and scripted prompts for manifest tests

package manifest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/testutil"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// harness is a cloned dotfile repository plus an isolated home directory
type harness struct {
	t       *testing.T
	env     *testutil.TestEnvironment
	fixture *testutil.GitFixture
	repo    *vcs.GitRepository
	hooks   *recordingRunner
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	f := testutil.NewGitFixture(t, files)

	repo, err := vcs.Open(f.Clone(), vcs.Options{
		Identity: vcs.Identity{Name: testutil.GitUserName, Email: testutil.GitUserEmail},
	})
	require.NoError(t, err)

	return &harness{t: t, env: env, fixture: f, repo: repo, hooks: &recordingRunner{}}
}

func (h *harness) workspace() Workspace {
	return Workspace{FS: h.env.FS, Repo: h.repo, Hooks: h.hooks}
}

func (h *harness) head() string {
	h.t.Helper()
	hash, err := h.repo.Head(context.Background())
	require.NoError(h.t, err)
	return hash
}

// commitInRepo moves the clone's main branch forward, as if someone else's
// changes had been pulled
func (h *harness) commitInRepo(files map[string]string, message string) string {
	h.t.Helper()
	return testutil.CommitFiles(h.t, h.repo.Dir(), files, message)
}

func (h *harness) repoFile(name string) string {
	h.t.Helper()
	return h.env.ReadFile(filepath.Join(h.repo.Dir(), name))
}

func (h *harness) branches() []string {
	h.t.Helper()
	out := testutil.Git(h.t, h.repo.Dir(), "branch", "--format=%(refname:short)")
	return strings.Split(out, "\n")
}

func dotfile(name, target string) *Dotfile {
	return &Dotfile{Name: name, File: name + ".conf", Target: target}
}

type recordingRunner struct {
	ran  []string
	fail string
}

func (r *recordingRunner) Run(_ context.Context, commands []string) error {
	for i, c := range commands {
		if c == r.fail {
			return errors.Newf(errors.ErrHookExecution, "step %d failed", i)
		}
		r.ran = append(r.ran, c)
	}
	return nil
}

// scriptedPrompter answers Confirm by message prefix and MultiSelect with a
// fixed choice
type scriptedPrompter struct {
	answers  map[string]bool
	selected []string
	asked    []string
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	p.asked = append(p.asked, message)
	for prefix, answer := range p.answers {
		if strings.HasPrefix(message, prefix) {
			return answer, nil
		}
	}
	return def, nil
}

func (p *scriptedPrompter) MultiSelect(message string, options []string) ([]string, error) {
	p.asked = append(p.asked, message)
	return p.selected, nil
}

// stagingResolver resolves every conflict by writing content and staging it
type stagingResolver struct {
	t       *testing.T
	content string
	calls   int
}

func (r *stagingResolver) Resolve(_ context.Context, p *ConflictPending) error {
	r.calls++
	for _, path := range p.Paths {
		testutil.WriteFile(r.t, filesystem.NewOS(), filepath.Join(p.RepoDir, path), r.content)
		testutil.Git(r.t, p.RepoDir, "add", "--", path)
	}
	return nil
}
