// TEST TYPE: Integration Tests
// DEPENDENCIES: git CLI, bare remote fixture, isolated HOME
// PURPOSE: Verify the install, sync, diff and wizard commands end to end

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/commands"
	"github.com/dob9601/jointhedots/pkg/config"
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/metadata"
	"github.com/dob9601/jointhedots/pkg/testutil"
)

const manifestYAML = `
config:
  commit_prefix: "jtd: "
dotfiles:
  kitty:
    file: kitty/kitty.conf
    target: ~/.config/kitty/kitty.conf
    post_install: ["touch ~/.kitty-installed"]
  zsh:
    file: zshrc
    target: ~/.zshrc
`

type noopRunner struct{ ran []string }

func (r *noopRunner) Run(_ context.Context, commands []string) error {
	r.ran = append(r.ran, commands...)
	return nil
}

type mockWizard struct{ mock.Mock }

func (m *mockWizard) Confirm(message string, def bool) (bool, error) {
	args := m.Called(message, def)
	return args.Bool(0), args.Error(1)
}

func (m *mockWizard) MultiSelect(message string, options []string) ([]string, error) {
	args := m.Called(message, options)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockWizard) Input(message, def string) (string, error) {
	args := m.Called(message, def)
	return args.String(0), args.Error(1)
}

func (m *mockWizard) Select(message string, options []string, def string) (string, error) {
	args := m.Called(message, options, def)
	return args.String(0), args.Error(1)
}

func setup(t *testing.T) (*testutil.TestEnvironment, *testutil.GitFixture, *noopRunner, commands.SessionOptions) {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	f := testutil.NewGitFixture(t, map[string]string{
		"jtd.yaml":         manifestYAML,
		"kitty/kitty.conf": "font 10\n",
		"zshrc":            "export EDITOR=vi\n",
	})
	runner := &noopRunner{}
	return env, f, runner, commands.SessionOptions{
		Repository: f.Remote,
		Config:     config.Default(),
		FS:         env.FS,
		Hooks:      runner,
	}
}

func TestInstallSyncDiff(t *testing.T) {
	ctx := context.Background()
	env, f, runner, session := setup(t)

	report, err := commands.InstallDotfiles(ctx, commands.InstallDotfilesOptions{
		SessionOptions: session,
		All:            true,
		Trust:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kitty", "zsh"}, report.Installed)
	assert.Equal(t, []string{"touch ~/.kitty-installed"}, runner.ran)
	assert.Equal(t, "font 10\n", env.ReadFile(env.Home(".config", "kitty", "kitty.conf")))

	installed := f.RemoteHead()
	store, err := metadata.Get(env.FS, env.MetadataPath())
	require.NoError(t, err)
	meta, ok := store.Lookup("kitty")
	require.True(t, ok)
	assert.Equal(t, installed, meta.InstallHash)

	env.WriteFile(env.Home(".zshrc"), "export EDITOR=nvim\n")

	lines, err := commands.DiffDotfile(ctx, commands.DiffDotfileOptions{SessionOptions: session, Dotfile: "zsh"})
	require.NoError(t, err)
	assert.Contains(t, lines, "+export EDITOR=nvim")

	synced, err := commands.SyncDotfiles(ctx, commands.SyncDotfilesOptions{
		SessionOptions: session,
		All:            true,
	})
	require.NoError(t, err)
	assert.True(t, synced.Pushed)
	assert.Equal(t, []string{"zsh"}, synced.Synced)
	assert.Equal(t, []string{"kitty"}, synced.Unchanged)

	pushed := f.RemoteHead()
	assert.NotEqual(t, installed, pushed)
	clone := f.Clone()
	data, err := os.ReadFile(filepath.Join(clone, "zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=nvim\n", string(data))

	store, err = metadata.Get(env.FS, env.MetadataPath())
	require.NoError(t, err)
	meta, _ = store.Lookup("zsh")
	assert.Equal(t, pushed, meta.SyncHash)

	// Installing again is a no-op for unchanged dotfiles and leaves hooks alone
	_, err = commands.InstallDotfiles(ctx, commands.InstallDotfilesOptions{
		SessionOptions: session,
		All:            true,
		Force:          true,
	})
	require.NoError(t, err)
	assert.Len(t, runner.ran, 1)
}

func TestInstall_UnknownDotfile(t *testing.T) {
	ctx := context.Background()
	_, _, _, session := setup(t)

	_, err := commands.InstallDotfiles(ctx, commands.InstallDotfilesOptions{
		SessionOptions: session,
		Dotfiles:       []string{"kity"},
		Trust:          true,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDotfileNotFound))
	assert.Contains(t, err.Error(), "kitty")
}

func TestInstall_MissingManifest(t *testing.T) {
	ctx := context.Background()
	_, _, _, session := setup(t)
	cfg := *session.Config
	cfg.Repository.Manifest = "dotfiles.yaml"
	session.Config = &cfg

	_, err := commands.InstallDotfiles(ctx, commands.InstallDotfilesOptions{SessionOptions: session, All: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestUnreadable))
}

func TestInstall_CloneFailure(t *testing.T) {
	ctx := context.Background()
	_, _, _, session := setup(t)
	session.Repository = filepath.Join(t.TempDir(), "missing.git")

	_, err := commands.InstallDotfiles(ctx, commands.InstallDotfilesOptions{SessionOptions: session, All: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVCS))
}

func TestSync_MetadataOverride(t *testing.T) {
	ctx := context.Background()
	env, _, _, session := setup(t)
	session.MetadataPath = filepath.Join(env.HomeDir, "jtd-meta.yaml")
	env.WriteFile(env.Home(".zshrc"), "export EDITOR=emacs\n")

	report, err := commands.SyncDotfiles(ctx, commands.SyncDotfilesOptions{
		SessionOptions: session,
		Dotfiles:       []string{"zsh"},
		Naive:          true,
		Message:        "Switch editor",
	})
	require.NoError(t, err)
	assert.True(t, report.Pushed)

	exists, err := metadata.Get(env.FS, session.MetadataPath)
	require.NoError(t, err)
	assert.NotNil(t, exists)

	defaultStore, err := metadata.Get(env.FS, env.MetadataPath())
	require.NoError(t, err)
	assert.Nil(t, defaultStore)
}

func TestRunWizard(t *testing.T) {
	ctx := context.Background()
	env, f, _, session := setup(t)
	session.Repository = ""

	w := &mockWizard{}
	w.On("Input", "Target repository (owner/name)", "").Return("not a repo", nil).Once()
	w.On("Input", "Target repository (owner/name)", "").Return(f.Remote, nil).Once()
	w.On("Select", "Repository source", []string{"GitHub", "GitLab"}, "GitHub").Return("GitLab", nil)
	w.On("Confirm", "Overwrite existing dotfiles?", false).Return(true, nil)
	w.On("MultiSelect", mock.Anything, []string{"kitty", "zsh"}).Return([]string{"zsh"}, nil)

	report, err := commands.RunWizard(ctx, commands.RunWizardOptions{SessionOptions: session, Wizard: w})
	require.NoError(t, err)
	assert.Equal(t, []string{"zsh"}, report.Installed)
	assert.Equal(t, "export EDITOR=vi\n", env.ReadFile(env.Home(".zshrc")))
	w.AssertExpectations(t)
}

func TestRunWizard_InvalidRepository(t *testing.T) {
	ctx := context.Background()
	_, _, _, session := setup(t)

	w := &mockWizard{}
	w.On("Input", mock.Anything, "").Return("nope", nil)

	_, err := commands.RunWizard(ctx, commands.RunWizardOptions{SessionOptions: session, Wizard: w})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	w.AssertNumberOfCalls(t, "Input", 3)
}

func TestResolveMetadataPath(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	cfg := config.Default()

	p, err := commands.ResolveMetadataPath("", cfg)
	require.NoError(t, err)
	assert.Equal(t, env.MetadataPath(), p)

	cfg.Metadata.Path = "~/meta.yaml"
	p, err = commands.ResolveMetadataPath("", cfg)
	require.NoError(t, err)
	assert.Equal(t, env.Home("meta.yaml"), p)

	p, err = commands.ResolveMetadataPath("/tmp/override.yaml", cfg)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.yaml", p)
}
