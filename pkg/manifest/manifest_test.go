// TEST TYPE: Unit Tests
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Verify manifest parsing for both schemas, lookup and selection

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/hooks"
	"github.com/dob9601/jointhedots/pkg/metadata"
	"github.com/dob9601/jointhedots/pkg/testutil"
)

const explicitManifest = `
config:
  commit_prefix: "sync: "
  squash_commits: false
dotfiles:
  kitty:
    file: kitty.conf
    target: ~/.config/kitty/kitty.conf
    pre_install: ["mkdir -p ~/.config/kitty"]
  zsh:
    file: ./shell/zshrc
    target: ~/.zshrc
`

const legacyManifest = `
.config:
  squash_commits: false
kitty:
  file: kitty.conf
  target: ~/.config/kitty/kitty.conf
  post_install:
    - kill -SIGUSR1 $(pidof kitty)
`

func TestParse_ExplicitSchema(t *testing.T) {
	m, err := Parse([]byte(explicitManifest))
	require.NoError(t, err)

	assert.Equal(t, SyncConfig{CommitPrefix: "sync: ", SquashCommits: false}, m.Config)
	assert.Equal(t, []string{"kitty", "zsh"}, m.Names())

	kitty := m.Dotfiles["kitty"]
	assert.Equal(t, "kitty", kitty.Name)
	assert.Equal(t, "kitty.conf", kitty.File)
	assert.Equal(t, "~/.config/kitty/kitty.conf", kitty.Target)
	assert.Equal(t, []string{"mkdir -p ~/.config/kitty"}, kitty.PreInstall)
	assert.Empty(t, kitty.PostInstall)

	assert.Equal(t, "shell/zshrc", m.Dotfiles["zsh"].File)
}

func TestParse_LegacySchema(t *testing.T) {
	m, err := Parse([]byte(legacyManifest))
	require.NoError(t, err)

	assert.Equal(t, DefaultCommitPrefix, m.Config.CommitPrefix)
	assert.False(t, m.Config.SquashCommits)
	assert.Equal(t, []string{"kitty"}, m.Names())
	assert.Len(t, m.Dotfiles["kitty"].PostInstall, 1)
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("nvim:\n  file: init.lua\n  target: ~/.config/nvim/init.lua\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSyncConfig(), m.Config)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Names())
	assert.Equal(t, DefaultSyncConfig(), empty.Config)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		code     errors.ErrorCode
		contains string
	}{
		{
			name:  "invalid yaml",
			input: "kitty: [file",
			code:  errors.ErrManifestUnreadable,
		},
		{
			name:  "not a mapping",
			input: "- kitty\n- zsh\n",
			code:  errors.ErrManifestUnreadable,
		},
		{
			name:     "missing file",
			input:    "kitty:\n  target: ~/kitty.conf\n",
			code:     errors.ErrManifestInvalid,
			contains: "has no file",
		},
		{
			name:     "missing target",
			input:    "dotfiles:\n  kitty:\n    file: kitty.conf\n",
			code:     errors.ErrManifestInvalid,
			contains: "has no target",
		},
		{
			name:  "null entry",
			input: "dotfiles:\n  kitty:\n",
			code:  errors.ErrManifestInvalid,
		},
		{
			name:     "absolute file",
			input:    "kitty:\n  file: /etc/passwd\n  target: ~/kitty.conf\n",
			code:     errors.ErrManifestInvalid,
			contains: "relative",
		},
		{
			name:     "file outside repository",
			input:    "kitty:\n  file: ../secrets\n  target: ~/kitty.conf\n",
			code:     errors.ErrManifestInvalid,
			contains: "outside",
		},
		{
			name:     "stray key in explicit schema",
			input:    "config: {}\nkitty:\n  file: kitty.conf\n  target: ~/kitty.conf\n",
			code:     errors.ErrManifestInvalid,
			contains: "unexpected top-level key",
		},
		{
			name:  "wrong field type",
			input: "kitty:\n  file: kitty.conf\n  target: ~/kitty.conf\n  pre_install: {a: b}\n",
			code:  errors.ErrManifestUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fs := filesystem.NewMemory()
	testutil.WriteFile(t, fs, "/repo/jtd.yaml", explicitManifest)

	m, err := Load(fs, "/repo/jtd.yaml")
	require.NoError(t, err)
	assert.Len(t, m.Dotfiles, 2)

	_, err = Load(fs, "/repo/missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestUnreadable))
	assert.Equal(t, "/repo/missing.yaml", errors.GetErrorDetails(err)["path"])

	testutil.WriteFile(t, fs, "/repo/bad.yaml", "kitty:\n  file: kitty.conf\n")
	_, err = Load(fs, "/repo/bad.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
	assert.Equal(t, "/repo/bad.yaml", errors.GetErrorDetails(err)["path"])
}

func sampleManifest() *Manifest {
	m := &Manifest{Config: DefaultSyncConfig(), Dotfiles: map[string]*Dotfile{}}
	for _, name := range []string{"zsh", "kitty", "nvim", "tmux"} {
		m.Dotfiles[name] = dotfile(name, "~/"+name)
	}
	return m
}

func TestGet_Suggestions(t *testing.T) {
	m := sampleManifest()

	d, err := m.Get("kitty")
	require.NoError(t, err)
	assert.Equal(t, "kitty", d.Name)

	_, err = m.Get("kity")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDotfileNotFound))
	assert.Contains(t, errors.GetErrorDetails(err)["suggestions"], "kitty")
	assert.Contains(t, err.Error(), "did you mean kitty")

	_, err = m.Get("vscode")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestTargetDotfiles(t *testing.T) {
	m := sampleManifest()

	t.Run("all", func(t *testing.T) {
		got, err := m.TargetDotfiles([]string{"zsh"}, true, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"kitty", "nvim", "tmux", "zsh"}, dotfileNames(got))
	})

	t.Run("requested sorted without duplicates", func(t *testing.T) {
		got, err := m.TargetDotfiles([]string{"zsh", "kitty", "zsh"}, false, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"kitty", "zsh"}, dotfileNames(got))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := m.TargetDotfiles([]string{"kitty", "nvm"}, false, nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDotfileNotFound))
	})

	t.Run("selector", func(t *testing.T) {
		p := &scriptedPrompter{selected: []string{"tmux", "nvim"}}
		got, err := m.TargetDotfiles(nil, false, p)
		require.NoError(t, err)
		assert.Equal(t, []string{"nvim", "tmux"}, dotfileNames(got))
		assert.Len(t, p.asked, 1)
	})

	t.Run("nothing requested and no selector", func(t *testing.T) {
		_, err := m.TargetDotfiles(nil, false, nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestManifestHasUnexecutedRunStages(t *testing.T) {
	m := sampleManifest()
	m.Dotfiles["kitty"].PreInstall = []string{"echo hi"}
	store := metadata.New()

	all, err := m.TargetDotfiles(nil, true, nil)
	require.NoError(t, err)
	assert.True(t, HasUnexecutedRunStages(all, store))

	others, err := m.TargetDotfiles([]string{"nvim", "zsh"}, false, nil)
	require.NoError(t, err)
	assert.False(t, HasUnexecutedRunStages(others, store))

	store.Set("kitty", metadata.DotfileMetadata{PreInstallHash: hooks.Hash([]string{"echo hi"})})
	assert.False(t, HasUnexecutedRunStages(all, store))
	assert.True(t, HasUnexecutedRunStages(all, nil))
}
