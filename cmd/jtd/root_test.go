// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dirs), cobra
// PURPOSE: Verify the command tree, flag wiring and the config/version commands

package jtd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dob9601/jointhedots/pkg/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"install", "sync", "diff", "interactive", "config", "version", "completion"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		command string
		flags   []string
	}{
		{"install", []string{"all", "force", "trust", "skip-hooks", "source", "method", "manifest", "branch", "metadata"}},
		{"sync", []string{"all", "message", "naive", "source", "method", "manifest", "branch", "metadata"}},
		{"diff", []string{"source", "method", "manifest", "branch", "metadata"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(f), "missing flag --%s", f)
			}
		})
	}

	sync, _, err := cmd.Find([]string{"sync"})
	require.NoError(t, err)
	assert.Equal(t, "m", sync.Flags().Lookup("message").Shorthand)
}

func TestArgumentValidation(t *testing.T) {
	_, err := execute(t, "install")
	assert.Error(t, err)

	_, err = execute(t, "diff", "owner/dots")
	assert.Error(t, err)

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestTrustAndSkipHooksAreExclusive(t *testing.T) {
	_, err := execute(t, "install", "owner/dots", "--trust", "--skip-hooks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trust")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jtd version "))
	assert.Contains(t, out, "commit:")
}

func TestConfigShowAppliesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[repository]\nsource = \"GitLab\"\nmethod = \"https\"\n"), 0644))

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Regexp(t, `source = ["']gitlab["']`, out)
	assert.Regexp(t, `method = ["']https["']`, out)
	assert.Regexp(t, `manifest = ["']jtd\.yaml["']`, out)
}

func TestConfigShowRejectsInvalidSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[repository]\nsource = \"bitbucket\"\n"), 0644))

	_, err := execute(t, "--config", path, "config", "show")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	_, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[repository]")

	_, err = execute(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestCompletionBash(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "jtd")
}
