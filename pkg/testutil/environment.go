// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate isolated test environments

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/filesystem"
)

// TestEnvironment provides HOME and XDG directories that belong to one test
type TestEnvironment struct {
	HomeDir   string
	XDGData   string
	XDGConfig string
	XDGState  string

	FS afero.Fs

	t *testing.T
}

// NewTestEnvironment points HOME and the XDG variables at fresh temp
// directories for the duration of the test
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		HomeDir:   filepath.Join(root, "home"),
		XDGData:   filepath.Join(root, "home", ".local", "share"),
		XDGConfig: filepath.Join(root, "home", ".config"),
		XDGState:  filepath.Join(root, "home", ".local", "state"),
		FS:        filesystem.NewOS(),
		t:         t,
	}

	for _, dir := range []string{env.HomeDir, env.XDGData, env.XDGConfig, env.XDGState} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_DATA_HOME", env.XDGData)
	t.Setenv("XDG_CONFIG_HOME", env.XDGConfig)
	t.Setenv("XDG_STATE_HOME", env.XDGState)
	t.Setenv("JTD_DATA_DIR", "")
	t.Setenv("JTD_CONFIG_DIR", "")
	t.Setenv("JTD_STATE_DIR", "")

	return env
}

// MetadataPath returns the default metadata store location in this environment
func (env *TestEnvironment) MetadataPath() string {
	return filepath.Join(env.XDGData, "jointhedots", "manifest.yaml")
}

// Home joins elements onto the test home directory
func (env *TestEnvironment) Home(elem ...string) string {
	return filepath.Join(append([]string{env.HomeDir}, elem...)...)
}

// WriteFile writes content to path, creating parent directories
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	WriteFile(env.t, env.FS, path, content)
}

// ReadFile returns the content of path
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := afero.ReadFile(env.FS, path)
	if err != nil {
		env.t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// WithFileTree creates a complete file tree structure under the home directory
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	CreateFileTree(env.t, env.FS, env.HomeDir, tree)
}
