package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dob9601/jointhedots/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for jtd
	EnvDataDir = "JTD_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for jtd
	EnvConfigDir = "JTD_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for jtd
	EnvStateDir = "JTD_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "jointhedots"

	// MetadataFileName is the name of the dotfile metadata store
	MetadataFileName = "manifest.yaml"

	// ConfigFileName is the name of the tool configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "jtd.log"

	// DefaultManifestFile is the manifest file looked up at the repository root
	DefaultManifestFile = "jtd.yaml"
)

// Paths resolves the locations of jtd's own files
type Paths interface {
	DataDir() string
	ConfigDir() string
	StateDir() string
	MetadataPath() string
	ConfigFilePath() string
	LogFilePath() string
}

type paths struct {
	xdgData   string
	xdgConfig string
	xdgState  string
}

// New creates a Paths instance from the environment. XDG variables are
// re-read on every call so that tests can change them with t.Setenv.
func New() (Paths, error) {
	xdg.Reload()

	p := &paths{
		xdgData:   dirFromEnv(EnvDataDir, xdg.DataHome),
		xdgConfig: dirFromEnv(EnvConfigDir, xdg.ConfigHome),
		xdgState:  dirFromEnv(EnvStateDir, xdg.StateHome),
	}

	for _, dir := range []string{p.xdgData, p.xdgConfig, p.xdgState} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to resolve directory %s", dir)
		}
		if abs != dir {
			return nil, errors.Newf(errors.ErrInvalidInput, "directory must be absolute: %s", dir)
		}
	}

	return p, nil
}

func dirFromEnv(envVar, xdgBase string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Clean(ExpandHome(dir))
	}
	return filepath.Join(xdgBase, AppDirName)
}

// ExpandHome expands a leading ~ to the home directory. Paths of the form
// ~user are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// DataDir returns the data directory for jtd
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the config directory for jtd
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the state directory for jtd
func (p *paths) StateDir() string {
	return p.xdgState
}

// MetadataPath returns the default location of the dotfile metadata store
func (p *paths) MetadataPath() string {
	return filepath.Join(p.xdgData, MetadataFileName)
}

// ConfigFilePath returns the location of config.toml
func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// LogFilePath returns the location of the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}
