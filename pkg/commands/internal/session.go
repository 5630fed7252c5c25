package internal

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/config"
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/hooks"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/manifest"
	"github.com/dob9601/jointhedots/pkg/paths"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// SessionOptions describes the repository a command works on
type SessionOptions struct {
	// Repository is owner/name on the configured host, a URL or a local path
	Repository string
	Config     *config.Config
	// MetadataPath overrides the configured and default store locations
	MetadataPath string
	FS           afero.Fs
	Credentials  vcs.CredentialProvider
	Hooks        hooks.Runner
}

// Session is a temporary clone of the manifest repository with its
// manifest loaded. Close removes the clone.
type Session struct {
	Dir          string
	URL          string
	Repo         *vcs.GitRepository
	Manifest     *manifest.Manifest
	Workspace    manifest.Workspace
	MetadataPath string

	disk afero.Fs
}

// OpenSession clones the repository into a temporary directory and loads
// its manifest
func OpenSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	logger := logging.GetLogger("commands")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	url, err := RemoteURL(opts.Repository, cfg)
	if err != nil {
		return nil, err
	}

	metadataPath, err := ResolveMetadataPath(opts.MetadataPath, cfg)
	if err != nil {
		return nil, err
	}

	// git works on the real disk whatever fs the dotfiles live on
	disk := filesystem.NewOS()
	dir, err := afero.TempDir(disk, "", "jtd-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "could not create a temporary directory")
	}
	s := &Session{Dir: dir, URL: url, MetadataPath: metadataPath, disk: disk}

	repo, err := vcs.Clone(ctx, url, filepath.Join(dir, "repo"), vcs.CloneOptions{
		Branch: cfg.Repository.Branch,
		Options: vcs.Options{
			Identity:    vcs.Identity{Name: cfg.Commit.AuthorName, Email: cfg.Commit.AuthorEmail},
			Remote:      cfg.Repository.Remote,
			Credentials: opts.Credentials,
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Repo = repo

	m, err := manifest.Load(fs, filepath.Join(repo.Dir(), filepath.FromSlash(cfg.Repository.Manifest)))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Manifest = m

	s.Workspace = manifest.Workspace{FS: fs, Repo: repo, Hooks: opts.Hooks}
	logger.Debug().
		Str("url", url).
		Str("dir", repo.Dir()).
		Int("dotfiles", len(m.Dotfiles)).
		Msg("Session ready")
	return s, nil
}

// Close removes the temporary clone
func (s *Session) Close() error {
	if s.Dir == "" || s.disk == nil {
		return nil
	}
	return s.disk.RemoveAll(s.Dir)
}

// RemoteURL builds the clone URL of repository from the configured host
// and transport
func RemoteURL(repository string, cfg *config.Config) (string, error) {
	if repository == "" {
		return "", errors.New(errors.ErrInvalidInput, "no repository given")
	}
	host, err := vcs.ParseHost(cfg.Repository.Source)
	if err != nil {
		return "", err
	}
	method, err := vcs.ParseMethod(cfg.Repository.Method)
	if err != nil {
		return "", err
	}
	return vcs.RemoteURL(repository, host, method)
}

// ResolveMetadataPath picks the metadata store location: an explicit
// override, then the configured path, then the XDG data directory
func ResolveMetadataPath(override string, cfg *config.Config) (string, error) {
	if override != "" {
		return paths.ExpandHome(override), nil
	}
	if cfg.Metadata.Path != "" {
		return paths.ExpandHome(cfg.Metadata.Path), nil
	}
	p, err := paths.New()
	if err != nil {
		return "", err
	}
	return p.MetadataPath(), nil
}
