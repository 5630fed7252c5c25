// Package metadata persists what jtd knows about each installed dotfile:
// the commit its content came from, the commit it was last synced in and
// fingerprints of the hooks that have already run.
package metadata

import (
	"bytes"
	"os"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/logging"
)

var log = logging.GetLogger("metadata")

const header = "# This file is automatically generated by jtd. Do not edit it by hand.\n" +
	"# It records which commit each dotfile was installed and synced from.\n"

// DotfileMetadata is the provenance of one dotfile on this machine
type DotfileMetadata struct {
	InstallHash     string `yaml:"install_hash"`
	SyncHash        string `yaml:"sync_hash"`
	PreInstallHash  string `yaml:"pre_install_hash"`
	PostInstallHash string `yaml:"post_install_hash"`
}

// Store maps dotfile names to their metadata
type Store struct {
	Dotfiles map[string]DotfileMetadata
}

// New returns an empty store
func New() *Store {
	return &Store{Dotfiles: map[string]DotfileMetadata{}}
}

// Get loads the store at path. It returns nil without error when no file
// exists, which callers treat as "never installed or synced".
func Get(fs afero.Fs, path string) (*Store, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrMetadataUnreadable, "cannot read metadata file %s", path).
			WithDetail("path", path)
	}

	entries := map[string]DotfileMetadata{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMetadataUnreadable, "cannot parse metadata file %s", path).
			WithDetail("path", path)
	}
	if entries == nil {
		entries = map[string]DotfileMetadata{}
	}

	log.Debug().Str("path", path).Int("dotfiles", len(entries)).Msg("Loaded metadata")
	return &Store{Dotfiles: entries}, nil
}

// GetOrCreate loads the store at path, or returns an empty one
func GetOrCreate(fs afero.Fs, path string) (*Store, error) {
	s, err := Get(fs, path)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return New(), nil
	}
	return s, nil
}

// Lookup returns the metadata recorded for name
func (s *Store) Lookup(name string) (*DotfileMetadata, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.Dotfiles[name]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Set records metadata for name
func (s *Store) Set(name string, m DotfileMetadata) {
	if s.Dotfiles == nil {
		s.Dotfiles = map[string]DotfileMetadata{}
	}
	s.Dotfiles[name] = m
}

// Names returns the recorded dotfile names in sorted order
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Dotfiles))
	for name := range s.Dotfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the store to path atomically, creating parent directories
func (s *Store) Save(fs afero.Fs, path string) error {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.Dotfiles); err != nil {
		return errors.Wrap(err, errors.ErrMetadataWrite, "cannot encode metadata")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrMetadataWrite, "cannot encode metadata")
	}

	if err := filesystem.WriteFileAtomic(fs, path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrMetadataWrite, "cannot write metadata file %s", path).
			WithDetail("path", path)
	}

	log.Debug().Str("path", path).Int("dotfiles", len(s.Dotfiles)).Msg("Saved metadata")
	return nil
}
