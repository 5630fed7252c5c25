package config

import (
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
)

var log = logging.GetLogger("config")

// Supported hosting providers
const (
	SourceGitHub = "github"
	SourceGitLab = "gitlab"
)

// Supported clone transports
const (
	MethodSSH   = "ssh"
	MethodHTTPS = "https"
)

// Config is the tool configuration
type Config struct {
	Repository RepositoryConfig `koanf:"repository" toml:"repository"`
	Commit     CommitConfig     `koanf:"commit" toml:"commit"`
	Metadata   MetadataConfig   `koanf:"metadata" toml:"metadata"`
}

// RepositoryConfig describes where the manifest repository lives
type RepositoryConfig struct {
	Manifest string `koanf:"manifest" toml:"manifest"`
	Remote   string `koanf:"remote" toml:"remote"`
	Branch   string `koanf:"branch" toml:"branch"`
	Source   string `koanf:"source" toml:"source"`
	Method   string `koanf:"method" toml:"method"`
}

// CommitConfig is the identity used for commits made by sync
type CommitConfig struct {
	AuthorName  string `koanf:"author_name" toml:"author_name"`
	AuthorEmail string `koanf:"author_email" toml:"author_email"`
}

// MetadataConfig locates the metadata store
type MetadataConfig struct {
	Path string `koanf:"path" toml:"path"`
}

// Validate checks enumerated values and required fields
func (c *Config) Validate() error {
	switch c.Repository.Source {
	case SourceGitHub, SourceGitLab:
	default:
		return errors.Newf(errors.ErrConfigLoad, "unsupported repository source %q (want github or gitlab)", c.Repository.Source).
			WithDetail("key", "repository.source")
	}

	switch c.Repository.Method {
	case MethodSSH, MethodHTTPS:
	default:
		return errors.Newf(errors.ErrConfigLoad, "unsupported clone method %q (want ssh or https)", c.Repository.Method).
			WithDetail("key", "repository.method")
	}

	if c.Repository.Manifest == "" {
		return errors.New(errors.ErrConfigLoad, "repository.manifest must not be empty")
	}
	if c.Commit.AuthorName == "" || c.Commit.AuthorEmail == "" {
		return errors.New(errors.ErrConfigLoad, "commit.author_name and commit.author_email must be set")
	}

	return nil
}
