package vcs

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/paths"
)

// Environment variables consulted for HTTPS credentials
const (
	EnvGitUsername = "JTD_GIT_USERNAME"
	EnvGitPassword = "JTD_GIT_PASSWORD"
)

// CredentialProvider supplies authentication for a remote. Implementations
// are created for a single clone or push and may remember answers for the
// lifetime of that operation only.
type CredentialProvider interface {
	AuthMethod(remoteURL string) (transport.AuthMethod, error)
}

// CredentialPrompter asks the user for credentials
type CredentialPrompter interface {
	Input(message, defaultValue string) (string, error)
	Password(message string) (string, error)
}

// NoCredentials always connects anonymously
type NoCredentials struct{}

// AuthMethod implements CredentialProvider
func (NoCredentials) AuthMethod(string) (transport.AuthMethod, error) {
	return nil, nil
}

// InteractiveCredentials resolves credentials from the SSH agent, default
// key files, the environment and finally the prompter. Answers are reused
// for later calls on the same value. Over HTTP(S) the first call without
// configured credentials connects anonymously; the prompter is only asked
// once the remote has rejected that.
type InteractiveCredentials struct {
	Prompter CredentialPrompter
	// KeyFiles overrides the private keys tried when no agent is available
	KeyFiles []string

	cached        transport.AuthMethod
	anonymousSeen bool
}

// NewInteractiveCredentials returns a provider for one operation
func NewInteractiveCredentials(prompter CredentialPrompter) *InteractiveCredentials {
	return &InteractiveCredentials{Prompter: prompter}
}

// AuthMethod implements CredentialProvider
func (c *InteractiveCredentials) AuthMethod(remoteURL string) (transport.AuthMethod, error) {
	if c.cached != nil {
		return c.cached, nil
	}

	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVCS, "invalid remote %s", remoteURL)
	}

	var auth transport.AuthMethod
	switch ep.Protocol {
	case "ssh":
		auth, err = c.sshAuth(ep)
	case "http", "https":
		auth, err = c.httpAuth(ep)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.cached = auth
	return auth, nil
}

func (c *InteractiveCredentials) sshAuth(ep *transport.Endpoint) (transport.AuthMethod, error) {
	user := ep.User
	if user == "" {
		user = "git"
	}

	if os.Getenv("SSH_AUTH_SOCK") != "" {
		if auth, err := ssh.NewSSHAgentAuth(user); err == nil {
			log.Debug().Str("user", user).Msg("Using SSH agent")
			return auth, nil
		}
	}

	for _, key := range c.keyFiles() {
		if _, err := os.Stat(key); err != nil {
			continue
		}

		auth, err := ssh.NewPublicKeysFromFile(user, key, "")
		if err == nil {
			log.Debug().Str("key", key).Msg("Using SSH key")
			return auth, nil
		}

		if c.Prompter == nil {
			continue
		}
		passphrase, perr := c.Prompter.Password("Passphrase for " + key)
		if perr != nil {
			return nil, perr
		}
		auth, err = ssh.NewPublicKeysFromFile(user, key, passphrase)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrVCS, "cannot load SSH key %s", key)
		}
		return auth, nil
	}

	return nil, errors.Newf(errors.ErrVCS, "no SSH agent or usable key found for %s", ep.Host).
		WithDetail("host", ep.Host)
}

func (c *InteractiveCredentials) keyFiles() []string {
	if len(c.KeyFiles) > 0 {
		return c.KeyFiles
	}
	sshDir := paths.ExpandHome("~/.ssh")
	return []string{
		filepath.Join(sshDir, "id_ed25519"),
		filepath.Join(sshDir, "id_ecdsa"),
		filepath.Join(sshDir, "id_rsa"),
	}
}

func (c *InteractiveCredentials) httpAuth(ep *transport.Endpoint) (transport.AuthMethod, error) {
	username := os.Getenv(EnvGitUsername)
	password := os.Getenv(EnvGitPassword)
	if username == "" {
		username = ep.User
	}
	if password == "" {
		password = ep.Password
	}

	if username != "" && password != "" {
		return &http.BasicAuth{Username: username, Password: password}, nil
	}

	if !c.anonymousSeen || c.Prompter == nil {
		c.anonymousSeen = true
		return nil, nil
	}

	var err error
	if username == "" {
		username, err = c.Prompter.Input("Username for "+ep.Host, "")
		if err != nil {
			return nil, err
		}
	}
	if password == "" {
		password, err = c.Prompter.Password("Password or token for " + username)
		if err != nil {
			return nil, err
		}
	}

	if username == "" && password == "" {
		return nil, nil
	}
	return &http.BasicAuth{Username: username, Password: password}, nil
}
