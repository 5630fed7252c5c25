package vcs

import (
	"fmt"
	"strings"

	"github.com/dob9601/jointhedots/pkg/errors"
)

// Host is a repository hosting provider
type Host string

// Method is the transport used to reach a host
type Method string

// Supported hosts and methods
const (
	GitHub Host = "github"
	GitLab Host = "gitlab"

	SSH   Method = "ssh"
	HTTPS Method = "https"
)

// Hosts lists the supported hosts in display order
var Hosts = []Host{GitHub, GitLab}

// Methods lists the supported methods in display order
var Methods = []Method{SSH, HTTPS}

type hostPrefixes struct {
	ssh   string
	https string
}

var prefixes = map[Host]hostPrefixes{
	GitHub: {ssh: "git@github.com:", https: "https://github.com/"},
	GitLab: {ssh: "git@gitlab.com:", https: "https://gitlab.com/"},
}

// ParseHost parses a host name case-insensitively
func ParseHost(s string) (Host, error) {
	h := Host(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := prefixes[h]; !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "unknown repository source %q (want github or gitlab)", s)
	}
	return h, nil
}

// ParseMethod parses a connection method case-insensitively
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case SSH, HTTPS:
		return m, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown connection method %q (want ssh or https)", s)
}

// String returns the display name of the host
func (h Host) String() string {
	switch h {
	case GitHub:
		return "GitHub"
	case GitLab:
		return "GitLab"
	}
	return string(h)
}

// String returns the display name of the method
func (m Method) String() string {
	return strings.ToUpper(string(m))
}

// RemoteURL builds the clone URL of repository ("owner/name") on host.
// A repository that already looks like a URL or a local path is returned
// unchanged.
func RemoteURL(repository string, host Host, method Method) (string, error) {
	if isURLOrPath(repository) {
		return repository, nil
	}

	repository = strings.TrimSuffix(strings.Trim(repository, "/"), ".git")
	if strings.Count(repository, "/") != 1 || strings.HasPrefix(repository, "/") {
		return "", errors.Newf(errors.ErrInvalidInput, "repository must be of the form owner/name, got %q", repository)
	}

	p, ok := prefixes[host]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "unknown repository source %q", string(host))
	}

	switch method {
	case SSH:
		return fmt.Sprintf("%s%s.git", p.ssh, repository), nil
	case HTTPS:
		return fmt.Sprintf("%s%s.git", p.https, repository), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown connection method %q", string(method))
}

func isURLOrPath(s string) bool {
	return strings.Contains(s, "://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "~")
}
