// TEST TYPE: Unit Tests
// DEPENDENCIES: testify mock
// PURPOSE: Verify credential resolution and the retry-on-rejection flow

package vcs

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Input(message, defaultValue string) (string, error) {
	args := m.Called(message, defaultValue)
	return args.String(0), args.Error(1)
}

func (m *mockPrompter) Password(message string) (string, error) {
	args := m.Called(message)
	return args.String(0), args.Error(1)
}

func TestNoCredentials(t *testing.T) {
	auth, err := NoCredentials{}.AuthMethod("https://github.com/a/b.git")
	require.NoError(t, err)
	assert.Nil(t, auth)
}

func TestInteractiveCredentials_LocalPath(t *testing.T) {
	prompter := &mockPrompter{}
	creds := NewInteractiveCredentials(prompter)

	auth, err := creds.AuthMethod("/srv/git/dotfiles.git")
	require.NoError(t, err)
	assert.Nil(t, auth)
	prompter.AssertNotCalled(t, "Input", mock.Anything, mock.Anything)
}

func TestInteractiveCredentials_HTTPSFromEnv(t *testing.T) {
	t.Setenv(EnvGitUsername, "alice")
	t.Setenv(EnvGitPassword, "s3cret")

	creds := NewInteractiveCredentials(nil)
	auth, err := creds.AuthMethod("https://github.com/alice/dotfiles.git")
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "alice", Password: "s3cret"}, auth)
}

func TestInteractiveCredentials_HTTPSPromptsAfterAnonymous(t *testing.T) {
	t.Setenv(EnvGitUsername, "")
	t.Setenv(EnvGitPassword, "")

	prompter := &mockPrompter{}
	prompter.On("Input", "Username for github.com", "").Return("bob", nil).Once()
	prompter.On("Password", "Password or token for bob").Return("token", nil).Once()

	creds := NewInteractiveCredentials(prompter)
	url := "https://github.com/bob/dotfiles.git"

	first, err := creds.AuthMethod(url)
	require.NoError(t, err)
	assert.Nil(t, first, "first attempt is anonymous")

	second, err := creds.AuthMethod(url)
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "bob", Password: "token"}, second)

	// Answers are remembered for the rest of the operation
	third, err := creds.AuthMethod(url)
	require.NoError(t, err)
	assert.Same(t, second, third)

	prompter.AssertExpectations(t)
}

type scriptedProvider struct {
	methods []transport.AuthMethod
	calls   int
}

func (s *scriptedProvider) AuthMethod(string) (transport.AuthMethod, error) {
	m := s.methods[s.calls]
	s.calls++
	return m, nil
}

func TestWithAuth(t *testing.T) {
	basic := &http.BasicAuth{Username: "u", Password: "p"}

	t.Run("success needs one attempt", func(t *testing.T) {
		p := &scriptedProvider{methods: []transport.AuthMethod{nil}}
		attempts := 0
		err := withAuth("https://x/y.git", p, func(transport.AuthMethod) error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("rejection retries with new credentials", func(t *testing.T) {
		p := &scriptedProvider{methods: []transport.AuthMethod{nil, basic}}
		var seen []transport.AuthMethod
		err := withAuth("https://x/y.git", p, func(auth transport.AuthMethod) error {
			seen = append(seen, auth)
			if auth == nil {
				return transport.ErrAuthenticationRequired
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []transport.AuthMethod{nil, basic}, seen)
	})

	t.Run("no new credentials keeps the error", func(t *testing.T) {
		p := &scriptedProvider{methods: []transport.AuthMethod{nil, nil}}
		err := withAuth("https://x/y.git", p, func(transport.AuthMethod) error {
			return transport.ErrAuthorizationFailed
		})
		assert.ErrorIs(t, err, transport.ErrAuthorizationFailed)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		p := &scriptedProvider{methods: []transport.AuthMethod{nil}}
		err := withAuth("https://x/y.git", p, func(transport.AuthMethod) error {
			return transport.ErrRepositoryNotFound
		})
		assert.ErrorIs(t, err, transport.ErrRepositoryNotFound)
		assert.Equal(t, 1, p.calls)
	})
}
