package manifest

import (
	"fmt"
	"strings"
)

// DefaultCommitPrefix is prepended to every commit message jtd writes
const DefaultCommitPrefix = "🔁 "

// SyncConfig is the commit policy of a manifest
type SyncConfig struct {
	CommitPrefix  string `yaml:"commit_prefix"`
	SquashCommits bool   `yaml:"squash_commits"`
}

// DefaultSyncConfig returns the policy used when a manifest sets none
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		CommitPrefix:  DefaultCommitPrefix,
		SquashCommits: true,
	}
}

// CommitMessage describes a sync of the named dotfiles:
// "<prefix>Sync kitty dotfile" or "<prefix>Sync dotfiles for a, b and c"
func (c SyncConfig) CommitMessage(names []string) string {
	switch len(names) {
	case 0:
		return c.CommitPrefix + "Sync dotfiles"
	case 1:
		return fmt.Sprintf("%sSync %s dotfile", c.CommitPrefix, names[0])
	}

	list := strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	return fmt.Sprintf("%sSync dotfiles for %s", c.CommitPrefix, list)
}
