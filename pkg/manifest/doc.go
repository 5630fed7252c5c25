// Package manifest implements installing dotfiles from a manifest
// repository and syncing local edits back into it.
//
// A Manifest is parsed from the jtd.yaml file at the root of a freshly
// cloned repository. Each Dotfile maps a file in that repository to a
// target path on this machine. Provenance (which commit a dotfile was
// installed and last synced from) lives in a metadata.Store, which lets
// Sync tell local edits apart from upstream ones and merge the two.
//
// The package never talks to the terminal itself. Questions go through a
// Prompter, merge conflicts are handed to a ConflictResolver and progress is
// reported through a Reporter.
package manifest
