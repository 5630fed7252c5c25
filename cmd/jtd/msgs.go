package jtd

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Sync dotfiles between this machine and a git repository"
	MsgInstallShort     = "Install dotfiles from a repository"
	MsgSyncShort        = "Commit and push local dotfile edits"
	MsgDiffShort        = "Show how a local dotfile differs from the repository"
	MsgDiffLong         = "Clone REPOSITORY and print the diff from its copy of DOTFILE to the local one."
	MsgInteractiveShort = "Install dotfiles with a guided wizard"
	MsgConfigShort      = "Show or create the jtd configuration file"
	MsgConfigShowShort  = "Print the effective configuration"
	MsgConfigInitShort  = "Write a commented default configuration file"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Wizard
	MsgWizardWelcome = "Welcome to jtd!\n" +
		"This wizard installs dotfiles from a repository that has a jtd.yaml manifest.\n" +
		"See <info>https://github.com/dob9601/jointhedots</info> for how to write one.\n"

	// Status messages
	MsgInstallSummary = "Installed %d dotfile(s), skipped %d"
	MsgSyncSummary    = "Synced %d dotfile(s) in %d commit(s)"
	MsgNothingToSync  = "Nothing to sync"
	MsgNoDifferences  = "<dotfile>%s</dotfile> matches the repository"
	MsgConfigWritten  = "Wrote <path>%s</path>"
	MsgConfigExists   = "config file %s already exists; use --force to overwrite it"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Path of the configuration file"
	MsgFlagAll        = "Use every dotfile in the manifest"
	MsgFlagForce      = "Overwrite targets without asking, even when they have local edits"
	MsgFlagTrust      = "Run pre_install and post_install commands without asking"
	MsgFlagSkipHooks  = "Never run pre_install and post_install commands"
	MsgFlagSource     = "Host of owner/name repositories (github, gitlab)"
	MsgFlagMethod     = "Clone over ssh or https"
	MsgFlagManifest   = "Manifest file inside the repository"
	MsgFlagBranch     = "Branch to install from and push to"
	MsgFlagMetadata   = "Metadata file to read and update"
	MsgFlagMessage    = "Commit message for the squashed commit"
	MsgFlagNaive      = "Sync without metadata without asking"
	MsgFlagConfigInit = "Overwrite an existing configuration file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
