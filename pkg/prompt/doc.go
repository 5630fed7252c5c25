// Package prompt asks the user questions on the terminal and walks them
// through resolving merge conflicts. Terminal satisfies manifest.Prompter
// and vcs.CredentialPrompter; TerminalResolver satisfies
// manifest.ConflictResolver.
package prompt
