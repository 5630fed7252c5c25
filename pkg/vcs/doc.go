// Package vcs provides the version-control primitives jtd builds on.
//
// GitRepository splits its work between two backends. Reads (HEAD, commit
// lookup, blob reads at a revision), cloning and pushing go through go-git.
// Mutations of the working tree and history (checkout, commit, merge, reset)
// shell out to the git CLI, since go-git cannot perform three-way merges.
// Every read opens the repository afresh so it always sees objects written
// by the CLI.
package vcs
