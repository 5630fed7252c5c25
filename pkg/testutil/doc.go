// Package testutil provides utilities for testing jtd components.
//
// Key components:
//   - TestEnvironment: isolated HOME and XDG directories under t.TempDir
//   - GitFixture: a bare "remote" repository plus working clones, driven
//     through the git CLI so tests observe exactly what jtd produces
//   - FileTree: declarative creation of files on an afero filesystem
//
// All test data should be defined inline, not in external files, and each
// test should be completely isolated with no shared state.
package testutil
