// Package filesystem provides the afero-backed file helpers used by jtd.
//
// Production code runs on the OS filesystem (NewOS); tests may substitute an
// in-memory filesystem (NewMemory) wherever no git working tree is involved.
package filesystem
