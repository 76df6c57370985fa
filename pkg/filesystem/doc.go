// Package filesystem provides filesystem implementations for stencil.
//
// This package contains implementations of the types.FS interface:
// the standard OS filesystem used by the CLI and an afero-backed
// in-memory filesystem used by engine tests.
package filesystem
