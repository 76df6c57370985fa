package types

import (
	"io/fs"
)

// FS is the filesystem interface required for stencil operations. The
// planning engines only read through it; executors also write. Tests use
// the afero-backed implementation in pkg/filesystem.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Removal operations
	Remove(name string) error
	RemoveAll(path string) error
}
