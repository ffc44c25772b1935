package types

import (
	"io/fs"
	"time"
)

// FS is the filesystem interface required for kibot operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Chtimes(name string, atime, mtime time.Time) error

	// Lstat can fall back to Stat in test implementations
	Lstat(name string) (fs.FileInfo, error)
}

// Warner receives soft warnings: conditions that are reported and counted
// but never abort a run.
type Warner interface {
	Warnf(format string, args ...interface{})
}
