package executor

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/paths"
	"github.com/flaviut/kibot/pkg/types"
	"github.com/rs/zerolog"
)

// Config contains configuration for the copy engine
type Config struct {
	FS types.FS

	// Link creates relative symbolic links instead of copying files
	Link bool

	// Warner receives soft warnings (destination collisions)
	Warner types.Warner
}

// Engine materializes a resolved copy plan on the filesystem.
type Engine struct {
	fs     types.FS
	link   bool
	warner types.Warner
	logger zerolog.Logger
}

// New creates a new copy engine
func New(cfg Config) *Engine {
	return &Engine{
		fs:     cfg.FS,
		link:   cfg.Link,
		warner: cfg.Warner,
		logger: logging.GetLogger("executor"),
	}
}

// Apply copies or links every resolved file into outDir. Entries without a
// source are generated by the collector and skipped. Destination collisions
// within one run are reported as warnings, the later entry wins. A source
// that resolves to its own destination is a configuration error detected
// before any mutation of that entry.
func (e *Engine) Apply(outDir string, files []types.ResolvedFile) error {
	copied := make(map[string]string)

	for _, f := range files {
		if f.Generated() {
			continue
		}
		dest := filepath.Join(outDir, f.Dest)
		destDir := filepath.Dir(dest)
		if err := e.fs.MkdirAll(destDir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "creating `%s`", destDir)
		}

		e.logger.Debug().Str("src", f.Source).Str("dest", dest).Msg("Copying file")

		if prev, ok := copied[dest]; ok {
			e.warner.Warnf("`%s` and `%s` both are copied to `%s`",
				paths.MayBeRel(f.Source), paths.MayBeRel(prev), paths.MayBeRel(dest))
		}

		if err := e.checkSelfCopy(f.Source, dest); err != nil {
			return err
		}

		// Replace files and symlinks only, never recurse into directories
		if info, err := e.fs.Lstat(dest); err == nil && !info.IsDir() {
			if err := e.fs.Remove(dest); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "removing `%s`", dest)
			}
		}

		if e.link {
			rel, err := filepath.Rel(destDir, f.Source)
			if err != nil {
				rel = f.Source
			}
			if err := e.fs.Symlink(rel, dest); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate, "linking `%s`", dest)
			}
		} else {
			if err := e.copyFile(f.Source, dest); err != nil {
				return err
			}
		}
		copied[dest] = f.Source
	}
	return nil
}

// checkSelfCopy detects a source and destination that refer to the same
// filesystem object. A missing destination is fine.
func (e *Engine) checkSelfCopy(src, dest string) error {
	srcInfo, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "source `%s`", src)
	}
	destInfo, err := e.fs.Stat(dest)
	if err != nil {
		return nil
	}
	if os.SameFile(srcInfo, destInfo) {
		return errors.Newf(errors.ErrSelfCopy, "trying to copy `%s` over itself `%s`", src, dest)
	}
	return nil
}

// copyFile copies content and permissions, preserving the modification time.
func (e *Engine) copyFile(src, dest string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "source `%s`", src)
	}
	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "reading `%s`", src)
	}
	perm := info.Mode().Perm()
	if perm == 0 {
		perm = fs.FileMode(0644)
	}
	if err := e.fs.WriteFile(dest, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "writing `%s`", dest)
	}
	if err := e.fs.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		e.logger.Debug().Err(err).Str("dest", dest).Msg("Could not preserve mtime")
	}
	return nil
}
