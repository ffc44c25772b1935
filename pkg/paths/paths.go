package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
)

// ParseDest splits a declarative destination into the directory and the
// append flag. A trailing '+' means "append, don't flatten": matched files
// keep their relative layout nested under the directory instead of being
// flattened into it.
func ParseDest(dest string) (dir string, appendMode bool) {
	if strings.HasSuffix(dest, "+") {
		return strings.TrimSuffix(dest, "+"), true
	}
	return dest, false
}

// StripBase returns path relative to the first base directory that contains
// it. The bases are tried in order, first match wins. When no base matches
// the second return value is false and the caller should flatten to the
// basename.
func StripBase(path string, bases []string) (string, bool) {
	for _, base := range bases {
		if base == "" {
			continue
		}
		base = filepath.Clean(base)
		if path == base {
			return ".", true
		}
		if strings.HasPrefix(path, base+string(filepath.Separator)) {
			rel, err := filepath.Rel(base, path)
			if err != nil {
				continue
			}
			return rel, true
		}
	}
	return "", false
}

// Flatten places src directly inside dir, dropping any directory structure.
func Flatten(dir, src string) string {
	return filepath.Join(dir, filepath.Base(src))
}

// RelDest computes the destination for a source path mirrored relative to
// its root directory. Sources outside root flatten to the basename.
func RelDest(src, root string) string {
	rel, err := filepath.Rel(root, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(src)
	}
	return rel
}

// CheckWithinRoot rejects destinations that would escape the output root via
// absolute paths or '..' traversal. The path is validated after cleaning, so
// 'a/../b' is fine while '../b' is not.
func CheckWithinRoot(dest string) error {
	if filepath.IsAbs(dest) {
		return errors.Newf(errors.ErrPathEscape, "destination `%s` is absolute", dest)
	}
	clean := filepath.Clean(dest)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrPathEscape, "destination `%s` escapes the output directory", dest)
	}
	return nil
}

// MayBeRel returns the path relative to the working directory when that form
// is shorter. Used to keep log and warning messages readable.
func MayBeRel(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err == nil && len(rel) < len(path) {
		return rel
	}
	return path
}
