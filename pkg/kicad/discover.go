package kicad

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/types"
)

// Discover locates the project files under dir. Explicit paths win; when a
// file is not given it is picked up from the directory, warning if the
// choice is ambiguous. The collaborator fields stay unset; they are wired by
// the platform integration, not by discovery.
func Discover(fsys types.FS, dir, boardFile, schFile string, warner types.Warner) (*Project, error) {
	logger := logging.GetLogger("kicad")

	sch, err := pickFile(fsys, dir, schFile, "*.kicad_sch", "-e", warner)
	if err != nil {
		return nil, err
	}

	board := boardFile
	if board == "" && sch != "" {
		// Prefer the board matching the schematic
		sibling := strings.TrimSuffix(sch, filepath.Ext(sch)) + ".kicad_pcb"
		if fileExists(fsys, sibling) {
			board = sibling
		}
	}
	board, err = pickFile(fsys, dir, board, "*.kicad_pcb", "-b", warner)
	if err != nil {
		return nil, err
	}

	var pro string
	for _, base := range []string{board, sch} {
		if base == "" {
			continue
		}
		candidate := strings.TrimSuffix(base, filepath.Ext(base)) + ".kicad_pro"
		if fileExists(fsys, candidate) {
			pro = candidate
			break
		}
	}

	logger.Debug().
		Str("board", board).
		Str("schematic", sch).
		Str("project", pro).
		Msg("Project files resolved")

	return &Project{BoardFile: board, SchFile: sch, ProFile: pro}, nil
}

// pickFile validates an explicit path or finds one matching pattern in dir.
// No match is not an error; outputs requiring the file fail later with a
// configuration error.
func pickFile(fsys types.FS, dir, explicit, pattern, flag string, warner types.Warner) (string, error) {
	if explicit != "" {
		if !fileExists(fsys, explicit) {
			return "", errors.Newf(errors.ErrFileNotFound, "file not found `%s`", explicit)
		}
		return explicit, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "searching `%s`", pattern)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	if len(matches) > 1 && warner != nil {
		warner.Warnf("More than one `%s` file found in `%s`, using `%s` (use %s to pick another)",
			pattern, dir, matches[0], flag)
	}
	return matches[0], nil
}

func fileExists(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}
