package kicad

import (
	"path/filepath"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/types"
)

// Project metadata file extensions copied alongside the board.
var projectExts = []string{".kicad_pro", ".kicad_prl", ".kicad_dru"}

// CopyProject copies the project metadata files (.kicad_pro, .kicad_prl and
// .kicad_dru) that live next to proFile so they land next to dstBoard,
// renamed after the destination board. Missing source files are skipped.
// When dry is true nothing is written, only the destination names of the
// files that would be copied are returned.
func CopyProject(fsys types.FS, proFile, dstBoard string, dry bool) ([]string, error) {
	if proFile == "" {
		return nil, nil
	}
	srcBase := strings.TrimSuffix(proFile, filepath.Ext(proFile))
	dstBase := strings.TrimSuffix(dstBoard, filepath.Ext(dstBoard))

	var out []string
	for _, ext := range projectExts {
		src := srcBase + ext
		if _, err := fsys.Stat(src); err != nil {
			continue
		}
		dst := dstBase + ext
		if !dry {
			data, err := fsys.ReadFile(src)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "reading project file `%s`", src)
			}
			if err := fsys.WriteFile(dst, data, 0644); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "writing project file `%s`", dst)
			}
		}
		out = append(out, dst)
	}
	return out, nil
}
