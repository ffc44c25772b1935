package collector

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/paths"
	"github.com/flaviut/kibot/pkg/types"
)

// get3DModels enumerates the 3D models referenced by the board and, in
// project mode, the whole project bundle (board copy, schematic variant,
// footprints, symbols, library tables and project metadata).
//
// The returned candidates go through the regular placement pass; extra holds
// the synthesized files. With dry set nothing is written or mutated.
func (o *Options) get3DModels(spec *FileSpec, env outputs.RunEnv, relDirs []string, outDir string, projectMode, dry bool) ([]string, []types.ResolvedFile, error) {
	prj := env.Project()
	if prj == nil || prj.Board == nil {
		return nil, nil, errors.Newf(errors.ErrConfigValid,
			"the `%s` mode requires a board to work with", spec.Type)
	}
	if projectMode && prj.Schematic == nil {
		return nil, nil, errors.New(errors.ErrConfigValid,
			"the `project` mode requires a schematic to work with")
	}
	board := prj.Board

	if projectMode {
		// From the board's point of view the models live in a fixed subdir
		spec.outputDir = "3d_models"
		spec.appendMode = true
	} else {
		spec.outputDir = spec.destDir
	}

	var candidates []string
	for _, model := range board.Models() {
		if !matchModel(spec.Source, model) {
			continue
		}
		candidates = append(candidates, model)
	}

	willSave := spec.SavePCB || projectMode

	// Point the board copy at the relocated models
	if willSave && !dry {
		for _, model := range candidates {
			rel, matched := paths.StripBase(model, relDirs)
			if !matched {
				rel = filepath.Base(model)
			}
			board.RenameModel(model, kicad.ProjectVar+"/"+filepath.ToSlash(filepath.Join(spec.outputDir, rel)))
		}
	}

	// Include the STEP/WRL sibling of every matched model
	for _, model := range candidates {
		sibling := formatSibling(model)
		if sibling == "" || contains(candidates, sibling) {
			continue
		}
		if !fileExists(env.FS(), sibling) || !matchModel(spec.Source, sibling) {
			continue
		}
		candidates = append(candidates, sibling)
	}

	var extra []types.ResolvedFile
	if willSave {
		saved, err := o.saveProjectCopy(spec, env, outDir, projectMode, dry)
		if err != nil {
			return nil, nil, err
		}
		extra = saved
	}

	if projectMode {
		// From the output's point of view the models nest under the dest dir
		spec.outputDir = filepath.Join(spec.destDir, spec.outputDir)
	}
	return candidates, extra, nil
}

// saveProjectCopy writes the modified board alongside the extracted assets
// and, in project mode, the schematic variant, footprint and symbol
// libraries and the project metadata files.
func (o *Options) saveProjectCopy(spec *FileSpec, env outputs.RunEnv, outDir string, projectMode, dry bool) ([]types.ResolvedFile, error) {
	prj := env.Project()
	fsys := env.FS()

	destDirAbs := outDir
	boardBase := filepath.Base(prj.Board.FileName())
	boardRel := boardBase
	if projectMode {
		destDirAbs = filepath.Join(outDir, spec.destDir)
		boardRel = filepath.Join(spec.destDir, boardBase)
	}
	boardAbs := filepath.Join(destDirAbs, boardBase)

	var extra []types.ResolvedFile

	if !dry {
		if err := fsys.MkdirAll(destDirAbs, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "creating `%s`", destDirAbs)
		}
		o.logger.Debug().Str("file", boardAbs).Msg("Saving the board copy")
		if err := prj.Board.Save(boardAbs); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "saving board to `%s`", boardAbs)
		}
	}

	if projectMode {
		sch := prj.Schematic
		if !dry {
			o.logger.Debug().Str("dir", destDirAbs).Msg("Saving the schematic variant")
			if err := sch.SaveVariant(destDirAbs); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "saving schematic to `%s`", destDirAbs)
			}
		}
		schDir := filepath.Dir(sch.FileName())
		for _, f := range sch.Files() {
			extra = append(extra, types.ResolvedFile{
				Dest: filepath.Join(spec.destDir, paths.RelDest(f, schDir)),
			})
		}
	}

	extra = append(extra, types.ResolvedFile{Dest: boardRel})

	// Project metadata travels with the board
	prjFiles, err := kicad.CopyProject(fsys, prj.ProFile, boardAbs, dry)
	if err != nil {
		return nil, err
	}
	for _, name := range prjFiles {
		extra = append(extra, types.ResolvedFile{Dest: paths.RelDest(name, outDir)})
	}

	if projectMode {
		fpFiles, err := o.copyFootprints(env, spec.destDir, outDir, dry)
		if err != nil {
			return nil, err
		}
		extra = append(extra, fpFiles...)

		symFiles, err := o.copySymbols(env, spec.destDir, outDir, dry)
		if err != nil {
			return nil, err
		}
		extra = append(extra, symFiles...)
	}
	return extra, nil
}

// matchModel applies the FileSpec source pattern to a model path. Patterns
// with a separator match the whole path, plain patterns match the file name.
func matchModel(pattern, model string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	probe := filepath.Base(model)
	if strings.ContainsRune(pattern, '/') {
		probe = filepath.ToSlash(model)
	}
	ok, err := doublestar.Match(pattern, probe)
	return err == nil && ok
}

// formatSibling returns the STEP counterpart of a WRL model and vice versa.
func formatSibling(model string) string {
	switch {
	case strings.HasSuffix(model, ".wrl"):
		return strings.TrimSuffix(model, ".wrl") + ".step"
	case strings.HasSuffix(model, ".step"):
		return strings.TrimSuffix(model, ".step") + ".wrl"
	}
	return ""
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
