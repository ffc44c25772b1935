package collector

import (
	"path/filepath"
	"sort"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/types"
)

// copyFootprints extracts every footprint the board references into a
// per-library directory tree under `<dest>/footprints` and synthesizes the
// footprint library table pointing at the new locations. Missing libraries
// and missing footprints are warnings, not errors.
func (o *Options) copyFootprints(env outputs.RunEnv, destDir, outDir string, dry bool) ([]types.ResolvedFile, error) {
	prj := env.Project()
	fsys := env.FS()

	base := filepath.Join(destDir, "footprints")
	aliases := make(map[string]kicad.LibAlias)
	added := make(map[string]bool)
	var extra []types.ResolvedFile

	for _, fp := range prj.Board.Footprints() {
		nick := fp.LibNickname
		var libPath string
		var found bool
		if prj.Libs != nil {
			libPath, found = prj.Libs.FootprintLibPath(nick)
		}
		if !found {
			env.Warnf("Missing footprint library `%s`", nick)
			continue
		}
		if _, seen := aliases[nick]; !seen {
			aliases[nick] = kicad.LibAlias{
				Name: nick,
				Type: "KiCad",
				URI:  kicad.ProjectVar + "/footprints/" + nick + kicad.PrettyExt,
			}
		}

		modName := fp.Name + kicad.FootprintExt
		src := filepath.Join(libPath, modName)
		if !fileExists(fsys, src) {
			env.Warnf("Missing footprint `%s` (%s:%s)", fp.Name, nick, fp.Name)
			continue
		}
		if added[src] {
			continue
		}
		added[src] = true
		extra = append(extra, types.ResolvedFile{
			Source: src,
			Dest:   filepath.Join(base, nick+kicad.PrettyExt, modName),
		})
	}

	tableRel := filepath.Join(destDir, kicad.FPLibTable)
	extra = append(extra, types.ResolvedFile{Dest: tableRel})
	if !dry {
		tablePath := filepath.Join(outDir, tableRel)
		if err := fsys.MkdirAll(filepath.Dir(tablePath), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "creating `%s`", filepath.Dir(tablePath))
		}
		if err := kicad.WriteLibTable(fsys, tablePath, aliases, true); err != nil {
			return nil, err
		}
	}
	return extra, nil
}

// copySymbols extracts every symbol library the schematic uses into new
// libraries under `<dest>/symbols` and synthesizes the symbol library table.
// Locally edited symbols stay inside the schematic copy and get no library.
func (o *Options) copySymbols(env outputs.RunEnv, destDir, outDir string, dry bool) ([]types.ResolvedFile, error) {
	prj := env.Project()
	if prj.Schematic == nil {
		return nil, nil
	}
	fsys := env.FS()
	sch := prj.Schematic

	base := filepath.Join(destDir, "symbols")
	libs := sch.SymbolLibs()
	libNames := make([]string, 0, len(libs))
	for lib := range libs {
		if lib == "" {
			continue
		}
		libNames = append(libNames, lib)
	}
	sort.Strings(libNames)

	extra := []types.ResolvedFile{{Dest: filepath.Join(destDir, kicad.SymLibTable)}}
	aliases := make(map[string]kicad.LibAlias)

	if !dry && len(libNames) > 0 {
		libDirAbs := filepath.Join(outDir, base)
		if err := fsys.MkdirAll(libDirAbs, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "creating `%s`", libDirAbs)
		}
	}

	for _, lib := range libNames {
		if !dry {
			if err := sch.WriteLib(filepath.Join(outDir, base), lib, libs[lib]); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "writing symbol library `%s`", lib)
			}
		}
		aliases[lib] = kicad.LibAlias{
			Name: lib,
			Type: "KiCad",
			URI:  kicad.ProjectVar + "/symbols/" + lib + kicad.SymbolLibExt,
		}
		extra = append(extra, types.ResolvedFile{Dest: filepath.Join(base, lib+kicad.SymbolLibExt)})
	}

	if !dry {
		tablePath := filepath.Join(outDir, destDir, kicad.SymLibTable)
		if err := kicad.WriteLibTable(fsys, tablePath, aliases, false); err != nil {
			return nil, err
		}
	}
	return extra, nil
}
