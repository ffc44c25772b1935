package collector

import (
	"github.com/flaviut/kibot/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SourceType selects where a FileSpec gets its candidate files from.
// It is a closed set: resolution dispatches exhaustively on it.
type SourceType int

const (
	// SourceFiles globs relative to the current working directory.
	SourceFiles SourceType = iota
	// SourceOutFiles globs relative to the run's output directory.
	SourceOutFiles
	// SourceOutput collects the files generated by another output,
	// triggering it on demand.
	SourceOutput
	// Source3DModels collects the 3D models referenced by the board.
	Source3DModels
	// SourceProject collects the whole project: board, schematic,
	// footprints, symbols, 3D models and project metadata.
	SourceProject
)

var sourceTypeNames = map[string]SourceType{
	"files":     SourceFiles,
	"out_files": SourceOutFiles,
	"output":    SourceOutput,
	"3d_models": Source3DModels,
	"project":   SourceProject,
}

func (s SourceType) String() string {
	switch s {
	case SourceFiles:
		return "files"
	case SourceOutFiles:
		return "out_files"
	case SourceOutput:
		return "output"
	case Source3DModels:
		return "3d_models"
	case SourceProject:
		return "project"
	}
	return "unknown"
}

// UnmarshalYAML parses the source_type configuration value.
func (s *SourceType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	st, ok := sourceTypeNames[name]
	if !ok {
		return errors.Newf(errors.ErrConfigValid,
			"invalid source_type `%s` (use files, out_files, output, 3d_models or project)", name)
	}
	*s = st
	return nil
}
