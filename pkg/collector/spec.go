package collector

import (
	"regexp"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/paths"
	"gopkg.in/yaml.v3"
)

// FileSpec is one declarative rule describing which files to collect and
// where to place them.
type FileSpec struct {
	// Source is a glob pattern (files/out_files), an output name (output)
	// or a pattern matched against model names (3d_models).
	Source string

	// Type selects where candidates come from.
	Type SourceType

	// Filter must match every candidate path, synthesized files included.
	Filter *regexp.Regexp

	// Dest is the destination subdirectory; empty mirrors the source
	// layout. A trailing '+' switches to append mode: files keep their
	// relative layout nested under the directory instead of being
	// flattened into it.
	Dest string

	// SavePCB stores a board copy modified to use the relocated 3D models
	// (3d_models mode; implied by project mode).
	SavePCB bool

	destDir    string
	appendMode bool

	// outputDir is the subdirectory renamed model references point into.
	// Set during 3d_models/project resolution.
	outputDir string
}

type fileSpecYAML struct {
	Source     string     `yaml:"source"`
	SourceType SourceType `yaml:"source_type"`
	Filter     string     `yaml:"filter"`
	Dest       string     `yaml:"dest"`
	SavePCB    bool       `yaml:"save_pcb"`
}

// UnmarshalYAML parses one entry of the `files` list, applying defaults and
// compiling the filter.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	raw := fileSpecYAML{Source: "*", Filter: ".*"}
	if err := node.Decode(&raw); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "parsing file spec")
	}

	filter, err := regexp.Compile(raw.Filter)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "invalid filter `%s`", raw.Filter)
	}

	f.Source = raw.Source
	f.Type = raw.SourceType
	f.Filter = filter
	f.Dest = raw.Dest
	f.SavePCB = raw.SavePCB
	f.destDir, f.appendMode = paths.ParseDest(raw.Dest)
	return nil
}

// matches applies the filter. The filter anchors at the start of the path,
// matching the semantics of a regular-expression prefix match.
func (f *FileSpec) matches(path string) bool {
	loc := f.Filter.FindStringIndex(path)
	return loc != nil && loc[0] == 0
}
