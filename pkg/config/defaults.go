package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Defaults are the per-user application defaults, loaded from a TOML file in
// the XDG config directory. Command line flags override them.
type Defaults struct {
	// OutDir is the default top-level output directory.
	OutDir string `toml:"out_dir"`

	// Verbosity is the default log verbosity level.
	Verbosity int `toml:"verbosity"`

	// DontStop keeps going after a failed preflight or output.
	DontStop bool `toml:"dont_stop"`

	// Makefile is the default file name for makefile mode.
	Makefile string `toml:"makefile"`
}

// DefaultsPath returns the location of the user defaults file.
func DefaultsPath() string {
	return filepath.Join(xdg.ConfigHome, "kibot", "kibot.toml")
}

// LoadDefaults reads the user defaults, falling back to the built-in values
// when the file doesn't exist.
func LoadDefaults(fsys types.FS) (*Defaults, error) {
	defaults := &Defaults{
		OutDir:   ".",
		Makefile: "Makefile",
	}

	path := DefaultsPath()
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading defaults `%s`", path)
	}
	if err := toml.Unmarshal(data, defaults); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing defaults `%s`", path)
	}
	return defaults, nil
}
