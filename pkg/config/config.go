package config

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/preflight"
	"github.com/flaviut/kibot/pkg/types"
	"gopkg.in/yaml.v3"
)

// supportedVersion is the only config format version we understand.
const supportedVersion = 1

// RunConfig is a parsed run configuration: the output catalog plus the
// enabled preflights.
type RunConfig struct {
	Registry   *outputs.Registry
	Preflights []preflight.Preflight
}

type headerYAML struct {
	Version int `yaml:"version"`
}

type outputYAML struct {
	Name         string    `yaml:"name"`
	Comment      string    `yaml:"comment"`
	Type         string    `yaml:"type"`
	Dir          string    `yaml:"dir"`
	Priority     *int      `yaml:"priority"`
	Groups       []string  `yaml:"groups"`
	Categories   []string  `yaml:"categories"`
	RunByDefault *bool     `yaml:"run_by_default"`
	Options      yaml.Node `yaml:"options"`
}

type groupYAML struct {
	Name    string   `yaml:"name"`
	Outputs []string `yaml:"outputs"`
}

type runConfigYAML struct {
	Kibot      *headerYAML          `yaml:"kibot"`
	Preflight  map[string]yaml.Node `yaml:"preflight"`
	Outputs    []outputYAML         `yaml:"outputs"`
	Groups     []groupYAML          `yaml:"groups"`
}

// defaultPriority is used when an output doesn't specify one.
const defaultPriority = 50

// Load reads and parses a run configuration file.
func Load(fsys types.FS, path string) (*RunConfig, error) {
	logger := logging.GetLogger("config")
	logger.Debug().Str("path", path).Msg("Loading config")

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading config `%s`", path)
	}
	return Parse(data)
}

// Parse builds a RunConfig from raw YAML.
func Parse(data []byte) (*RunConfig, error) {
	var raw runConfigYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "parsing config")
	}
	if raw.Kibot == nil {
		return nil, errors.New(errors.ErrConfigValid,
			"no `kibot` section, this doesn't look like a valid config file")
	}
	if raw.Kibot.Version != supportedVersion {
		return nil, errors.Newf(errors.ErrConfigValid,
			"unsupported config version %d (supported: %d)", raw.Kibot.Version, supportedVersion)
	}

	cfg := &RunConfig{Registry: outputs.NewRegistry()}

	for i := range raw.Outputs {
		out, err := buildOutput(&raw.Outputs[i])
		if err != nil {
			return nil, err
		}
		if err := cfg.Registry.Register(out); err != nil {
			return nil, err
		}
	}

	if err := applyGroups(cfg.Registry, raw.Groups); err != nil {
		return nil, err
	}

	prefs, err := buildPreflights(raw.Preflight)
	if err != nil {
		return nil, err
	}
	cfg.Preflights = prefs

	return cfg, nil
}

func buildOutput(raw *outputYAML) (*outputs.Output, error) {
	if raw.Name == "" {
		return nil, errors.New(errors.ErrConfigValid, "output without a name")
	}
	if raw.Type == "" {
		return nil, errors.Newf(errors.ErrConfigValid, "output `%s` without a type", raw.Name)
	}

	opts, err := outputs.NewOptions(raw.Type)
	if err != nil {
		return nil, errors.Newf(errors.ErrConfigValid,
			"unknown output type `%s` in `%s`", raw.Type, raw.Name)
	}

	var node *yaml.Node
	if raw.Options.Kind != 0 {
		node = &raw.Options
	}
	if err := opts.Configure(node); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid,
			"in section `%s` (%s)", raw.Name, raw.Type)
	}

	priority := defaultPriority
	if raw.Priority != nil {
		priority = *raw.Priority
	}
	runByDefault := true
	if raw.RunByDefault != nil {
		runByDefault = *raw.RunByDefault
	}

	return &outputs.Output{
		Name:         raw.Name,
		Comment:      raw.Comment,
		Type:         raw.Type,
		Dir:          raw.Dir,
		Priority:     priority,
		Groups:       raw.Groups,
		Categories:   raw.Categories,
		RunByDefault: runByDefault,
		Options:      opts,
	}, nil
}

// applyGroups folds the explicit `groups:` section into the per-output group
// memberships.
func applyGroups(reg *outputs.Registry, groups []groupYAML) error {
	for _, g := range groups {
		if g.Name == "" {
			return errors.New(errors.ErrConfigValid, "group without a name")
		}
		for _, member := range g.Outputs {
			out, ok := reg.Get(member)
			if !ok {
				return errors.Newf(errors.ErrUnknownTarget,
					"group `%s` references unknown output `%s`", g.Name, member)
			}
			if !contains(out.Groups, g.Name) {
				out.Groups = append(out.Groups, g.Name)
			}
		}
	}
	return nil
}

func buildPreflights(raw map[string]yaml.Node) ([]preflight.Preflight, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	prefs := make([]preflight.Preflight, 0, len(names))
	for _, name := range names {
		node := raw[name]
		pre, err := preflight.New(name, &node)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pre)
	}
	return prefs, nil
}

// Find locates the run configuration in dir when none was given on the
// command line. Exactly one `*.kibot.yaml`/`*.kibot.yml` must exist.
func Find(dir string) (string, error) {
	var matches []string
	for _, pattern := range []string{"*.kibot.yaml", "*.kibot.yml"} {
		found, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "searching for a config file")
		}
		matches = append(matches, found...)
	}
	switch len(matches) {
	case 0:
		return "", errors.Newf(errors.ErrConfigLoad,
			"no config file found in `%s` (names must end in .kibot.yaml)", dir)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", errors.Newf(errors.ErrConfigLoad,
			"more than one config file found: %v, use -c to pick one", matches)
	}
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
