package preflight

import (
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/registry"
	"github.com/flaviut/kibot/pkg/types"
	"gopkg.in/yaml.v3"
)

// Preflight is a check or preparation step run before any output,
// independent of any single output.
type Preflight interface {
	Name() string
	Run(env outputs.RunEnv) error
}

// TargetLister is implemented by preflights that produce files, so the
// makefile mode can emit rules for them.
type TargetLister interface {
	Targets(env outputs.RunEnv) []string
	Dependencies(env outputs.RunEnv) []string
}

// Factory builds a preflight from its configuration node.
type Factory func(node *yaml.Node) (Preflight, error)

// typeRegistry is the process-wide catalog of preflight types, filled from
// init() during the plugin-loading phase.
var typeRegistry = registry.New[Factory]()

// RegisterType makes a preflight type available to the configuration loader.
func RegisterType(name string, factory Factory) {
	registry.MustRegister(typeRegistry, name, factory)
}

// IsRegistered reports whether a preflight type exists.
func IsRegistered(name string) bool {
	return typeRegistry.Has(name)
}

// New instantiates a configured preflight.
func New(name string, node *yaml.Node) (Preflight, error) {
	factory, err := typeRegistry.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrUnknownTarget, "unknown preflight `%s`", name)
	}
	return factory(node)
}

// ApplySkips filters the enabled preflights according to the -s/--skip-pre
// list. The special value "all" skips every preflight; it cannot be part of
// a comma-separated list. Skipping an unknown preflight type is an error;
// skipping one that is not in use only warns.
func ApplySkips(prefs []Preflight, skip string, warner types.Warner) ([]Preflight, error) {
	if skip == "" {
		return prefs, nil
	}
	if skip == "all" {
		return nil, nil
	}

	inUse := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		inUse[p.Name()] = true
	}

	skipped := make(map[string]bool)
	for _, name := range strings.Split(skip, ",") {
		if name == "all" {
			return nil, errors.New(errors.ErrInvalidInput,
				"`all` can't be part of a list of preflights to skip, use `-s all`")
		}
		if !IsRegistered(name) {
			return nil, errors.Newf(errors.ErrUnknownTarget, "unknown preflight `%s`", name)
		}
		if !inUse[name] {
			warner.Warnf("`%s` preflight is not in use, no need to skip", name)
			continue
		}
		skipped[name] = true
	}

	var kept []Preflight
	for _, p := range prefs {
		if !skipped[p.Name()] {
			kept = append(kept, p)
		}
	}
	return kept, nil
}
