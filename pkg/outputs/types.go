package outputs

import (
	"github.com/flaviut/kibot/pkg/registry"
)

// OptionsFactory creates a fresh Options value for one output instance.
type OptionsFactory func() Options

// typeRegistry is the process-wide catalog of output types. Types register
// themselves from init() during the plugin-loading phase; per-run state
// never lives here.
var typeRegistry = registry.New[OptionsFactory]()

// RegisterType makes an output type available to the configuration loader.
// It panics on duplicates, which are programming errors.
func RegisterType(name string, factory OptionsFactory) {
	registry.MustRegister(typeRegistry, name, factory)
}

// NewOptions instantiates the Options for an output type.
func NewOptions(typeName string) (Options, error) {
	factory, err := typeRegistry.Get(typeName)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}

// KnownTypes lists the registered output types, sorted.
func KnownTypes() []string {
	return typeRegistry.List()
}
