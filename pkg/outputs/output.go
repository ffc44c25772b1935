package outputs

import (
	"fmt"

	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/types"
	"gopkg.in/yaml.v3"
)

// RunEnv is the capability surface the orchestrator hands to an output while
// it resolves files or runs. It carries the per-run state, so independent
// runs never share done flags.
type RunEnv interface {
	// FS returns the filesystem operations interface.
	FS() types.FS

	// WorkDir is the directory `files` source specs are resolved against.
	WorkDir() string

	// OutDir is the top-level output directory of the run.
	OutDir() string

	// Project returns the CAD project collaborators. Fields may be unset.
	Project() *kicad.Project

	// RunOutput triggers another output by name. It is a no-op when the
	// output already ran in this run, and fails with a cycle error when the
	// output is currently running further up the call stack.
	RunOutput(name string) error

	// OutputTargets returns the declared target files of another output
	// without side effects (dry resolution).
	OutputTargets(name string) ([]string, error)

	// Done reports whether the named output already ran in this run.
	Done(name string) bool

	// Warnf reports a soft warning. The run continues.
	Warnf(format string, args ...interface{})
}

// Options is the type-specific behavior of an output.
type Options interface {
	// Configure parses the `options:` node of the output's configuration.
	// A nil node means no options were given.
	Configure(node *yaml.Node) error

	// Targets lists the files the output will create under outDir. It must
	// not have side effects.
	Targets(env RunEnv, outDir string) ([]string, error)

	// Dependencies lists the existing files the output consumes.
	Dependencies(env RunEnv) ([]string, error)

	// Run produces the output's artifacts under outDir.
	Run(env RunEnv, outDir string) error
}

// Output is a named, configured unit of work that produces artifacts.
type Output struct {
	Name    string
	Comment string
	Type    string

	// Dir is the subdirectory under the run's output directory this output
	// writes into.
	Dir string

	// Priority schedules the output: LOWER runs first, ties broken by
	// registration order.
	Priority int

	Groups     []string
	Categories []string

	// RunByDefault marks the output as part of the implicit "all" selection.
	RunByDefault bool

	Options Options

	// seq is the registration order, used as the priority tie-breaker.
	seq int
}

func (o *Output) String() string {
	if o.Comment != "" {
		return fmt.Sprintf("'%s' (%s) [%s]", o.Comment, o.Name, o.Type)
	}
	return fmt.Sprintf("%s [%s]", o.Name, o.Type)
}
