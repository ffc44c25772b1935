package orchestrator

import (
	"path/filepath"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/types"
	"github.com/rs/zerolog"
)

// Context is the per-run state threaded through every collection call. Done
// flags live here, not in the registry, so independent runs never share
// state.
type Context struct {
	fs      types.FS
	workDir string
	outDir  string
	project *kicad.Project
	reg     *outputs.Registry
	logger  zerolog.Logger

	done    map[string]bool
	running []string
	warns   int
}

// NewContext creates the state for one run.
func NewContext(fs types.FS, workDir, outDir string, project *kicad.Project, reg *outputs.Registry) *Context {
	return &Context{
		fs:      fs,
		workDir: workDir,
		outDir:  outDir,
		project: project,
		reg:     reg,
		logger:  logging.GetLogger("orchestrator"),
		done:    make(map[string]bool),
	}
}

func (c *Context) FS() types.FS { return c.fs }
func (c *Context) WorkDir() string { return c.workDir }
func (c *Context) OutDir() string { return c.outDir }
func (c *Context) Project() *kicad.Project { return c.project }

// Done reports whether the named output already ran in this run.
func (c *Context) Done(name string) bool {
	return c.done[name]
}

// Warnings returns the number of soft warnings reported so far.
func (c *Context) Warnings() int {
	return c.warns
}

// Warnf logs a soft warning and counts it. The run continues.
func (c *Context) Warnf(format string, args ...interface{}) {
	c.warns++
	c.logger.Warn().Msgf(format, args...)
}

// OutputDir returns the directory the named output writes into.
func (c *Context) OutputDir(out *outputs.Output) string {
	return filepath.Join(c.outDir, out.Dir)
}

// OutputTargets returns the declared target files of another output without
// side effects.
func (c *Context) OutputTargets(name string) ([]string, error) {
	out, ok := c.reg.Get(name)
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownOutput, "unknown output `%s`", name)
	}
	return out.Options.Targets(c, c.OutputDir(out))
}

// RunOutput executes the named output at most once per run. Re-entrant
// requests for an output that is already running further up the call stack
// are a dependency cycle and fail fast instead of recursing.
func (c *Context) RunOutput(name string) error {
	out, ok := c.reg.Get(name)
	if !ok {
		return errors.Newf(errors.ErrUnknownOutput, "unknown output `%s`", name)
	}
	if c.done[name] {
		return nil
	}
	for _, active := range c.running {
		if active == name {
			chain := append(append([]string{}, c.running...), name)
			return errors.Newf(errors.ErrOutputCycle,
				"dependency cycle between outputs: %s", strings.Join(chain, " -> "))
		}
	}

	c.running = append(c.running, name)
	defer func() { c.running = c.running[:len(c.running)-1] }()

	dir := c.OutputDir(out)
	if err := c.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating output directory `%s`", dir)
	}

	c.logger.Info().Msgf("- %s", out)
	if err := out.Options.Run(c, dir); err != nil {
		return errors.Wrapf(err, errors.ErrOutputRun, "in output `%s` (%s)", out.Name, out.Type)
	}
	c.done[name] = true
	return nil
}
