package orchestrator

import (
	"io"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/makefile"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/preflight"
	"github.com/flaviut/kibot/pkg/types"
	"github.com/rs/zerolog"
)

// State tracks the progress of one run.
type State int

const (
	Idle State = iota
	PreflightsRun
	OutputsSelected
	Executing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreflightsRun:
		return "preflights-run"
	case OutputsSelected:
		return "outputs-selected"
	case Executing:
		return "executing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Options configures one run.
type Options struct {
	Registry   *outputs.Registry
	Preflights []preflight.Preflight
	FS         types.FS
	WorkDir    string
	OutDir     string
	Project    *kicad.Project

	// Target selection
	Targets    []string
	Invert     bool
	CLIOrder   bool
	NoPriority bool

	// SkipPre is the comma-separated preflight skip list; "all" skips all.
	SkipPre string

	// DontStop continues with the next preflight/output after a failure.
	DontStop bool
}

// Orchestrator drives one run: preflights, target selection, execution.
type Orchestrator struct {
	opts   Options
	ctx    *Context
	state  State
	logger zerolog.Logger
}

// New creates an orchestrator with a fresh run context.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:   opts,
		ctx:    NewContext(opts.FS, opts.WorkDir, opts.OutDir, opts.Project, opts.Registry),
		state:  Idle,
		logger: logging.GetLogger("orchestrator"),
	}
}

// State returns the current run state.
func (o *Orchestrator) State() State { return o.state }

// Context exposes the run context, mainly for inspection in tests.
func (o *Orchestrator) Context() *Context { return o.ctx }

// Warnings returns the soft warnings counted during the run.
func (o *Orchestrator) Warnings() int { return o.ctx.Warnings() }

// Run executes the full sequence: preflights, selection, outputs.
func (o *Orchestrator) Run() error {
	if err := o.runPreflights(); err != nil {
		o.state = Failed
		return err
	}
	o.state = PreflightsRun

	selected, err := o.selectTargets()
	if err != nil {
		o.state = Failed
		return err
	}
	o.state = OutputsSelected

	o.state = Executing
	for _, out := range selected {
		if o.ctx.Done(out.Name) {
			continue
		}
		if err := o.ctx.RunOutput(out.Name); err != nil {
			if o.opts.DontStop {
				o.logger.Error().Err(err).Str("output", out.Name).Msg("Output failed, continuing")
				continue
			}
			o.state = Failed
			return err
		}
	}
	o.state = Done
	return nil
}

func (o *Orchestrator) runPreflights() error {
	prefs, err := preflight.ApplySkips(o.opts.Preflights, o.opts.SkipPre, o.ctx)
	if err != nil {
		return err
	}
	for _, pre := range prefs {
		o.logger.Debug().Str("preflight", pre.Name()).Msg("Running preflight")
		if err := pre.Run(o.ctx); err != nil {
			if o.opts.DontStop {
				o.logger.Error().Err(err).Str("preflight", pre.Name()).Msg("Preflight failed, continuing")
				continue
			}
			return errors.Wrapf(err, errors.ErrPreflight, "in preflight `%s`", pre.Name())
		}
	}
	return nil
}

func (o *Orchestrator) selectTargets() ([]*outputs.Output, error) {
	selected, err := o.opts.Registry.Select(o.opts.Targets, o.opts.Invert, o.opts.CLIOrder, o.opts.NoPriority)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(selected))
	for _, out := range selected {
		names = append(names, out.Name)
	}
	o.logger.Debug().Strs("outputs", names).Msg("Selected outputs")
	return selected, nil
}

// Makefile serializes the selected sequence into a build script instead of
// executing it. This is a pure rendering of the resolved plan: no preflight
// runs, no output runs, no filesystem writes besides w.
func (o *Orchestrator) Makefile(w io.Writer, cfgFile string, debugLevel int) error {
	selected, err := o.selectTargets()
	if err != nil {
		o.state = Failed
		return err
	}
	o.state = OutputsSelected

	var targets []makefile.Target
	for _, pre := range o.opts.Preflights {
		lister, ok := pre.(preflight.TargetLister)
		if !ok {
			continue
		}
		files := lister.Targets(o.ctx)
		if len(files) == 0 {
			continue
		}
		targets = append(targets, makefile.Target{
			Name:        makefile.Name2Make(pre.Name()),
			OriName:     pre.Name(),
			Files:       adaptAll(files, o.ctx),
			Deps:        adaptAll(lister.Dependencies(o.ctx), o.ctx),
			IsPreflight: true,
			IsSch:       true,
			IsPCB:       true,
		})
	}
	for _, out := range selected {
		files, err := out.Options.Targets(o.ctx, o.ctx.OutputDir(out))
		if err != nil {
			o.state = Failed
			return err
		}
		if len(files) == 0 {
			continue
		}
		deps, err := out.Options.Dependencies(o.ctx)
		if err != nil {
			o.state = Failed
			return err
		}
		isSch, isPCB := categoryKinds(out.Categories)
		targets = append(targets, makefile.Target{
			Name:      makefile.Name2Make(out.Name),
			OriName:   out.Name,
			Comment:   out.Comment,
			Files:     adaptAll(files, o.ctx),
			Deps:      adaptAll(deps, o.ctx),
			NoDefault: !out.RunByDefault,
			IsSch:     isSch,
			IsPCB:     isPCB,
		})
	}

	prj := o.opts.Project
	params := makefile.Params{
		ConfigFile: cfgFile,
		OutDir:     o.opts.OutDir,
		DebugLevel: debugLevel,
		Targets:    targets,
	}
	if prj != nil {
		params.SchFile = prj.SchFile
		params.PCBFile = prj.BoardFile
	}
	if err := makefile.Generate(w, params); err != nil {
		o.state = Failed
		return err
	}
	o.state = Done
	return nil
}

func adaptAll(files []string, warner types.Warner) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, makefile.AdaptFileName(f, warner))
	}
	return out
}

// categoryKinds derives whether an output relates to the schematic or the
// board from its category tags.
func categoryKinds(categories []string) (isSch, isPCB bool) {
	for _, cat := range categories {
		switch {
		case strings.HasPrefix(cat, "Schematic"):
			isSch = true
		case strings.HasPrefix(cat, "PCB"):
			isPCB = true
		}
	}
	return isSch, isPCB
}
