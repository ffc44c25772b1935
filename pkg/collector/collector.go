package collector

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/executor"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/paths"
	"github.com/flaviut/kibot/pkg/types"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func init() {
	outputs.RegisterType("copy_files", func() outputs.Options { return NewOptions() })
}

// Options implements the copy_files output: it expands declarative file
// specifications into a copy/link plan and materializes it.
type Options struct {
	Specs       []*FileSpec
	FollowLinks bool
	LinkNoCopy  bool

	logger zerolog.Logger

	// temporals are files acquired only to resolve the plan; they are
	// removed when the run finishes, successfully or not.
	temporals []string
}

type optionsYAML struct {
	Files       []*FileSpec `yaml:"files"`
	FollowLinks *bool       `yaml:"follow_links"`
	LinkNoCopy  bool        `yaml:"link_no_copy"`
}

// NewOptions creates copy_files options with their defaults.
func NewOptions() *Options {
	return &Options{
		FollowLinks: true,
		logger:      logging.GetLogger("collector"),
	}
}

// Configure parses the copy_files options node.
func (o *Options) Configure(node *yaml.Node) error {
	if node == nil {
		return errors.New(errors.ErrConfigValid, "no files provided")
	}
	var raw optionsYAML
	if err := node.Decode(&raw); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "parsing copy_files options")
	}
	if len(raw.Files) == 0 {
		return errors.New(errors.ErrConfigValid, "no files provided")
	}
	o.Specs = raw.Files
	if raw.FollowLinks != nil {
		o.FollowLinks = *raw.FollowLinks
	}
	o.LinkNoCopy = raw.LinkNoCopy
	return nil
}

// collect is the resolution pass: it turns every spec into concrete
// (source, destination) pairs. With dry set it has no side effects and never
// triggers producer outputs; this is what target and dependency listings
// use. Results are recomputed on every call.
func (o *Options) collect(env outputs.RunEnv, outDir string, dry bool) ([]types.ResolvedFile, error) {
	var files []types.ResolvedFile

	relDirs := o.modelBaseDirs(env)

	for _, spec := range o.Specs {
		var candidates []string
		var extra []types.ResolvedFile
		var err error

		switch spec.Type {
		case SourceFiles:
			candidates, err = o.globFiles(spec, env.WorkDir())
		case SourceOutFiles:
			candidates, err = o.globFiles(spec, env.OutDir())
		case SourceOutput:
			candidates, err = o.fromOutput(spec, env, dry)
		case Source3DModels:
			candidates, extra, err = o.get3DModels(spec, env, relDirs, outDir, false, dry)
		case SourceProject:
			candidates, extra, err = o.get3DModels(spec, env, relDirs, outDir, true, dry)
		default:
			err = errors.Newf(errors.ErrInternal, "unhandled source type %d", spec.Type)
		}
		if err != nil {
			return nil, err
		}

		resolved, err := o.placeCandidates(spec, env, relDirs, candidates)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)

		// Synthesized files respect the filter too: pairs are matched on
		// their source, generated entries on their destination.
		for _, f := range extra {
			probe := f.Source
			if f.Generated() {
				probe = f.Dest
			}
			if !spec.matches(probe) {
				continue
			}
			if err := paths.CheckWithinRoot(f.Dest); err != nil {
				return nil, err
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// globFiles expands a files/out_files spec pattern under root. Recursive
// `**` patterns are supported.
func (o *Options) globFiles(spec *FileSpec, root string) ([]string, error) {
	pattern := spec.Source
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(root, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid pattern `%s`", spec.Source)
	}
	o.logger.Debug().Str("pattern", spec.Source).Strs("files", matches).Msg("Pattern expanded")
	return matches, nil
}

// fromOutput lists the files generated by another output, running it on
// demand. A file still missing after the producer ran is an internal build
// error, not a configuration problem.
func (o *Options) fromOutput(spec *FileSpec, env outputs.RunEnv, dry bool) ([]string, error) {
	producer := spec.Source
	targets, err := env.OutputTargets(producer)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().Str("output", producer).Strs("files", targets).Msg("Producer target list")

	if !dry {
		for _, file := range targets {
			if fileExists(env.FS(), file) {
				continue
			}
			if !env.Done(producer) {
				if err := env.RunOutput(producer); err != nil {
					return nil, err
				}
			}
			if !fileExists(env.FS(), file) {
				return nil, errors.Newf(errors.ErrMissingTarget,
					"unable to generate `%s` from output `%s`", filepath.Base(file), producer).
					WithDetail("file", file).
					WithDetail("producer", producer)
			}
		}
	}
	return targets, nil
}

// placeCandidates filters candidates and computes their destinations.
func (o *Options) placeCandidates(spec *FileSpec, env outputs.RunEnv, relDirs []string, candidates []string) ([]types.ResolvedFile, error) {
	root := env.WorkDir()
	if spec.Type == SourceOutFiles || spec.Type == SourceOutput {
		root = env.OutDir()
	}
	mode3D := spec.Type == Source3DModels || spec.Type == SourceProject

	var files []types.ResolvedFile
	for _, fname := range candidates {
		if !spec.matches(fname) {
			continue
		}
		src, err := o.realSource(env.FS(), fname)
		if err != nil {
			return nil, err
		}

		var dest string
		switch {
		case spec.destDir != "" && !spec.appendMode:
			// All files go to the same flat destination directory
			dest = paths.Flatten(spec.destDir, fname)
		case mode3D && filepath.IsAbs(fname):
			rel, matched := paths.StripBase(fname, relDirs)
			if !matched {
				rel = filepath.Base(fname)
			}
			dest = rel
			if spec.appendMode {
				dest = filepath.Join(spec.outputDir, dest)
			}
		default:
			dest = paths.RelDest(fname, root)
		}

		if err := paths.CheckWithinRoot(dest); err != nil {
			return nil, err
		}
		files = append(files, types.ResolvedFile{Source: src, Dest: dest})
	}
	return files, nil
}

// realSource resolves the candidate to the path that will be copied:
// the symlink target when following links, the absolute path otherwise.
func (o *Options) realSource(fsys types.FS, fname string) (string, error) {
	abs, err := filepath.Abs(fname)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "resolving `%s`", fname)
	}
	if o.FollowLinks {
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			return real, nil
		}
	}
	return abs, nil
}

// modelBaseDirs is the ordered list of base directories 3D model paths are
// rewritten against: the configured model dirs first, the board's own
// directory last.
func (o *Options) modelBaseDirs(env outputs.RunEnv) []string {
	prj := env.Project()
	if prj == nil {
		return nil
	}
	dirs := append([]string{}, prj.ModelDirs...)
	if prj.BoardFile != "" {
		dirs = append(dirs, filepath.Dir(prj.BoardFile))
	}
	return dirs
}

// Targets lists the files this output will create under outDir, sorted.
// Pure dry resolution: no producer is triggered, nothing is written.
func (o *Options) Targets(env outputs.RunEnv, outDir string) ([]string, error) {
	files, err := o.collect(env, outDir, true)
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(files))
	for _, f := range files {
		targets = append(targets, filepath.Join(outDir, f.Dest))
	}
	sort.Strings(targets)
	return targets, nil
}

// Dependencies lists the existing files the plan consumes, sorted.
func (o *Options) Dependencies(env outputs.RunEnv) ([]string, error) {
	files, err := o.collect(env, env.OutDir(), true)
	if err != nil {
		return nil, err
	}
	var deps []string
	for _, f := range files {
		if !f.Generated() {
			deps = append(deps, f.Source)
		}
	}
	sort.Strings(deps)
	return deps, nil
}

// Run resolves the plan and materializes it under outDir. Temporary assets
// acquired during resolution are removed on both success and failure.
func (o *Options) Run(env outputs.RunEnv, outDir string) error {
	defer o.releaseTemporals(env.FS())

	o.logger.Debug().Msg("Collecting files")
	files, err := o.collect(env, outDir, false)
	if err != nil {
		return err
	}

	o.logger.Debug().Msg("Copying files")
	engine := executor.New(executor.Config{
		FS:     env.FS(),
		Link:   o.LinkNoCopy,
		Warner: env,
	})
	return engine.Apply(outDir, files)
}

// addTemporal registers a file acquired only for resolution; it is removed
// when the run finishes.
func (o *Options) addTemporal(path string) {
	o.temporals = append(o.temporals, path)
}

func (o *Options) releaseTemporals(fsys types.FS) {
	for _, path := range o.temporals {
		if err := fsys.Remove(path); err != nil {
			o.logger.Debug().Err(err).Str("path", path).Msg("Could not remove temporary")
		}
	}
	o.temporals = nil
}

func fileExists(fsys types.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}
