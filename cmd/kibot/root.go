package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/flaviut/kibot/internal/version"
	"github.com/flaviut/kibot/pkg/config"
	"github.com/flaviut/kibot/pkg/filesystem"
	"github.com/flaviut/kibot/pkg/kicad"
	"github.com/flaviut/kibot/pkg/logging"
	"github.com/flaviut/kibot/pkg/orchestrator"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runFlags struct {
	verbosity  int
	configFile string
	outDir     string
	boardFile  string
	schFile    string
	skipPre    string
	invertSel  bool
	cliOrder   bool
	noPriority bool
	dontStop   bool
	makefile   string
	list       bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:     "kibot [targets...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			plainWhenPiped()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, &flags)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.Flags().StringVarP(&flags.configFile, "plot-config", "c", "", MsgFlagConfig)
	rootCmd.Flags().StringVarP(&flags.outDir, "out-dir", "d", "", MsgFlagOutDir)
	rootCmd.Flags().StringVarP(&flags.boardFile, "board-file", "b", "", MsgFlagBoard)
	rootCmd.Flags().StringVarP(&flags.schFile, "schematic", "e", "", MsgFlagSch)
	rootCmd.Flags().StringVarP(&flags.skipPre, "skip-pre", "s", "", MsgFlagSkipPre)
	rootCmd.Flags().BoolVarP(&flags.invertSel, "invert-sel", "i", false, MsgFlagInvert)
	rootCmd.Flags().BoolVar(&flags.cliOrder, "cli-order", false, MsgFlagCLIOrder)
	rootCmd.Flags().BoolVar(&flags.noPriority, "no-priority", false, MsgFlagNoPrio)
	rootCmd.Flags().BoolVar(&flags.dontStop, "dont-stop", false, MsgFlagDontStop)
	rootCmd.Flags().StringVarP(&flags.makefile, "makefile", "m", "", MsgFlagMakefile)
	rootCmd.Flags().BoolVarP(&flags.list, "list", "l", false, MsgFlagList)

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runGenerate(cmd *cobra.Command, args []string, flags *runFlags) error {
	logger := logging.GetLogger("cmd")
	fsys := filesystem.NewOS()

	defaults, err := config.LoadDefaults(fsys)
	if err != nil {
		return err
	}
	if flags.outDir == "" {
		flags.outDir = defaults.OutDir
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfgPath := flags.configFile
	if cfgPath == "" {
		cfgPath, err = config.Find(workDir)
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(fsys, cfgPath)
	if err != nil {
		return err
	}

	if flags.list {
		listOutputs(cmd, cfg.Registry)
		return nil
	}

	prj, err := kicad.Discover(fsys, workDir, flags.boardFile, flags.schFile, logWarner{})
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.Options{
		Registry:   cfg.Registry,
		Preflights: cfg.Preflights,
		FS:         fsys,
		WorkDir:    workDir,
		OutDir:     flags.outDir,
		Project:    prj,
		Targets:    args,
		Invert:     flags.invertSel,
		CLIOrder:   flags.cliOrder,
		NoPriority: flags.noPriority,
		SkipPre:    flags.skipPre,
		DontStop:   flags.dontStop || defaults.DontStop,
	})

	if flags.makefile != "" {
		return writeMakefile(cmd, orch, flags.makefile, cfgPath, flags.verbosity)
	}

	if err := orch.Run(); err != nil {
		logger.Error().Err(err).Msg("Run failed")
		cmd.PrintErrln(errorStyle.Render(fmt.Sprintf(MsgRunFailed, err)))
		return err
	}

	if warns := orch.Warnings(); warns > 0 {
		cmd.Println(warningStyle.Render(fmt.Sprintf(MsgRunWarnings, warns)))
	} else {
		cmd.Println(successStyle.Render(MsgRunOK))
	}
	return nil
}

func writeMakefile(cmd *cobra.Command, orch *orchestrator.Orchestrator, path, cfgPath string, debugLevel int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := orch.Makefile(f, cfgPath, debugLevel); err != nil {
		return err
	}
	cmd.Println(successStyle.Render(fmt.Sprintf(MsgMakefileDone, path)))
	return nil
}

func listOutputs(cmd *cobra.Command, reg *outputs.Registry) {
	all := reg.List()
	if len(all) == 0 {
		cmd.Println(MsgNoOutputs)
		return
	}
	cmd.Println(titleStyle.Render(MsgListTitle))
	for _, out := range all {
		line := "  " + nameStyle.Render(out.Name) + " " + mutedStyle.Render("["+out.Type+"]")
		if out.Comment != "" {
			line += " " + out.Comment
		}
		if len(out.Groups) > 0 {
			line += " " + mutedStyle.Render("("+strings.Join(out.Groups, ", ")+")")
		}
		if !out.RunByDefault {
			line += " " + mutedStyle.Render("(no default)")
		}
		cmd.Println(line)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("kibot version %s\n", version.Version)
			cmd.Printf("  commit: %s\n", version.Commit)
			cmd.Printf("  built:  %s\n", version.Date)
		},
	}
}

// logWarner routes discovery warnings through the global logger; at that
// point no run context exists yet.
type logWarner struct{}

func (logWarner) Warnf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}
