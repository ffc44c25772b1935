package main

// Short messages (one-liners)
const (
	MsgRootShort = "A declarative output generator for KiCad projects"
	MsgRootLong  = `kibot reads a YAML description of the outputs a project needs (fabrication
files, documentation bundles, whole-project snapshots) and generates them in
a deterministic order, resolving files one output needs from another on
demand.`

	MsgVersionShort = "Print version information"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default: the only *.kibot.yaml in the current dir)"
	MsgFlagOutDir   = "Output directory"
	MsgFlagBoard    = "Board file, overrides discovery"
	MsgFlagSch      = "Schematic file, overrides discovery"
	MsgFlagSkipPre  = "Skip preflights, comma separated or `all`"
	MsgFlagInvert   = "Generate the outputs NOT listed as targets"
	MsgFlagCLIOrder = "Generate outputs in the order given on the command line"
	MsgFlagNoPrio   = "Don't sort outputs by priority"
	MsgFlagDontStop = "Keep going after an output fails"
	MsgFlagMakefile = "Generate a Makefile instead of the outputs"
	MsgFlagList     = "List the available outputs and exit"

	// Summary messages
	MsgRunOK        = "Done"
	MsgRunWarnings  = "Done, %d warning(s)"
	MsgRunFailed    = "Failed: %v"
	MsgMakefileDone = "Makefile written to `%s`"
	MsgNoOutputs    = "No outputs defined."
	MsgListTitle    = "Available outputs:"
)
