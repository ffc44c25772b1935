package makefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flaviut/kibot/pkg/types"
)

// Target is one serialized unit of the build script: a preflight or an
// output, with the files it creates and the files it consumes.
type Target struct {
	// Name is the make-mangled rule name
	Name string
	// OriName is the original output name as it appears in the config
	OriName string
	Comment string
	Files   []string
	Deps    []string

	IsPreflight bool
	NoDefault   bool
	IsSch       bool
	IsPCB       bool
}

// Params collects everything the serialization needs. No side effects are
// performed: this is a pure rendering of the already-resolved plan.
type Params struct {
	ConfigFile string
	SchFile    string
	PCBFile    string
	OutDir     string
	DebugLevel int
	Targets    []Target
}

var invalidMakeChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Name2Make converts an output name into a valid make target name.
func Name2Make(name string) string {
	return invalidMakeChars.ReplaceAllString(name, "_")
}

// AdaptFileName makes a file name usable inside a makefile: relative when
// that's meaningful, spaces escaped. Dollar signs can't be escaped portably,
// so they only produce a warning.
func AdaptFileName(name string, warner types.Warner) string {
	if !strings.HasPrefix(name, "/usr") {
		if rel, err := filepath.Rel(mustGetwd(), name); err == nil {
			name = rel
		}
	}
	name = strings.ReplaceAll(name, " ", `\ `)
	if strings.Contains(name, "$") {
		warner.Warnf("Wrong character in file name `%s`", name)
	}
	return name
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Generate writes the build script: one rule per target in resolved order,
// grouped pre/out/all rules for schematic and board related targets, and a
// .PHONY list.
func Generate(w io.Writer, p Params) error {
	fmt.Fprintf(w, "#!/usr/bin/make\n")
	fmt.Fprintf(w, "# Automatically generated by kibot from `%s`\n", p.ConfigFile)
	fmt.Fprintf(w, "KIBOT?=kibot\n")
	dbg := ""
	if p.DebugLevel > 0 {
		dbg = "-" + strings.Repeat("v", p.DebugLevel)
	}
	fmt.Fprintf(w, "DEBUG?=%s\n", dbg)
	fmt.Fprintf(w, "CONFIG=%s\n", p.ConfigFile)
	if p.SchFile != "" {
		fmt.Fprintf(w, "SCH=%s\n", p.SchFile)
	}
	if p.PCBFile != "" {
		fmt.Fprintf(w, "PCB=%s\n", p.PCBFile)
	}
	fmt.Fprintf(w, "DEST=%s\n", p.OutDir)
	fmt.Fprintf(w, "KIBOT_CMD=$(KIBOT) $(DEBUG) -c $(CONFIG) -e $(SCH) -b $(PCB) -d $(DEST)\n")
	fmt.Fprintf(w, "LOGFILE?=kibot_error.log\n\n")

	// Default target
	fmt.Fprintf(w, "#\n# Default target\n#\n")
	var defaults []string
	for _, t := range p.Targets {
		if !t.NoDefault {
			defaults = append(defaults, t.Name)
		}
	}
	fmt.Fprintf(w, "all: %s\n\n", strings.Join(defaults, " "))
	phony := []string{"all"}

	// SCH/PCB grouped targets
	fmt.Fprintf(w, "#\n# SCH/PCB targets\n#\n")
	phony = append(phony, writeGroupTargets(w, p.Targets, "sch")...)
	phony = append(phony, writeGroupTargets(w, p.Targets, "pcb")...)

	// Per-target file lists
	fmt.Fprintf(w, "#\n# Available targets (outputs)\n#\n")
	for _, t := range p.Targets {
		fmt.Fprintf(w, "%s: %s\n\n", t.Name, strings.Join(t.Files, " "))
		phony = append(phony, t.Name)
	}

	// Rules and dependencies
	fmt.Fprintf(w, "#\n# Rules and dependencies\n#\n")
	kibotCmd := "\t@$(KIBOT_CMD)"
	logAction := " 2>> $(LOGFILE)"
	if p.DebugLevel > 0 {
		kibotCmd = "\t$(KIBOT_CMD)"
		logAction = ""
	}
	var preNames []string
	for _, t := range p.Targets {
		if t.IsPreflight {
			preNames = append(preNames, t.OriName)
		}
	}
	skipAll := strings.Join(preNames, ",")
	if skipAll == "" {
		skipAll = "all"
	}
	for _, t := range p.Targets {
		if t.Comment != "" {
			fmt.Fprintf(w, "# %s\n", t.Comment)
		}
		deps := append(append([]string{}, t.Deps...), p.ConfigFile)
		fmt.Fprintf(w, "%s: %s\n", strings.Join(t.Files, " "), strings.Join(deps, " "))
		if t.IsPreflight {
			var skip []string
			for _, n := range preNames {
				if n != t.OriName {
					skip = append(skip, n)
				}
			}
			fmt.Fprintf(w, "%s -s %s -i%s\n\n", kibotCmd, strings.Join(skip, ","), logAction)
		} else {
			fmt.Fprintf(w, "%s -s %s \"%s\"%s\n\n", kibotCmd, skipAll, t.OriName, logAction)
		}
	}

	fmt.Fprintf(w, ".PHONY: %s\n", strings.Join(phony, " "))
	return nil
}

// writeGroupTargets emits the pre_<kind>, out_<kind> and all_<kind> rules
// and returns their names for the .PHONY list.
func writeGroupTargets(w io.Writer, targets []Target, kind string) []string {
	isKind := func(t Target) bool {
		if kind == "sch" {
			return t.IsSch
		}
		return t.IsPCB
	}

	var pre, out []string
	for _, t := range targets {
		if !isKind(t) {
			continue
		}
		if t.IsPreflight {
			pre = append(pre, t.Name)
		} else {
			out = append(out, t.Name)
		}
	}

	var extra []string
	if len(pre) > 0 {
		fmt.Fprintf(w, "pre_%s: %s\n\n", kind, strings.Join(pre, " "))
		extra = append(extra, "pre_"+kind)
	}
	if len(out) > 0 {
		fmt.Fprintf(w, "out_%s: %s\n\n", kind, strings.Join(out, " "))
		extra = append(extra, "out_"+kind)
	}
	if len(extra) > 0 {
		fmt.Fprintf(w, "all_%s: %s\n\n", kind, strings.Join(extra, " "))
		extra = append(extra, "all_"+kind)
	}
	return extra
}
