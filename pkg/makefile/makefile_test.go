package makefile

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnRecorder struct {
	msgs []string
}

func (w *warnRecorder) Warnf(format string, args ...interface{}) {
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

func TestName2Make(t *testing.T) {
	assert.Equal(t, "gerbers", Name2Make("gerbers"))
	assert.Equal(t, "position_top", Name2Make("position-top"))
	assert.Equal(t, "a_b_c", Name2Make("a b.c"))
}

func TestAdaptFileName(t *testing.T) {
	rec := &warnRecorder{}

	t.Run("system paths stay absolute", func(t *testing.T) {
		assert.Equal(t, "/usr/share/x.dat", AdaptFileName("/usr/share/x.dat", rec))
	})

	t.Run("spaces escaped", func(t *testing.T) {
		got := AdaptFileName("/usr/share/a file.dat", rec)
		assert.Contains(t, got, `\ `)
	})

	t.Run("dollar warns", func(t *testing.T) {
		rec := &warnRecorder{}
		AdaptFileName("/usr/a$b.dat", rec)
		require.Len(t, rec.msgs, 1)
		assert.Contains(t, rec.msgs[0], "Wrong character")
	})
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, Params{
		ConfigFile: "demo.kibot.yaml",
		SchFile:    "demo.kicad_sch",
		PCBFile:    "demo.kicad_pcb",
		OutDir:     "out",
		Targets: []Target{
			{
				Name: "erc_check", OriName: "erc_check", IsPreflight: true, IsSch: true,
				Files: []string{"out/erc.txt"},
			},
			{
				Name: "gerbers", OriName: "gerbers", Comment: "Fabrication gerbers", IsPCB: true,
				Files: []string{"out/f_cu.gbr", "out/b_cu.gbr"},
				Deps:  []string{"demo.kicad_pcb"},
			},
			{
				Name: "archive", OriName: "archive", NoDefault: true,
				Files: []string{"out/archive/a.csv"},
			},
		},
	})
	require.NoError(t, err)
	got := buf.String()

	assert.True(t, strings.HasPrefix(got, "#!/usr/bin/make\n"))
	assert.Contains(t, got, "KIBOT_CMD=$(KIBOT) $(DEBUG) -c $(CONFIG) -e $(SCH) -b $(PCB) -d $(DEST)\n")

	// archive is not run by default
	assert.Contains(t, got, "all: erc_check gerbers\n")

	// Grouped targets
	assert.Contains(t, got, "pre_sch: erc_check\n")
	assert.Contains(t, got, "out_pcb: gerbers\n")
	assert.Contains(t, got, "all_pcb: out_pcb\n")

	// Target file lists
	assert.Contains(t, got, "gerbers: out/f_cu.gbr out/b_cu.gbr\n")

	// Rules: config is always a dependency; output rules skip preflights
	assert.Contains(t, got, "out/f_cu.gbr out/b_cu.gbr: demo.kicad_pcb demo.kibot.yaml\n")
	assert.Contains(t, got, `-s erc_check "gerbers"`)

	// Comments carried over
	assert.Contains(t, got, "# Fabrication gerbers\n")

	// Everything is phony
	assert.Contains(t, got, ".PHONY: all pre_sch all_sch out_pcb all_pcb erc_check gerbers archive\n")
}

func TestGenerateDebugMode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, Params{
		ConfigFile: "c.yaml",
		OutDir:     "out",
		DebugLevel: 2,
		Targets: []Target{
			{Name: "bom", OriName: "bom", Files: []string{"out/bom.csv"}},
		},
	}))
	got := buf.String()

	assert.Contains(t, got, "DEBUG?=-vv\n")
	// No log redirection in debug mode
	assert.NotContains(t, got, "LOGFILE)\n\n.PHONY")
	assert.Contains(t, got, "\t$(KIBOT_CMD) -s all \"bom\"\n")
}
