package kicad

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnList []string

func (w *warnList) Warnf(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestDiscover(t *testing.T) {
	fsys := filesystem.NewOS()

	t.Run("complete project", func(t *testing.T) {
		dir := t.TempDir()
		board := touch(t, dir, "demo.kicad_pcb")
		sch := touch(t, dir, "demo.kicad_sch")
		pro := touch(t, dir, "demo.kicad_pro")

		var warns warnList
		prj, err := Discover(fsys, dir, "", "", &warns)
		require.NoError(t, err)
		assert.Equal(t, board, prj.BoardFile)
		assert.Equal(t, sch, prj.SchFile)
		assert.Equal(t, pro, prj.ProFile)
		assert.Empty(t, warns)
	})

	t.Run("empty dir", func(t *testing.T) {
		prj, err := Discover(fsys, t.TempDir(), "", "", nil)
		require.NoError(t, err)
		assert.Empty(t, prj.BoardFile)
		assert.Empty(t, prj.SchFile)
		assert.Empty(t, prj.ProFile)
	})

	t.Run("ambiguous board warns", func(t *testing.T) {
		dir := t.TempDir()
		first := touch(t, dir, "a.kicad_pcb")
		touch(t, dir, "b.kicad_pcb")

		var warns warnList
		prj, err := Discover(fsys, dir, "", "", &warns)
		require.NoError(t, err)
		assert.Equal(t, first, prj.BoardFile)
		require.Len(t, warns, 1)
		assert.Contains(t, warns[0], "More than one")
	})

	t.Run("schematic picks its board", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.kicad_pcb")
		board := touch(t, dir, "demo.kicad_pcb")
		sch := touch(t, dir, "demo.kicad_sch")

		var warns warnList
		prj, err := Discover(fsys, dir, "", "", &warns)
		require.NoError(t, err)
		assert.Equal(t, sch, prj.SchFile)
		assert.Equal(t, board, prj.BoardFile)
		assert.Empty(t, warns)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Discover(fsys, t.TempDir(), "nope.kicad_pcb", "", nil)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	})
}
