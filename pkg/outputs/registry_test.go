package outputs

import (
	"testing"

	"github.com/flaviut/kibot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	outs := []*Output{
		{Name: "gerbers", Type: "gerber", Priority: 50, Groups: []string{"fab"}, RunByDefault: true},
		{Name: "drill", Type: "excellon", Priority: 30, Groups: []string{"fab"}, RunByDefault: true},
		{Name: "bom", Type: "bom", Priority: 50, RunByDefault: true},
		{Name: "archive", Type: "copy_files", Priority: 80, RunByDefault: false},
	}
	for _, out := range outs {
		require.NoError(t, reg.Register(out))
	}
	return reg
}

func names(outs []*Output) []string {
	var n []string
	for _, out := range outs {
		n = append(n, out.Name)
	}
	return n
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Output{Name: "a", Type: "bom"}))

	t.Run("duplicate name", func(t *testing.T) {
		err := reg.Register(&Output{Name: "a", Type: "gerber"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	})

	t.Run("empty name", func(t *testing.T) {
		err := reg.Register(&Output{Type: "gerber"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestGet(t *testing.T) {
	reg := newTestRegistry(t)

	out, ok := reg.Get("bom")
	require.True(t, ok)
	assert.Equal(t, "bom", out.Name)

	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestGroups(t *testing.T) {
	reg := newTestRegistry(t)

	groups := reg.Groups()
	assert.Equal(t, map[string][]string{"fab": {"gerbers", "drill"}}, groups)
}

func TestSolveGroups(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("expands groups preserving order", func(t *testing.T) {
		solved, err := reg.SolveGroups([]string{"bom", "fab"})

		require.NoError(t, err)
		assert.Equal(t, []string{"bom", "gerbers", "drill"}, solved)
	})

	t.Run("drops duplicates", func(t *testing.T) {
		solved, err := reg.SolveGroups([]string{"gerbers", "fab"})

		require.NoError(t, err)
		assert.Equal(t, []string{"gerbers", "drill"}, solved)
	})

	t.Run("reports all unknown names together", func(t *testing.T) {
		_, err := reg.SolveGroups([]string{"gerbers", "nope1", "nope2"})

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTarget))
		assert.Contains(t, err.Error(), "nope1")
		assert.Contains(t, err.Error(), "nope2")
	})
}

func TestSelect(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("empty targets selects run-by-default by priority", func(t *testing.T) {
		outs, err := reg.Select(nil, false, false, false)

		require.NoError(t, err)
		// drill (30) first, then gerbers/bom (50, registration order),
		// archive excluded (not run by default)
		assert.Equal(t, []string{"drill", "gerbers", "bom"}, names(outs))
	})

	t.Run("empty targets inverted selects nothing", func(t *testing.T) {
		outs, err := reg.Select(nil, true, false, false)

		require.NoError(t, err)
		assert.Empty(t, outs)
	})

	t.Run("explicit targets sorted by priority", func(t *testing.T) {
		outs, err := reg.Select([]string{"gerbers", "drill"}, false, false, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"drill", "gerbers"}, names(outs))
	})

	t.Run("cli order preserved", func(t *testing.T) {
		outs, err := reg.Select([]string{"gerbers", "drill"}, false, true, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"gerbers", "drill"}, names(outs))
	})

	t.Run("no priority keeps registration order", func(t *testing.T) {
		outs, err := reg.Select([]string{"drill", "gerbers"}, false, false, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"gerbers", "drill"}, names(outs))
	})

	t.Run("invert selects complement of run-by-default", func(t *testing.T) {
		outs, err := reg.Select([]string{"gerbers"}, true, false, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"drill", "bom"}, names(outs))
	})

	t.Run("invert with cli order is rejected", func(t *testing.T) {
		_, err := reg.Select([]string{"gerbers"}, true, true, false)

		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("unknown target fails", func(t *testing.T) {
		_, err := reg.Select([]string{"missing"}, false, false, false)

		assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTarget))
	})

	t.Run("group expansion in targets", func(t *testing.T) {
		outs, err := reg.Select([]string{"fab"}, false, false, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"drill", "gerbers"}, names(outs))
	})
}

func TestSelectTieBreakByRegistration(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"one", "two", "three"} {
		require.NoError(t, reg.Register(&Output{Name: n, Type: "bom", Priority: 10, RunByDefault: true}))
	}

	outs, err := reg.Select(nil, false, false, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, names(outs))
}

func TestRegisterType(t *testing.T) {
	RegisterType("test_type_registry", func() Options { return nil })

	opts, err := NewOptions("test_type_registry")
	require.NoError(t, err)
	assert.Nil(t, opts)

	_, err = NewOptions("not_registered")
	assert.Error(t, err)

	assert.Contains(t, KnownTypes(), "test_type_registry")
}
