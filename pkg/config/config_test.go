package config

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/flaviut/kibot/pkg/collector"
	"github.com/flaviut/kibot/pkg/errors"
	"github.com/flaviut/kibot/pkg/filesystem"
	"github.com/flaviut/kibot/pkg/outputs"
	"github.com/flaviut/kibot/pkg/preflight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type nopPreflight struct{ name string }

func (n *nopPreflight) Name() string { return n.name }
func (n *nopPreflight) Run(env outputs.RunEnv) error { return nil }

func init() {
	preflight.RegisterType("check_fields", func(node *yaml.Node) (preflight.Preflight, error) {
		return &nopPreflight{name: "check_fields"}, nil
	})
}

const validConfig = `
kibot:
  version: 1

preflight:
  check_fields: true

outputs:
  - name: docs
    comment: Documentation bundle
    type: copy_files
    dir: release
    priority: 30
    groups: [fab]
    categories: [PCB/docs]
    options:
      files:
        - source: "*.pdf"
          dest: docs

  - name: extras
    type: copy_files
    run_by_default: false
    options:
      files:
        - source: "*.txt"

groups:
  - name: everything
    outputs: [docs, extras]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	require.Equal(t, 2, len(cfg.Registry.List()))

	docs, ok := cfg.Registry.Get("docs")
	require.True(t, ok)
	assert.Equal(t, "Documentation bundle", docs.Comment)
	assert.Equal(t, "copy_files", docs.Type)
	assert.Equal(t, "release", docs.Dir)
	assert.Equal(t, 30, docs.Priority)
	assert.Equal(t, []string{"fab", "everything"}, docs.Groups)
	assert.Equal(t, []string{"PCB/docs"}, docs.Categories)
	assert.True(t, docs.RunByDefault)

	extras, ok := cfg.Registry.Get("extras")
	require.True(t, ok)
	assert.Equal(t, defaultPriority, extras.Priority)
	assert.False(t, extras.RunByDefault)
	assert.Equal(t, []string{"everything"}, extras.Groups)

	require.Len(t, cfg.Preflights, 1)
	assert.Equal(t, "check_fields", cfg.Preflights[0].Name())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "not yaml",
			text:     "\t:bad",
			wantCode: errors.ErrConfigParse,
		},
		{
			name:     "missing header",
			text:     "outputs: []",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "kibot",
		},
		{
			name:     "wrong version",
			text:     "kibot:\n  version: 2",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "version",
		},
		{
			name:     "output without name",
			text:     "kibot: {version: 1}\noutputs:\n  - type: copy_files",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "without a name",
		},
		{
			name:     "output without type",
			text:     "kibot: {version: 1}\noutputs:\n  - name: x",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "without a type",
		},
		{
			name:     "unknown type",
			text:     "kibot: {version: 1}\noutputs:\n  - {name: x, type: nope}",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "unknown output type",
		},
		{
			name:     "bad options",
			text:     "kibot: {version: 1}\noutputs:\n  - {name: x, type: copy_files}",
			wantCode: errors.ErrConfigValid,
			wantMsg:  "in section `x`",
		},
		{
			name: "duplicate output",
			text: "kibot: {version: 1}\noutputs:\n" +
				"  - {name: x, type: copy_files, options: {files: [{}]}}\n" +
				"  - {name: x, type: copy_files, options: {files: [{}]}}",
			wantCode: errors.ErrAlreadyExists,
		},
		{
			name: "group with unknown member",
			text: "kibot: {version: 1}\ngroups:\n  - {name: g, outputs: [nope]}",
			wantCode: errors.ErrUnknownTarget,
		},
		{
			name:     "unknown preflight",
			text:     "kibot: {version: 1}\npreflight:\n  nope: true",
			wantCode: errors.ErrUnknownTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"got %v, want code %s", err, tt.wantCode)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.kibot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0644))

	cfg, err := Load(filesystem.NewOS(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, len(cfg.Registry.List()))

	_, err = Load(filesystem.NewOS(), filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestFind(t *testing.T) {
	t.Run("single match", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "demo.kibot.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		found, err := Find(dir)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("none", func(t *testing.T) {
		_, err := Find(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.kibot.yaml"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.kibot.yml"), nil, 0644))

		_, err := Find(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than one")
	})
}
