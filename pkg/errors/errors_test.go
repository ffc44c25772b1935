package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrConfigValid, "bad spec")

	assert.Equal(t, ErrConfigValid, err.Code)
	assert.Equal(t, "[CONFIG_INVALID] bad spec", err.Error())
	assert.NotNil(t, err.Details)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrUnknownOutput, "unknown output `%s`", "gerbers")

	assert.Equal(t, "[UNKNOWN_OUTPUT] unknown output `gerbers`", err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("wraps underlying error", func(t *testing.T) {
		inner := fmt.Errorf("permission denied")
		err := Wrap(inner, ErrFileAccess, "reading source")

		assert.Equal(t, "[FILE_ACCESS] reading source: permission denied", err.Error())
		assert.ErrorIs(t, err, inner)
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrFileAccess, "whatever"))
		assert.Nil(t, Wrapf(nil, ErrFileAccess, "whatever %d", 1))
	})
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrSelfCopy, "copy onto itself")

	assert.True(t, IsErrorCode(err, ErrSelfCopy))
	assert.False(t, IsErrorCode(err, ErrFileCopy))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrSelfCopy))

	// Code survives wrapping with fmt
	wrapped := fmt.Errorf("while copying: %w", err)
	assert.True(t, IsErrorCode(wrapped, ErrSelfCopy))

	// Inner codes stay visible through coded wrappers
	rewrapped := Wrap(err, ErrOutputRun, "in output `x`")
	assert.True(t, IsErrorCode(rewrapped, ErrOutputRun))
	assert.True(t, IsErrorCode(rewrapped, ErrSelfCopy))
	assert.False(t, IsErrorCode(rewrapped, ErrFileCopy))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrOutputCycle, GetErrorCode(New(ErrOutputCycle, "loop")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestErrorIs(t *testing.T) {
	err := New(ErrMissingTarget, "out/x.bin")
	target := New(ErrMissingTarget, "different message")

	// Is compares codes, not messages
	assert.ErrorIs(t, err, target)
}

func TestWithDetail(t *testing.T) {
	err := New(ErrMissingTarget, "missing").
		WithDetail("file", "out/x.bin").
		WithDetail("producer", "gerbers")

	require.NotNil(t, err.Details)
	assert.Equal(t, "out/x.bin", err.Details["file"])
	assert.Equal(t, "gerbers", err.Details["producer"])
}

func TestIsConfiguration(t *testing.T) {
	assert.True(t, IsConfiguration(New(ErrSelfCopy, "x")))
	assert.True(t, IsConfiguration(New(ErrConfigValid, "x")))
	assert.False(t, IsConfiguration(New(ErrMissingTarget, "x")))
	assert.False(t, IsConfiguration(New(ErrInternal, "x")))
}
