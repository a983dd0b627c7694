package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("GetCode returns the carried code", func(t *testing.T) {
		err := New(CodeNotFound, "tag not found")
		assert.Equal(t, CodeNotFound, GetCode(err))
	})

	t.Run("GetCode defaults to internal for foreign errors", func(t *testing.T) {
		assert.Equal(t, CodeInternal, GetCode(errors.New("boom")))
	})

	t.Run("HasCode sees through wrapping", func(t *testing.T) {
		inner := New(CodeConflict, "name must be unique")
		outer := fmt.Errorf("create tag: %w", inner)
		assert.True(t, HasCode(outer, CodeConflict))
		assert.False(t, HasCode(outer, CodeNotFound))
	})
}

func TestWrap(t *testing.T) {
	t.Run("preserves the cause chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "failed to commit changes")

		require.ErrorIs(t, err, cause)
		assert.Equal(t, CodeUnavailable, GetCode(err))
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("returns nil for nil cause", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeUnavailable, "ignored"))
	})
}

func TestGetMessage(t *testing.T) {
	err := Wrap(errors.New("pq: gone"), CodeUnavailable, "failed to commit changes")
	assert.Equal(t, "failed to commit changes", GetMessage(err))
	assert.Equal(t, "unexpected error", GetMessage(errors.New("raw")))
}
