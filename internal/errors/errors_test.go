package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("WrapsErrorWithContext", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "record lookup failed")
		require.Error(t, wrapped)
		assert.Equal(t, "record lookup failed: not found", wrapped.Error())
		assert.True(t, Is(wrapped, ErrNotFound))
	})

	t.Run("NilErrorReturnsNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "anything"))
	})

	t.Run("PreservesChainThroughMultipleWraps", func(t *testing.T) {
		inner := Wrap(ErrInvalidInput, "display name is blank")
		outer := fmt.Errorf("create record: %w", inner)
		assert.True(t, Is(outer, ErrInvalidInput))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrInternal}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
