package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	t.Run("Unique", func(t *testing.T) {
		require.Equal(t, []string{"b", "a"}, Unique([]string{"b", "", "a", "b"}))
	})
	t.Run("EmptyToNil", func(t *testing.T) {
		require.Nil(t, EmptyToNil("  "))
		require.Equal(t, "d1", *EmptyToNil(" d1 "))
		require.Equal(t, "", PtrToStr(nil))
	})
	t.Run("IsContextDone", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		require.False(t, IsContextDone(ctx))
		cancel()
		require.True(t, IsContextDone(ctx))
	})
}
