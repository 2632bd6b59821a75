package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLock(t *testing.T) {
	t.Run("serializes holders of one key", func(t *testing.T) {
		l := NewLocal()
		var inside, maxInside int32
		var wg sync.WaitGroup
		for n := 0; n < 10; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := l.WithDelay(context.Background(), "task-1", 5*time.Second, func() error {
					cur := atomic.AddInt32(&inside, 1)
					for {
						prev := atomic.LoadInt32(&maxInside)
						if cur <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, cur) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					return nil
				})
				assert.NoError(t, err)
				assert.True(t, ok)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), maxInside)
	})
	t.Run("times out while held", func(t *testing.T) {
		l := NewLocal()
		held := make(chan struct{})
		release := make(chan struct{})
		go l.WithDelay(context.Background(), "task-2", time.Second, func() error {
			close(held)
			<-release
			return nil
		})
		<-held
		ok, err := l.WithDelay(context.Background(), "task-2", 30*time.Millisecond, func() error {
			t.Fatal("must not run")
			return nil
		})
		close(release)
		require.NoError(t, err)
		require.False(t, ok)
	})
	t.Run("different keys do not block", func(t *testing.T) {
		l := NewLocal()
		ok, err := l.WithDelay(context.Background(), "a", time.Second, func() error {
			innerOk, innerErr := l.WithDelay(context.Background(), "b", 30*time.Millisecond, func() error { return nil })
			require.True(t, innerOk)
			return innerErr
		})
		require.NoError(t, err)
		require.True(t, ok)
	})
	t.Run("returns code error and releases", func(t *testing.T) {
		l := NewLocal()
		codeErr := errors.New("boom")
		ok, err := l.WithDelay(context.Background(), "c", time.Second, func() error { return codeErr })
		require.True(t, ok)
		require.ErrorIs(t, err, codeErr)
		ok, err = l.WithDelay(context.Background(), "c", 30*time.Millisecond, func() error { return nil })
		require.True(t, ok)
		require.NoError(t, err)
	})
}
