package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 10 * time.Second

func newTestRedis(t *testing.T) (*miniredis.Miniredis, Provider) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, testTTL)
}

func TestRedisLock(t *testing.T) {
	t.Run("serializes holders of one key", func(t *testing.T) {
		_, l := newTestRedis(t)
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
		mr, l := newTestRedis(t)
		require.NoError(t, mr.Set(keyPrefix+"task-2", "other-instance"))
		ok, err := l.WithDelay(context.Background(), "task-2", 30*time.Millisecond, func() error {
			t.Fatal("must not run")
			return nil
		})
		require.NoError(t, err)
		require.False(t, ok)
		value, err := mr.Get(keyPrefix + "task-2")
		require.NoError(t, err)
		require.Equal(t, "other-instance", value)
	})
	t.Run("key carries the ttl while held", func(t *testing.T) {
		mr, l := newTestRedis(t)
		ok, err := l.WithDelay(context.Background(), "task-3", time.Second, func() error {
			require.True(t, mr.Exists(keyPrefix+"task-3"))
			require.Equal(t, testTTL, mr.TTL(keyPrefix+"task-3"))
			return nil
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.False(t, mr.Exists(keyPrefix+"task-3"))
	})
	t.Run("returns code error and releases", func(t *testing.T) {
		mr, l := newTestRedis(t)
		codeErr := errors.New("boom")
		ok, err := l.WithDelay(context.Background(), "c", time.Second, func() error { return codeErr })
		require.True(t, ok)
		require.ErrorIs(t, err, codeErr)
		require.False(t, mr.Exists(keyPrefix+"c"))
		ok, err = l.WithDelay(context.Background(), "c", 30*time.Millisecond, func() error { return nil })
		require.True(t, ok)
		require.NoError(t, err)
	})
	t.Run("releases after the caller context is cancelled", func(t *testing.T) {
		mr, l := newTestRedis(t)
		ctx, cancel := context.WithCancel(context.Background())
		ok, err := l.WithDelay(ctx, "d", time.Second, func() error {
			cancel()
			return nil
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.False(t, mr.Exists(keyPrefix+"d"))
	})
	t.Run("cancelled context stops waiting", func(t *testing.T) {
		mr, l := newTestRedis(t)
		require.NoError(t, mr.Set(keyPrefix+"e", "other-instance"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ok, err := l.WithDelay(ctx, "e", 5*time.Second, func() error {
			t.Fatal("must not run")
			return nil
		})
		require.NoError(t, err)
		require.False(t, ok)
	})
	t.Run("release keeps a key owned by another holder", func(t *testing.T) {
		mr, l := newTestRedis(t)
		ok, err := l.WithDelay(context.Background(), "f", time.Second, func() error {
			return mr.Set(keyPrefix+"f", "other-instance")
		})
		require.NoError(t, err)
		require.True(t, ok)
		value, err := mr.Get(keyPrefix + "f")
		require.NoError(t, err)
		require.Equal(t, "other-instance", value)
	})
	t.Run("expired key can be taken by the next holder", func(t *testing.T) {
		mr, l := newTestRedis(t)
		ok, err := l.WithDelay(context.Background(), "g", time.Second, func() error {
			mr.FastForward(testTTL + time.Second)
			innerOk, innerErr := l.WithDelay(context.Background(), "g", 30*time.Millisecond, func() error { return nil })
			require.True(t, innerOk)
			return innerErr
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.False(t, mr.Exists(keyPrefix+"g"))
	})
	t.Run("different keys do not block", func(t *testing.T) {
		_, l := newTestRedis(t)
		ok, err := l.WithDelay(context.Background(), "a", time.Second, func() error {
			innerOk, innerErr := l.WithDelay(context.Background(), "b", 30*time.Millisecond, func() error { return nil })
			require.True(t, innerOk)
			return innerErr
		})
		require.NoError(t, err)
		require.True(t, ok)
	})
}
