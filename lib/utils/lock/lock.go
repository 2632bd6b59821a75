package lock

import (
	"context"
	"sync"
	"time"
)

const pollInterval = 10 * time.Millisecond

// Provider runs safeCode while holding the key. success is false when the key could not be taken within wait.
type Provider interface {
	WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error)
}

var Instance Provider

// TaskKey is the key every writer of one task locks on.
func TaskKey(taskID string) string {
	return "task:" + taskID
}

func NewLocal() Provider {
	return &localImpl{}
}

type localImpl struct {
	lockMap sync.Map
}

func (i *localImpl) WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	isTimeout := time.After(wait)
	for {
		if _, loaded := i.lockMap.LoadOrStore(key, true); !loaded {
			break
		}
		select {
		case <-isTimeout:
			return false, nil
		case <-ctx.Done():
			return false, nil
		case <-time.After(pollInterval):
		}
	}
	defer i.lockMap.Delete(key)
	return true, safeCode()
}
