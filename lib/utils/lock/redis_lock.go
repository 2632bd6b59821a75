package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "lock:"

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// NewRedis returns a lock shared by every instance connected to the same redis. ttl bounds how long a crashed holder keeps the key.
// The key is not extended while safeCode runs, so ttl must exceed the longest guarded operation.
func NewRedis(client redis.UniversalClient, ttl time.Duration) Provider {
	return &redisImpl{client: client, ttl: ttl}
}

type redisImpl struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func (i *redisImpl) WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key
	isTimeout := time.After(wait)
	for {
		ok, err := i.client.SetNX(ctx, redisKey, token, i.ttl).Result()
		if err != nil {
			return false, errors.Wrap(err, "unable to acquire lock")
		}
		if ok {
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
	defer func() {
		// the caller context may already be cancelled, release anyway
		released, relErr := releaseScript.Run(context.Background(), i.client, []string{redisKey}, token).Int()
		if relErr != nil {
			log.WithError(relErr).WithField("lock_key", key).Warn("unable to release lock")
			return
		}
		if released == 0 {
			log.WithField("lock_key", key).
				WithField("ttl", i.ttl).
				Warn("lock expired before release, the key may have been taken by another holder")
		}
	}()
	return true, safeCode()
}
