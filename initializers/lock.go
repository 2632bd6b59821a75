package initializers

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"task-approval-backend/config"
	"task-approval-backend/lib/utils/lock"
)

// InitLock shares task locks between instances through Redis when it is configured.
func InitLock(ctx context.Context) {
	if config.Conf.Redis.Host == "" {
		lock.Instance = lock.NewLocal()
		log.Info("in-process task lock is used")
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Conf.Redis.Host, config.Conf.Redis.Port),
		Password: config.Conf.Redis.Password,
		DB:       config.Conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("redis is not available: %v", err))
	}
	lock.Instance = lock.NewRedis(client, time.Duration(config.Conf.Workflow.TaskLockTTLSec)*time.Second)
	log.Info("redis task lock is used")
}
