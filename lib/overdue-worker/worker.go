package overdueworker

import (
	"context"
	"time"

	"gorm.io/gorm"
	"task-approval-backend/config"
	"task-approval-backend/db"
	"task-approval-backend/lib/notify"
	taskstore "task-approval-backend/lib/task/store"
	baseworker "task-approval-backend/lib/utils/base-worker"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/models"
)

const batchSize = 100

func StartWorker(ctx context.Context) {
	i := newWorker(db.DB, notify.Instance,
		time.Duration(config.Conf.Workflow.OverdueFirstDelayS)*time.Second,
		time.Duration(config.Conf.Workflow.OverdueCheckIntervalS)*time.Second)
	go i.Run(ctx, i.handle)
}

func newWorker(tx *gorm.DB, publisher notify.Provider, firstRunDelay, runInterval time.Duration) *impl {
	return &impl{
		BaseImpl:  *baseworker.NewInstance("OverdueWorker", firstRunDelay, runInterval),
		taskStore: taskstore.NewInstance(tx),
		publisher: publisher,
		now:       time.Now,
	}
}

type impl struct {
	baseworker.BaseImpl
	taskStore taskstore.Provider
	publisher notify.Provider
	now       func() time.Time
}

// handle notifies every overdue task once; the status is left as is.
func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	now := i.now()
	for {
		list, err := i.taskStore.ListOverdue(now, batchSize)
		if err != nil {
			logger.WithError(err).Error("unable to load overdue tasks")
			return
		}
		notified := 0
		for _, task := range list {
			if helpers.IsContextDone(ctx) {
				return
			}
			err = i.taskStore.Update(task.ID, map[string]interface{}{"overdue_notified_at": now})
			if err != nil {
				logger.WithError(err).WithField("task_id", task.ID).Error("unable to mark task as notified")
				continue
			}
			notified++
			i.publisher.Publish(notify.Event{
				UserIDs: []string{task.CreatorID, task.GetAssigneeID()},
				Data:    models.GetPushTaskOverdue(task.ID, task.Title, helpers.FormatTime(task.DueDate), task.Status),
				Email:   true,
			})
		}
		if notified > 0 {
			logger.WithField("tasks", notified).Info("overdue notifications sent")
		}
		if len(list) < batchSize || notified == 0 {
			return
		}
	}
}
