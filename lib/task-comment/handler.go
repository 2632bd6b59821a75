package taskcommenthandler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	"task-approval-backend/lib/notify"
	taskcommentstore "task-approval-backend/lib/task-comment/store"
	taskstore "task-approval-backend/lib/task/store"
	userstore "task-approval-backend/lib/users/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	AddComment(actor models.Actor, taskID string, data taskapimodels.CommentData) (taskapimodels.CommentView, error)
	List(taskID string) ([]taskapimodels.CommentView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB, notify.Instance)
}

func NewHandlerWithDB(tx *gorm.DB, publisher notify.Provider) Provider {
	instance := impl{
		store:     taskcommentstore.NewInstance(tx),
		taskStore: taskstore.NewInstance(tx),
		userStore: userstore.NewInstance(tx),
		publisher: publisher,
	}
	initchecker.CheckInit(
		"store", instance.store,
		"taskStore", instance.taskStore,
		"userStore", instance.userStore,
		"publisher", instance.publisher,
	)
	return instance
}

type impl struct {
	store     taskcommentstore.Provider
	taskStore taskstore.Provider
	userStore userstore.Provider
	publisher notify.Provider
}

func (i impl) AddComment(actor models.Actor, taskID string, data taskapimodels.CommentData) (taskapimodels.CommentView, error) {
	logger := log.WithField("task_id", taskID).WithField("user_id", actor.UserID)
	if err := data.Validate(); err != nil {
		return taskapimodels.CommentView{}, err
	}
	user, err := i.userStore.GetByID(actor.UserID)
	if err != nil {
		return taskapimodels.CommentView{}, err
	}
	if user == nil || !user.IsActive {
		return taskapimodels.CommentView{}, errors.Wrapf(models.ErrUnauthorized, "user %s is not an active user", actor.UserID)
	}
	task, err := i.taskStore.GetByID(taskID)
	if err != nil {
		return taskapimodels.CommentView{}, err
	}
	if task == nil {
		return taskapimodels.CommentView{}, errors.Wrapf(models.ErrNotFound, "task %s", taskID)
	}
	rec, err := i.store.Create(dbmodels.Comment{
		TaskID:  task.ID,
		UserID:  user.ID,
		Content: data.Content,
	})
	if err != nil {
		logger.WithError(err).Error("unable to save comment")
		return taskapimodels.CommentView{}, err
	}
	rec.User = user
	recipients := []string{}
	for _, id := range task.Stakeholders() {
		if id != user.ID {
			recipients = append(recipients, id)
		}
	}
	i.publisher.Publish(notify.Event{
		UserIDs: recipients,
		Data:    models.GetPushTaskCommented(task.ID, task.Title, user.GetFullName(), task.Status),
	})
	logger.WithField("comment_id", rec.ID).Info("comment added")
	return taskapimodels.CommentConvert(*rec), nil
}

func (i impl) List(taskID string) ([]taskapimodels.CommentView, error) {
	task, err := i.taskStore.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "task %s", taskID)
	}
	list, err := i.store.List(taskID)
	if err != nil {
		return nil, err
	}
	result := make([]taskapimodels.CommentView, 0, len(list))
	for _, rec := range list {
		result = append(result, taskapimodels.CommentConvert(rec))
	}
	return result, nil
}
