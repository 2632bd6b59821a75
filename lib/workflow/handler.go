package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/config"
	"task-approval-backend/db"
	"task-approval-backend/lib/notify"
	taskhistorystore "task-approval-backend/lib/task-history/store"
	tasknodestore "task-approval-backend/lib/task-node/store"
	taskstore "task-approval-backend/lib/task/store"
	userstore "task-approval-backend/lib/users/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/lib/utils/lock"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Start(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)
	Complete(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)
	Forward(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ForwardRequest) (taskapimodels.TaskView, error)
	Reject(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)
	Approve(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)
	RejectStage(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)
}

var Instance Provider

func NewHandler() {
	wait := time.Duration(config.Conf.Workflow.TaskLockWaitMs) * time.Millisecond
	Instance = NewHandlerWithDB(db.DB, lock.Instance, notify.Instance, wait)
}

func NewHandlerWithDB(DB *gorm.DB, locker lock.Provider, publisher notify.Provider, lockWait time.Duration) Provider {
	instance := impl{
		db:        DB,
		store:     taskstore.NewInstance(DB),
		userStore: userstore.NewInstance(DB),
		locker:    locker,
		publisher: publisher,
		lockWait:  lockWait,
		now:       time.Now,
	}
	initchecker.CheckInit(
		"db", instance.db,
		"store", instance.store,
		"userStore", instance.userStore,
		"locker", instance.locker,
		"publisher", instance.publisher,
	)
	return instance
}

type impl struct {
	db        *gorm.DB
	store     taskstore.Provider
	userStore userstore.Provider
	locker    lock.Provider
	publisher notify.Provider
	lockWait  time.Duration
	now       func() time.Time
}

// txStores are bound to the transaction of one transition.
type txStores struct {
	tasks   taskstore.Provider
	history taskhistorystore.Provider
	nodes   tasknodestore.Provider
}

// step runs inside the transaction on the locked task and returns the events to publish after commit.
type step func(stores txStores, task *dbmodels.Task) ([]notify.Event, error)

// apply serializes transitions of one task: per-task lock, then a transaction over the re-read row.
func (i impl) apply(ctx context.Context, actor models.Actor, taskID string, event models.TaskEvent, fn step) (taskapimodels.TaskView, error) {
	logger := log.
		WithField("task_id", taskID).
		WithField("user_id", actor.UserID).
		WithField("event", event)
	var events []notify.Event
	success, err := i.locker.WithDelay(ctx, lock.TaskKey(taskID), i.lockWait, func() error {
		return i.db.Transaction(func(tx *gorm.DB) error {
			stores := txStores{
				tasks:   taskstore.NewInstance(tx),
				history: taskhistorystore.NewInstance(tx),
				nodes:   tasknodestore.NewInstance(tx),
			}
			task, err := stores.tasks.GetForUpdate(taskID)
			if err != nil {
				return err
			}
			if task == nil {
				return errors.Wrapf(models.ErrNotFound, "task %s", taskID)
			}
			events, err = fn(stores, task)
			return err
		})
	})
	if err != nil {
		if isGuardError(err) {
			logger.WithError(err).Info("transition refused")
		} else {
			logger.WithError(err).Error("transition failed")
		}
		return taskapimodels.TaskView{}, err
	}
	if !success {
		logger.Warn("task lock wait timed out")
		return taskapimodels.TaskView{}, errors.Wrapf(models.ErrTaskBusy, "task %s", taskID)
	}
	i.publisher.Publish(events...)
	rec, err := i.store.GetByID(taskID)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	if rec == nil {
		return taskapimodels.TaskView{}, errors.Wrapf(models.ErrNotFound, "task %s", taskID)
	}
	logger.WithField("status", rec.Status).Info("transition applied")
	return taskapimodels.TaskConvert(*rec, i.now()), nil
}

func isGuardError(err error) bool {
	for _, target := range []error{
		models.ErrNotFound,
		models.ErrInvalidTransition,
		models.ErrUnauthorized,
		models.ErrAlreadyProcessed,
		models.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalidTransition(task *dbmodels.Task, event models.TaskEvent) error {
	return errors.Wrapf(models.ErrInvalidTransition, "%s is not allowed from status %s", event, task.Status)
}

// actorUser resolves the actor before any lock is taken.
func (i impl) actorUser(actor models.Actor) (*dbmodels.User, error) {
	user, err := i.userStore.GetByID(actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, errors.Wrapf(models.ErrUnauthorized, "user %s is not an active user", actor.UserID)
	}
	return user, nil
}

func (i impl) writeHistory(stores txStores, task *dbmodels.Task, actorID string, event models.TaskEvent, from models.TaskStatus, comment string, changes dbmodels.EntityChanges) error {
	_, err := stores.history.Create(dbmodels.TaskHistory{
		TaskID:     task.ID,
		ActorID:    actorID,
		Event:      event,
		FromStatus: from,
		ToStatus:   task.Status,
		Comment:    strings.TrimSpace(comment),
		Changes:    changes,
	})
	return err
}

// setStatus moves the task and records the transition.
func (i impl) setStatus(stores txStores, task *dbmodels.Task, actorID string, event models.TaskEvent, to models.TaskStatus, comment string, updMap map[string]interface{}, extra ...dbmodels.FieldChanges) error {
	from := task.Status
	if updMap == nil {
		updMap = map[string]interface{}{}
	}
	updMap["status"] = to
	if err := stores.tasks.Update(task.ID, updMap); err != nil {
		return err
	}
	task.Status = to
	changes := dbmodels.EntityChanges{Description: string(event)}
	changes.Add("status", from, to)
	for field, value := range updMap {
		if field != "status" {
			changes.Add(field, nil, value)
		}
	}
	changes.Data = append(changes.Data, extra...)
	return i.writeHistory(stores, task, actorID, event, from, comment, changes)
}

func (i impl) Start(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	return i.apply(ctx, actor, taskID, models.TaskEventStart, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		if !task.Status.Allows(models.TaskEventStart) {
			return nil, invalidTransition(task, models.TaskEventStart)
		}
		updMap := map[string]interface{}{"started_at": i.now()}
		switch task.AssigneeType {
		case models.AssigneeTypeRole:
			if !strings.EqualFold(string(user.Role), task.AssigneeRole) {
				return nil, errors.Wrapf(models.ErrUnauthorized, "only a holder of role %s can start the task", task.AssigneeRole)
			}
			if task.GetAssigneeID() == "" {
				updMap["assignee_id"] = user.ID
				task.AssigneeID = &user.ID
			} else if !task.IsAssignee(user.ID) {
				return nil, errors.Wrap(models.ErrUnauthorized, "the task was claimed by another user")
			}
		default:
			if !task.IsAssignee(user.ID) {
				return nil, errors.Wrap(models.ErrUnauthorized, "only the assignee can start the task")
			}
		}
		if err := i.setStatus(stores, task, user.ID, models.TaskEventStart, models.TaskStatusInProgress, data.Comment, updMap); err != nil {
			return nil, err
		}
		return []notify.Event{{
			UserIDs: without(task.Stakeholders(), user.ID),
			Data:    models.GetPushTaskStatusChanged(task.ID, task.Title, task.Status),
		}}, nil
	})
}

func (i impl) Complete(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	return i.apply(ctx, actor, taskID, models.TaskEventComplete, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		if !task.Status.Allows(models.TaskEventComplete) {
			return nil, invalidTransition(task, models.TaskEventComplete)
		}
		if !task.IsAssignee(user.ID) {
			return nil, errors.Wrap(models.ErrUnauthorized, "only the assignee can complete the task")
		}
		to := models.TaskStatusCompleted
		if len(task.Approvers) > 0 {
			to = models.TaskStatusPendingApproval
		}
		updMap := map[string]interface{}{"completed_at": i.now()}
		if err := i.setStatus(stores, task, user.ID, models.TaskEventComplete, to, data.Comment, updMap); err != nil {
			return nil, err
		}
		events := []notify.Event{{
			UserIDs: without(task.Stakeholders(), user.ID),
			Data:    models.GetPushTaskStatusChanged(task.ID, task.Title, task.Status),
		}}
		if to == models.TaskStatusPendingApproval {
			events = append(events, approvalRequired(task))
		}
		return events, nil
	})
}

func (i impl) Forward(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ForwardRequest) (taskapimodels.TaskView, error) {
	if err := data.Validate(); err != nil {
		return taskapimodels.TaskView{}, err
	}
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	toUserID := strings.TrimSpace(data.ToUserID)
	if toUserID == user.ID {
		return taskapimodels.TaskView{}, errors.Wrap(models.ErrValidation, "the task can not be forwarded to its current holder")
	}
	target, err := i.userStore.GetByID(toUserID)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	if target == nil {
		return taskapimodels.TaskView{}, errors.Wrapf(models.ErrNotFound, "user %s", toUserID)
	}
	if !target.IsActive {
		return taskapimodels.TaskView{}, errors.Wrapf(models.ErrValidation, "user %s is not active", toUserID)
	}
	return i.apply(ctx, actor, taskID, models.TaskEventForward, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		if !task.Status.Allows(models.TaskEventForward) {
			return nil, invalidTransition(task, models.TaskEventForward)
		}
		if !task.IsAssignee(user.ID) {
			return nil, errors.Wrap(models.ErrUnauthorized, "only the assignee can forward the task")
		}
		now := i.now()
		_, err := stores.nodes.Append(dbmodels.TaskNode{
			TaskID:      task.ID,
			FromUserID:  user.ID,
			ToUserID:    target.ID,
			Comment:     strings.TrimSpace(data.Comment),
			ForwardedAt: now,
		})
		if err != nil {
			return nil, err
		}
		updMap := map[string]interface{}{
			"assignee_id":   target.ID,
			"assignee_type": models.AssigneeTypeUser,
		}
		if err = stores.tasks.Update(task.ID, updMap); err != nil {
			return nil, err
		}
		previous := task.GetAssigneeID()
		task.AssigneeID = &target.ID
		task.AssigneeType = models.AssigneeTypeUser
		changes := dbmodels.EntityChanges{Description: string(models.TaskEventForward)}
		changes.Add("assignee_id", previous, target.ID)
		if err = i.writeHistory(stores, task, user.ID, models.TaskEventForward, task.Status, data.Comment, changes); err != nil {
			return nil, err
		}
		return []notify.Event{
			{
				UserIDs: []string{target.ID},
				Data:    models.GetPushTaskAssigned(task.ID, task.Title, user.GetFullName(), task.Status),
				Email:   true,
			},
			{
				UserIDs: without(task.Stakeholders(previous), user.ID, target.ID),
				Data:    models.GetPushTaskStatusChanged(task.ID, task.Title, task.Status),
			},
		}, nil
	})
}

func (i impl) Reject(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	return i.apply(ctx, actor, taskID, models.TaskEventReject, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		if !task.Status.Allows(models.TaskEventReject) {
			return nil, invalidTransition(task, models.TaskEventReject)
		}
		if !task.IsAssignee(user.ID) && !isApprover(task, user.ID) && !user.Role.IsAdmin() {
			return nil, errors.Wrap(models.ErrUnauthorized, "only the assignee or an approver can reject the task")
		}
		if err := i.setStatus(stores, task, user.ID, models.TaskEventReject, models.TaskStatusRejected, data.Comment, nil); err != nil {
			return nil, err
		}
		return []notify.Event{{
			UserIDs: without(task.Stakeholders(), user.ID),
			Data:    models.GetPushTaskRejected(task.ID, task.Title, user.GetFullName()),
			Email:   true,
		}}, nil
	})
}

func (i impl) Approve(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	return i.apply(ctx, actor, taskID, models.TaskEventApprove, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		row, err := actorRow(task, user.ID)
		if err != nil {
			return nil, err
		}
		if !task.Status.Allows(models.TaskEventApprove) {
			return nil, invalidTransition(task, models.TaskEventApprove)
		}
		currentLevel := task.CurrentLevel()
		if row.LevelOrder != currentLevel {
			return nil, errors.Wrapf(models.ErrInvalidTransition, "stage %v is not current, stage %v is pending", row.LevelOrder, currentLevel)
		}
		if err = i.decide(stores, row, models.ApproverStatusApproved, data.Comment); err != nil {
			return nil, err
		}
		decision := stageChanges(row)
		events := []notify.Event{{
			UserIDs: without(task.Stakeholders(), user.ID),
			Data:    models.GetPushTaskStageApproved(task.ID, task.Title, user.GetFullName(), row.LevelOrder),
		}}
		nextLevel := task.CurrentLevel()
		switch {
		case nextLevel == 0:
			if err = i.setStatus(stores, task, user.ID, models.TaskEventApprove, models.TaskStatusApproved, data.Comment, nil, decision...); err != nil {
				return nil, err
			}
			events = append(events, notify.Event{
				UserIDs: task.Stakeholders(),
				Data:    models.GetPushTaskApproved(task.ID, task.Title, user.GetFullName()),
				Email:   true,
			})
		default:
			changes := dbmodels.EntityChanges{Description: "stage approved", Data: decision}
			if err = i.writeHistory(stores, task, user.ID, models.TaskEventApprove, task.Status, data.Comment, changes); err != nil {
				return nil, err
			}
			if nextLevel != currentLevel {
				events = append(events, approvalRequired(task))
			}
		}
		return events, nil
	})
}

func (i impl) RejectStage(ctx context.Context, actor models.Actor, taskID string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
	user, err := i.actorUser(actor)
	if err != nil {
		return taskapimodels.TaskView{}, err
	}
	return i.apply(ctx, actor, taskID, models.TaskEventRejectStage, func(stores txStores, task *dbmodels.Task) ([]notify.Event, error) {
		row, err := actorRow(task, user.ID)
		if err != nil {
			return nil, err
		}
		if !task.Status.Allows(models.TaskEventRejectStage) {
			return nil, invalidTransition(task, models.TaskEventRejectStage)
		}
		if err = i.decide(stores, row, models.ApproverStatusRejected, data.Comment); err != nil {
			return nil, err
		}
		if err = i.setStatus(stores, task, user.ID, models.TaskEventRejectStage, models.TaskStatusRejected, data.Comment, nil, stageChanges(row)...); err != nil {
			return nil, err
		}
		return []notify.Event{{
			UserIDs: without(task.Stakeholders(), user.ID),
			Data:    models.GetPushTaskRejected(task.ID, task.Title, user.GetFullName()),
			Email:   true,
		}}, nil
	})
}

// actorRow picks the actor's lowest pending approver row.
func actorRow(task *dbmodels.Task, userID string) (*dbmodels.TaskApprover, error) {
	found := false
	var row *dbmodels.TaskApprover
	for idx := range task.Approvers {
		approver := &task.Approvers[idx]
		if approver.ApproverUserID != userID {
			continue
		}
		found = true
		if approver.Status != models.ApproverStatusPending {
			continue
		}
		if row == nil || approver.LevelOrder < row.LevelOrder {
			row = approver
		}
	}
	if !found {
		return nil, errors.Wrapf(models.ErrUnauthorized, "user %s is not an approver of the task", userID)
	}
	if row == nil {
		return nil, errors.Wrapf(models.ErrAlreadyProcessed, "user %s has already decided", userID)
	}
	return row, nil
}

func (i impl) decide(stores txStores, row *dbmodels.TaskApprover, status models.ApproverStatus, comment string) error {
	now := i.now()
	comment = strings.TrimSpace(comment)
	err := stores.tasks.UpdateApprover(row.ID, map[string]interface{}{
		"status":    status,
		"comment":   comment,
		"action_at": now,
	})
	if err != nil {
		return err
	}
	row.Status = status
	row.Comment = comment
	row.ActionAt = &now
	return nil
}

func stageChanges(row *dbmodels.TaskApprover) []dbmodels.FieldChanges {
	return []dbmodels.FieldChanges{
		{Field: "level_order", NewValue: row.LevelOrder},
		{Field: "approver_status", OldValue: models.ApproverStatusPending, NewValue: row.Status},
	}
}

func isApprover(task *dbmodels.Task, userID string) bool {
	for _, approver := range task.Approvers {
		if approver.ApproverUserID == userID {
			return true
		}
	}
	return false
}

// approvalRequired addresses the pending approvers of the current stage.
func approvalRequired(task *dbmodels.Task) notify.Event {
	level := task.CurrentLevel()
	userIDs := []string{}
	for _, approver := range task.Approvers {
		if approver.LevelOrder == level && approver.Status == models.ApproverStatusPending {
			userIDs = append(userIDs, approver.ApproverUserID)
		}
	}
	return notify.Event{
		UserIDs: userIDs,
		Data:    models.GetPushApprovalRequired(task.ID, task.Title, level),
		Email:   true,
	}
}

func without(ids []string, exclude ...string) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		skip := false
		for _, ex := range exclude {
			if id == ex {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, id)
		}
	}
	return result
}
