package taskhandler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/config"
	"task-approval-backend/db"
	approvalchain "task-approval-backend/lib/approval-chain"
	departmentstore "task-approval-backend/lib/dicts/department/store"
	filestorage "task-approval-backend/lib/file-storage"
	"task-approval-backend/lib/notify"
	taskhistorystore "task-approval-backend/lib/task-history/store"
	taskstore "task-approval-backend/lib/task/store"
	userstore "task-approval-backend/lib/users/store"
	"task-approval-backend/lib/utils/helpers"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/lib/utils/lock"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(ctx context.Context, actor models.Actor, data taskapimodels.TaskData) (id string, err error)
	Get(id string) (taskapimodels.TaskDetailView, error)
	List(filter taskapimodels.TaskFilter) (list []taskapimodels.TaskView, rowCount int64, err error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	History(id string) ([]taskapimodels.HistoryView, error)
}

var Instance Provider

func NewHandler() {
	wait := time.Duration(config.Conf.Workflow.TaskLockWaitMs) * time.Millisecond
	Instance = NewHandlerWithDB(db.DB, lock.Instance, notify.Instance, filestorage.Instance, wait)
}

// NewHandlerWithDB builds the handler over DB. files may be nil when no object storage is configured.
func NewHandlerWithDB(DB *gorm.DB, locker lock.Provider, publisher notify.Provider, files filestorage.Provider, lockWait time.Duration) Provider {
	instance := impl{
		db:              DB,
		locker:          locker,
		lockWait:        lockWait,
		store:           taskstore.NewInstance(DB),
		historyStore:    taskhistorystore.NewInstance(DB),
		userStore:       userstore.NewInstance(DB),
		departmentStore: departmentstore.NewInstance(DB),
		chainBuilder:    approvalchain.NewInstance(DB),
		publisher:       publisher,
		files:           files,
	}
	initchecker.CheckInit(
		"db", instance.db,
		"locker", instance.locker,
		"store", instance.store,
		"historyStore", instance.historyStore,
		"userStore", instance.userStore,
		"departmentStore", instance.departmentStore,
		"chainBuilder", instance.chainBuilder,
		"publisher", instance.publisher,
	)
	return instance
}

type impl struct {
	db              *gorm.DB
	locker          lock.Provider
	lockWait        time.Duration
	store           taskstore.Provider
	historyStore    taskhistorystore.Provider
	userStore       userstore.Provider
	departmentStore departmentstore.Provider
	chainBuilder    approvalchain.Provider
	publisher       notify.Provider
	files           filestorage.Provider
}

func (i impl) getLogger(taskID, userID string) *log.Entry {
	logger := log.WithField("task_id", taskID)
	if userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

func (i impl) Create(ctx context.Context, actor models.Actor, data taskapimodels.TaskData) (id string, err error) {
	logger := i.getLogger("", actor.UserID)
	if err = data.Validate(); err != nil {
		return "", err
	}
	creator, err := i.userStore.GetByID(actor.UserID)
	if err != nil {
		return "", err
	}
	if creator == nil || !creator.IsActive {
		return "", errors.Wrapf(models.ErrUnauthorized, "user %s is not an active user", actor.UserID)
	}
	rec := dbmodels.Task{
		Title:        data.Title,
		Description:  strings.TrimSpace(data.Description),
		CreatorID:    creator.ID,
		AssigneeType: data.AssigneeType,
		Amount:       data.Amount,
		ApprovalType: data.ApprovalType,
		Status:       models.TaskStatusOpen,
		DueDate:      data.DueDate,
	}
	if err = i.fillAssignee(&rec, creator, data); err != nil {
		return "", err
	}
	if err = i.fillDepartment(&rec, creator, data.DepartmentID); err != nil {
		return "", err
	}
	if data.ApprovalType == models.ApprovalTypePredefined {
		rec.ApprovalTemplateID = helpers.StrPtr(data.ApprovalTemplateID)
	}
	if data.ApprovalType == models.ApprovalType360 && len(data.PeerIDs) > 0 {
		rec.PeerIDs = helpers.Unique(data.PeerIDs)
	}

	chain, err := i.chainBuilder.Build(ctx, approvalchain.ChainRequest{
		ApprovalType: data.ApprovalType,
		CreatorID:    creator.ID,
		AssigneeID:   rec.GetAssigneeID(),
		DepartmentID: rec.GetDepartmentID(),
		Amount:       data.Amount,
		ApproverIDs:  data.ApproverIDs,
		PeerIDs:      rec.PeerIDs,
		TemplateID:   data.ApprovalTemplateID,
	})
	if err != nil {
		return "", err
	}
	for _, link := range chain {
		rec.Approvers = append(rec.Approvers, dbmodels.TaskApprover{
			LevelOrder:     link.LevelOrder,
			ApproverUserID: link.ApproverUserID,
			Status:         models.ApproverStatusPending,
		})
	}

	err = i.db.Transaction(func(tx *gorm.DB) error {
		err := taskstore.NewInstance(tx).Create(&rec)
		if err != nil {
			logger.WithError(err).Error("unable to create task")
			return err
		}
		changes := dbmodels.EntityChanges{Description: "task created"}
		changes.Add("approval_type", nil, rec.ApprovalType)
		changes.Add("approvers", nil, len(rec.Approvers))
		if rec.AssigneeID != nil {
			changes.Add("assignee_id", nil, *rec.AssigneeID)
		}
		_, err = taskhistorystore.NewInstance(tx).Create(dbmodels.TaskHistory{
			TaskID:   rec.ID,
			ActorID:  creator.ID,
			Event:    models.TaskEventCreate,
			ToStatus: models.TaskStatusOpen,
			Changes:  changes,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	i.publisher.Publish(notify.Event{
		UserIDs: i.assigneeAudience(rec, creator.ID),
		Data:    models.GetPushTaskCreated(rec.ID, rec.Title, creator.GetFullName()),
	})
	i.getLogger(rec.ID, actor.UserID).
		WithField("approval_type", rec.ApprovalType).
		WithField("approvers", len(rec.Approvers)).
		Info("task created")
	return rec.ID, nil
}

func (i impl) fillAssignee(rec *dbmodels.Task, creator *dbmodels.User, data taskapimodels.TaskData) error {
	if data.AssigneeType == models.AssigneeTypeRole {
		rec.AssigneeRole = strings.ToUpper(strings.TrimSpace(data.AssigneeRole))
		return nil
	}
	assigneeID := strings.TrimSpace(data.AssigneeID)
	if assigneeID == "" || assigneeID == creator.ID {
		rec.AssigneeID = helpers.StrPtr(creator.ID)
		return nil
	}
	assignee, err := i.userStore.GetByID(assigneeID)
	if err != nil {
		return err
	}
	if assignee == nil {
		return errors.Wrapf(models.ErrNotFound, "assignee %s", assigneeID)
	}
	if !assignee.IsActive {
		return errors.Wrapf(models.ErrValidation, "assignee %s is not active", assigneeID)
	}
	rec.AssigneeID = helpers.StrPtr(assignee.ID)
	return nil
}

func (i impl) fillDepartment(rec *dbmodels.Task, creator *dbmodels.User, departmentID string) error {
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		rec.DepartmentID = creator.DepartmentID
		return nil
	}
	department, err := i.departmentStore.GetByID(departmentID)
	if err != nil {
		return err
	}
	if department == nil {
		return errors.Wrapf(models.ErrNotFound, "department %s", departmentID)
	}
	rec.DepartmentID = helpers.StrPtr(department.ID)
	return nil
}

// assigneeAudience is who should hear about a new task: the assignee or every holder of the assignee role.
func (i impl) assigneeAudience(rec dbmodels.Task, creatorID string) []string {
	if rec.AssigneeType != models.AssigneeTypeRole {
		if rec.GetAssigneeID() == creatorID {
			return nil
		}
		return []string{rec.GetAssigneeID()}
	}
	holders, err := i.userStore.ActiveByRole(rec.AssigneeRole)
	if err != nil {
		i.getLogger(rec.ID, creatorID).WithError(err).Warn("unable to load role holders for notification")
		return nil
	}
	result := make([]string, 0, len(holders))
	for _, holder := range holders {
		if holder.ID != creatorID {
			result = append(result, holder.ID)
		}
	}
	return result
}

func (i impl) Get(id string) (taskapimodels.TaskDetailView, error) {
	rec, err := i.store.GetDetails(id)
	if err != nil {
		i.getLogger(id, "").WithError(err).Error("unable to load task")
		return taskapimodels.TaskDetailView{}, err
	}
	if rec == nil {
		return taskapimodels.TaskDetailView{}, errors.Wrapf(models.ErrNotFound, "task %s", id)
	}
	return taskapimodels.TaskDetailConvert(*rec, time.Now()), nil
}

func (i impl) List(filter taskapimodels.TaskFilter) (list []taskapimodels.TaskView, rowCount int64, err error) {
	if err = filter.Validate(); err != nil {
		return nil, 0, err
	}
	now := time.Now()
	recList, rowCount, err := i.store.List(filter, now)
	if err != nil {
		return nil, 0, err
	}
	list = make([]taskapimodels.TaskView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, taskapimodels.TaskConvert(rec, now))
	}
	return list, rowCount, nil
}

func (i impl) Delete(ctx context.Context, actor models.Actor, id string) error {
	logger := i.getLogger(id, actor.UserID)
	rec, err := i.store.GetDetails(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(models.ErrNotFound, "task %s", id)
	}
	if rec.CreatorID != actor.UserID && !actor.IsAdmin() {
		return errors.Wrap(models.ErrUnauthorized, "only the creator or an administrator can delete the task")
	}
	keys := make([]string, 0, len(rec.Attachments))
	for _, attachment := range rec.Attachments {
		keys = append(keys, attachment.Filepath)
	}
	success, err := i.locker.WithDelay(ctx, lock.TaskKey(id), i.lockWait, func() error {
		return i.store.Delete(id)
	})
	if err != nil {
		logger.WithError(err).Error("unable to delete task")
		return err
	}
	if !success {
		logger.Warn("task lock wait timed out")
		return errors.Wrapf(models.ErrTaskBusy, "task %s", id)
	}
	if i.files != nil {
		i.files.RemoveTaskFiles(ctx, keys)
	}
	i.publisher.Publish(notify.Event{
		UserIDs: rec.Stakeholders(),
		Data: models.NotificationData{
			Code:   models.PushTaskStatusChanged,
			TaskID: rec.ID,
			Status: rec.Status,
			Title:  models.PushCodeMap[models.PushTaskStatusChanged].Title,
			Msg:    fmt.Sprintf("Task «%v» was deleted.", rec.Title),
		},
	})
	logger.Info("task deleted")
	return nil
}

func (i impl) History(id string) ([]taskapimodels.HistoryView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "task %s", id)
	}
	list, err := i.historyStore.List(id)
	if err != nil {
		return nil, err
	}
	result := make([]taskapimodels.HistoryView, 0, len(list))
	for _, item := range list {
		result = append(result, taskapimodels.HistoryConvert(item))
	}
	return result, nil
}
