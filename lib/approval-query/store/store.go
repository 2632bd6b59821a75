package approvalquerystore

import (
	"strings"

	"gorm.io/gorm"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	PendingByUser(userID string) (list []dbmodels.TaskApprover, err error)
	PendingByRole(role string) (list []dbmodels.TaskApprover, err error)
	HistoryByUser(userID string) (list []dbmodels.TaskApprover, err error)
}

var terminalStatuses = []models.TaskStatus{models.TaskStatusApproved, models.TaskStatusRejected, models.TaskStatusCompleted}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) withTask(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("ApproverUser").
		Preload("Task").
		Preload("Task.Creator").
		Preload("Task.Assignee").
		Preload("Task.Approvers")
}

func (i impl) pending() *gorm.DB {
	return i.db.
		Model(&dbmodels.TaskApprover{}).
		Joins("JOIN tasks ON tasks.id = task_approvers.task_id").
		Where("task_approvers.status = ?", models.ApproverStatusPending).
		Where("tasks.status not in (?)", terminalStatuses)
}

func (i impl) PendingByUser(userID string) (list []dbmodels.TaskApprover, err error) {
	list = []dbmodels.TaskApprover{}
	err = i.withTask(i.pending()).
		Where("task_approvers.approver_user_id = ?", userID).
		Order("tasks.due_date IS NULL, tasks.due_date, task_approvers.created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) PendingByRole(role string) (list []dbmodels.TaskApprover, err error) {
	list = []dbmodels.TaskApprover{}
	tx := i.pending().
		Joins("JOIN users ON users.id = task_approvers.approver_user_id")
	if role != "" {
		tx = tx.Where("users.role = ?", strings.ToUpper(role))
	}
	err = i.withTask(tx).
		Order("task_approvers.created_at, task_approvers.level_order").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// HistoryByUser lists decided rows newest first, then the undecided ones.
func (i impl) HistoryByUser(userID string) (list []dbmodels.TaskApprover, err error) {
	list = []dbmodels.TaskApprover{}
	err = i.withTask(i.db.Model(&dbmodels.TaskApprover{})).
		Where("approver_user_id = ?", userID).
		Order("CASE WHEN action_at IS NULL THEN 1 ELSE 0 END, action_at desc, created_at desc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
