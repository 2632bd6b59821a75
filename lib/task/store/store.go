package taskstore

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec *dbmodels.Task) error
	GetByID(id string) (*dbmodels.Task, error)
	GetForUpdate(id string) (*dbmodels.Task, error)
	GetDetails(id string) (*dbmodels.Task, error)
	Update(id string, updMap map[string]interface{}) error
	UpdateApprover(id string, updMap map[string]interface{}) error
	List(filter taskapimodels.TaskFilter, now time.Time) (list []dbmodels.Task, rowCount int64, err error)
	Delete(id string) error
	ListOverdue(now time.Time, limit int) ([]dbmodels.Task, error)
	CountByStatus() (map[models.TaskStatus]int64, error)
	CountAssigned(userID string, statuses []models.TaskStatus) (int64, error)
	Recent(userID string, limit int) ([]dbmodels.Task, error)
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

func orderApprovers(db *gorm.DB) *gorm.DB {
	return db.Order("level_order, created_at, id")
}

func (i impl) Create(rec *dbmodels.Task) error {
	return i.db.Create(rec).Error
}

func (i impl) GetByID(id string) (*dbmodels.Task, error) {
	rec := dbmodels.Task{}
	err := i.db.
		Preload("Creator").
		Preload("Assignee").
		Preload("Approvers", orderApprovers).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// GetForUpdate locks the task row for the rest of the transaction and loads its approvers.
func (i impl) GetForUpdate(id string) (*dbmodels.Task, error) {
	rec := dbmodels.Task{}
	err := i.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	err = orderApprovers(i.db.Where("task_id = ?", id)).
		Find(&rec.Approvers).
		Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetDetails(id string) (*dbmodels.Task, error) {
	rec := dbmodels.Task{}
	err := i.db.
		Preload("Creator").
		Preload("Assignee").
		Preload("Department").
		Preload("Approvers", orderApprovers).
		Preload("Approvers.ApproverUser").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("forwarded_at, created_at")
		}).
		Preload("Nodes.FromUser").
		Preload("Nodes.ToUser").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at")
		}).
		Preload("Comments.User").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at")
		}).
		Preload("Attachments.User").
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	res := i.db.
		Model(&dbmodels.Task{}).
		Where("id = ?", id).
		Updates(updMap)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(models.ErrNotFound, "task %s", id)
	}
	return nil
}

func (i impl) UpdateApprover(id string, updMap map[string]interface{}) error {
	return i.db.
		Model(&dbmodels.TaskApprover{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) List(filter taskapimodels.TaskFilter, now time.Time) (list []dbmodels.Task, rowCount int64, err error) {
	tx := i.db.Model(&dbmodels.Task{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != "" {
		tx = tx.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.CreatorID != "" {
		tx = tx.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.DepartmentID != "" {
		tx = tx.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.ApprovalType != "" {
		tx = tx.Where("approval_type = ?", filter.ApprovalType)
	}
	if filter.OnlyOverdue {
		tx = tx.Where("due_date < ?", now).Where("status not in (?)", terminalStatuses)
	}
	if filter.Search != "" {
		tx = tx.Where("lower(title) like ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	_, limit := filter.GetPage()
	list = []dbmodels.Task{}
	err = tx.
		Preload("Creator").
		Preload("Assignee").
		Preload("Approvers", orderApprovers).
		Order("created_at desc, id").
		Limit(limit).
		Offset(filter.Offset()).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) Delete(id string) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{
			&dbmodels.TaskApprover{},
			&dbmodels.TaskNode{},
			&dbmodels.Comment{},
			&dbmodels.Attachment{},
			&dbmodels.TaskHistory{},
		} {
			if err := tx.Where("task_id = ?", id).Delete(child).Error; err != nil {
				return errors.Wrapf(err, "unable to delete %T", child)
			}
		}
		res := tx.Delete(&dbmodels.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(models.ErrNotFound, "task %s", id)
		}
		return nil
	})
}

func (i impl) ListOverdue(now time.Time, limit int) (list []dbmodels.Task, err error) {
	list = []dbmodels.Task{}
	err = i.db.
		Where("due_date < ?", now).
		Where("overdue_notified_at IS NULL").
		Where("status not in (?)", terminalStatuses).
		Order("due_date").
		Limit(limit).
		Find(&list).
		Error
	return list, err
}

func (i impl) CountByStatus() (map[models.TaskStatus]int64, error) {
	type row struct {
		Status models.TaskStatus
		Cnt    int64
	}
	rows := []row{}
	err := i.db.
		Model(&dbmodels.Task{}).
		Select("status, count(*) as cnt").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	result := make(map[models.TaskStatus]int64, len(models.AllTaskStatuses))
	for _, status := range models.AllTaskStatuses {
		result[status] = 0
	}
	for _, r := range rows {
		result[r.Status] = r.Cnt
	}
	return result, nil
}

func (i impl) CountAssigned(userID string, statuses []models.TaskStatus) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.Task{}).
		Where("assignee_id = ?", userID).
		Where("status in (?)", statuses).
		Count(&count).
		Error
	return count, err
}

func (i impl) Recent(userID string, limit int) (list []dbmodels.Task, err error) {
	list = []dbmodels.Task{}
	err = i.db.
		Preload("Creator").
		Preload("Assignee").
		Where("creator_id = ? or assignee_id = ?", userID, userID).
		Order("created_at desc, id").
		Limit(limit).
		Find(&list).
		Error
	return list, err
}
