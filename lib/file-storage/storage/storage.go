package filesdbstorage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	SaveFile(rec dbmodels.Attachment) (*dbmodels.Attachment, error)
	GetByID(taskID, id string) (*dbmodels.Attachment, error)
	List(taskID string) (list []dbmodels.Attachment, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) SaveFile(rec dbmodels.Attachment) (*dbmodels.Attachment, error) {
	err := i.db.
		Omit("User").
		Create(&rec).
		Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByID(taskID, id string) (*dbmodels.Attachment, error) {
	rec := dbmodels.Attachment{}
	err := i.db.
		Where("task_id = ?", taskID).
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

func (i impl) List(taskID string) (list []dbmodels.Attachment, err error) {
	list = []dbmodels.Attachment{}
	err = i.db.
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
