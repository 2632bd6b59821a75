package approvaltemplatestore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.ApprovalTemplate) (id string, err error)
	Update(rec dbmodels.ApprovalTemplate) error
	GetByID(id string) (rec *dbmodels.ApprovalTemplate, err error)
	List(onlyActive bool, page, limit int) (list []dbmodels.ApprovalTemplate, rowCount int64, err error)
	Delete(id string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalTemplate) (id string, err error) {
	if err = i.isUnique("", rec.Name); err != nil {
		return "", err
	}
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Update replaces the template stages. Task approvers built from the template earlier are separate rows and stay as they are.
func (i impl) Update(rec dbmodels.ApprovalTemplate) error {
	if err := i.isUnique(rec.ID, rec.Name); err != nil {
		return err
	}
	return i.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&dbmodels.ApprovalTemplate{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"name":      rec.Name,
				"condition": rec.Condition,
				"is_active": rec.IsActive,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(models.ErrTemplateNotFound, "template %s", rec.ID)
		}
		err := tx.Where("template_id = ?", rec.ID).Delete(&dbmodels.ApprovalTemplateStage{}).Error
		if err != nil {
			return err
		}
		for idx := range rec.Stages {
			rec.Stages[idx].ID = ""
			rec.Stages[idx].TemplateID = rec.ID
		}
		if len(rec.Stages) == 0 {
			return nil
		}
		return tx.Create(&rec.Stages).Error
	})
}

func (i impl) GetByID(id string) (*dbmodels.ApprovalTemplate, error) {
	rec := dbmodels.ApprovalTemplate{}
	err := i.db.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("level_order")
		}).
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

func (i impl) List(onlyActive bool, page, limit int) (list []dbmodels.ApprovalTemplate, rowCount int64, err error) {
	tx := i.db.Model(&dbmodels.ApprovalTemplate{})
	if onlyActive {
		tx = tx.Where("is_active = ?", true)
	}
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	list = []dbmodels.ApprovalTemplate{}
	err = tx.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("level_order")
		}).
		Order("name").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) Delete(id string) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("template_id = ?", id).Delete(&dbmodels.ApprovalTemplateStage{}).Error
		if err != nil {
			return err
		}
		res := tx.Delete(&dbmodels.ApprovalTemplate{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(models.ErrTemplateNotFound, "template %s", id)
		}
		return nil
	})
}

func (i impl) isUnique(selfID, name string) error {
	var rowCount int64
	tx := i.db.Model(&dbmodels.ApprovalTemplate{}).Where("name = ?", name)
	if selfID != "" {
		tx = tx.Where("id <> ?", selfID)
	}
	if err := tx.Count(&rowCount).Error; err != nil {
		return errors.Wrap(err, "unable to check template uniqueness")
	}
	if rowCount != 0 {
		return errors.Wrap(models.ErrValidation, "template with this name already exists")
	}
	return nil
}
