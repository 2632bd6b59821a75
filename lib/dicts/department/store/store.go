package store

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Department) (id string, err error)
	GetByID(id string) (rec *dbmodels.Department, err error)
	List() (list []dbmodels.Department, err error)
	Update(id string, updMap map[string]interface{}) error
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

func (i impl) Create(rec dbmodels.Department) (id string, err error) {
	err = rec.Validate()
	if err != nil {
		return "", err
	}
	err = i.isUnique(rec.ParentID, "", rec.Name)
	if err != nil {
		return "", err
	}
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Department, error) {
	rec := dbmodels.Department{}
	err := i.db.
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

func (i impl) List() (list []dbmodels.Department, err error) {
	list = []dbmodels.Department{}
	err = i.db.
		Order("name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	if name, ok := updMap["name"]; ok {
		rec, err := i.GetByID(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.Wrap(models.ErrNotFound, "department")
		}
		parentID := rec.ParentID
		if newParent, ok := updMap["parent_id"]; ok {
			parentID, _ = newParent.(*string)
		}
		err = i.isUnique(parentID, id, name.(string))
		if err != nil {
			return err
		}
	}
	return i.db.
		Model(&dbmodels.Department{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

// Delete moves children and members of the department one level up.
func (i impl) Delete(id string) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		rec := dbmodels.Department{}
		err := tx.Where("id = ?", id).First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(models.ErrNotFound, "department")
			}
			return err
		}
		err = tx.Model(&dbmodels.Department{}).
			Where("parent_id = ?", id).
			Update("parent_id", rec.ParentID).
			Error
		if err != nil {
			return errors.Wrap(err, "unable to move child departments")
		}
		err = tx.Model(&dbmodels.User{}).
			Where("department_id = ?", id).
			Update("department_id", rec.ParentID).
			Error
		if err != nil {
			return errors.Wrap(err, "unable to move department users")
		}
		err = tx.Model(&dbmodels.Task{}).
			Where("department_id = ?", id).
			Update("department_id", rec.ParentID).
			Error
		if err != nil {
			return errors.Wrap(err, "unable to move department tasks")
		}
		return tx.Delete(&dbmodels.Department{}, "id = ?", id).Error
	})
}

func (i impl) isUnique(parentID *string, selfID, name string) error {
	var rowCount int64
	tx := i.db.Model(dbmodels.Department{}).
		Where("name = ?", name)
	if parentID == nil {
		tx = tx.Where("parent_id IS NULL")
	} else {
		tx = tx.Where("parent_id = ?", *parentID)
	}
	if selfID != "" {
		tx = tx.Where("id <> ?", selfID)
	}
	err := tx.Count(&rowCount).Error
	if err != nil {
		return errors.Wrap(err, "unable to check department uniqueness")
	}
	if rowCount != 0 {
		return errors.Wrap(models.ErrValidation, "department already exists")
	}
	return nil
}
