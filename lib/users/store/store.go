package userstore

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"task-approval-backend/models"
	usersapimodels "task-approval-backend/models/api/users"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.User) (id string, err error)
	Update(id string, updMap map[string]interface{}) error
	GetByID(id string) (rec *dbmodels.User, err error)
	GetByIDs(ids []string) (list []dbmodels.User, err error)
	FindByEmail(email string) (rec *dbmodels.User, err error)
	List(filter usersapimodels.UserFilter) (list []dbmodels.User, rowCount int64, err error)
	ActiveByRole(role string) (list []dbmodels.User, err error)
	ActiveByDepartment(departmentID string) (list []dbmodels.User, err error)
	DepartmentManager(departmentID string, excludeUserIDs ...string) (rec *dbmodels.User, err error)
	DepartmentParentID(departmentID string) (parentID string, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.User) (id string, err error) {
	if err = rec.Validate(); err != nil {
		return "", err
	}
	exist, err := i.FindByEmail(rec.Email)
	if err != nil {
		return "", err
	}
	if exist != nil {
		return "", errors.Wrap(models.ErrValidation, "user with this email already exists")
	}
	err = i.db.Create(&rec).Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	if email, ok := updMap["email"]; ok {
		exist, err := i.FindByEmail(email.(string))
		if err != nil {
			return err
		}
		if exist != nil && exist.ID != id {
			return errors.Wrap(models.ErrValidation, "user with this email already exists")
		}
	}
	res := i.db.
		Model(&dbmodels.User{}).
		Where("id = ?", id).
		Updates(updMap)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	return nil
}

func (i impl) GetByID(id string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
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

func (i impl) GetByIDs(ids []string) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	if len(ids) == 0 {
		return list, nil
	}
	err = i.db.
		Where("id in (?)", ids).
		Find(&list).
		Error
	return list, err
}

func (i impl) FindByEmail(email string) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
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

func (i impl) List(filter usersapimodels.UserFilter) (list []dbmodels.User, rowCount int64, err error) {
	tx := i.db.Model(&dbmodels.User{})
	if filter.Role != "" {
		tx = tx.Where("role = ?", filter.Role)
	}
	if filter.DepartmentID != "" {
		tx = tx.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.OnlyActive {
		tx = tx.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		tx = tx.Where("lower(name) like ? or lower(email) like ?", search, search)
	}
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	_, limit := filter.GetPage()
	list = []dbmodels.User{}
	err = tx.
		Order("name").
		Limit(limit).
		Offset(filter.Offset()).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) ActiveByRole(role string) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	err = i.db.
		Where("role = ?", role).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&list).
		Error
	return list, err
}

func (i impl) ActiveByDepartment(departmentID string) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	err = i.db.
		Where("department_id = ?", departmentID).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&list).
		Error
	return list, err
}

// DepartmentManager returns the first active manager of the department or of the closest parent that has one.
func (i impl) DepartmentManager(departmentID string, excludeUserIDs ...string) (*dbmodels.User, error) {
	visited := map[string]bool{}
	for departmentID != "" && !visited[departmentID] {
		visited[departmentID] = true
		rec := dbmodels.User{}
		tx := i.db.
			Where("department_id = ?", departmentID).
			Where("role = ?", models.ManagerRole).
			Where("is_active = ?", true)
		if len(excludeUserIDs) > 0 {
			tx = tx.Where("id not in (?)", excludeUserIDs)
		}
		err := tx.
			Order("created_at, id").
			First(&rec).
			Error
		if err == nil {
			return &rec, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		departmentID, err = i.DepartmentParentID(departmentID)
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// DepartmentParentID returns "" for a root or unknown department.
func (i impl) DepartmentParentID(departmentID string) (string, error) {
	department := dbmodels.Department{}
	err := i.db.Where("id = ?", departmentID).First(&department).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if department.ParentID == nil {
		return "", nil
	}
	return *department.ParentID, nil
}
