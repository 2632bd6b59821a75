package usershandler

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	userstore "task-approval-backend/lib/users/store"
	"task-approval-backend/lib/utils/helpers"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	usersapimodels "task-approval-backend/models/api/users"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(request usersapimodels.UserData) (id string, err error)
	Update(id string, request usersapimodels.UserData) error
	Deactivate(actorID, id string) error
	Get(id string) (usersapimodels.UserView, error)
	List(filter usersapimodels.UserFilter) (list []usersapimodels.UserView, rowCount int64, err error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(tx *gorm.DB) Provider {
	instance := impl{
		tx:    tx,
		store: userstore.NewInstance(tx),
	}
	initchecker.CheckInit(
		"store", instance.store,
	)
	return instance
}

type impl struct {
	tx    *gorm.DB
	store userstore.Provider
}

func (i impl) Create(request usersapimodels.UserData) (id string, err error) {
	departmentID, err := i.checkDepartment(request.DepartmentID)
	if err != nil {
		return "", err
	}
	rec := dbmodels.User{
		Name:         strings.TrimSpace(request.Name),
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		Role:         models.UserRole(strings.ToUpper(strings.TrimSpace(string(request.Role)))),
		DepartmentID: departmentID,
		IsActive:     true,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", err
	}
	log.WithField("user_id", id).
		WithField("role", rec.Role).
		Info("user created")
	return id, nil
}

func (i impl) Update(id string, request usersapimodels.UserData) error {
	departmentID, err := i.checkDepartment(request.DepartmentID)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"name":          strings.TrimSpace(request.Name),
		"email":         strings.ToLower(strings.TrimSpace(request.Email)),
		"role":          strings.ToUpper(strings.TrimSpace(string(request.Role))),
		"department_id": departmentID,
	}
	err = i.store.Update(id, updMap)
	if err != nil {
		return err
	}
	log.WithField("user_id", id).Info("user updated")
	return nil
}

// Deactivate keeps the user's past decisions and approver rows, the user only stops resolving as an approver.
func (i impl) Deactivate(actorID, id string) error {
	if actorID == id {
		return errors.Wrap(models.ErrValidation, "unable to deactivate yourself")
	}
	err := i.store.Update(id, map[string]interface{}{"is_active": false})
	if err != nil {
		return err
	}
	log.WithField("user_id", id).
		WithField("actor_id", actorID).
		Info("user deactivated")
	return nil
}

func (i impl) Get(id string) (usersapimodels.UserView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return usersapimodels.UserView{}, err
	}
	if rec == nil {
		return usersapimodels.UserView{}, errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	return usersapimodels.UserConvert(*rec), nil
}

func (i impl) List(filter usersapimodels.UserFilter) (list []usersapimodels.UserView, rowCount int64, err error) {
	recList, rowCount, err := i.store.List(filter)
	if err != nil {
		return nil, 0, err
	}
	list = make([]usersapimodels.UserView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, usersapimodels.UserConvert(rec))
	}
	return list, rowCount, nil
}

func (i impl) checkDepartment(departmentID string) (*string, error) {
	id := helpers.EmptyToNil(departmentID)
	if id == nil {
		return nil, nil
	}
	var count int64
	err := i.tx.Model(&dbmodels.Department{}).Where("id = ?", *id).Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.Wrapf(models.ErrNotFound, "department %s", *id)
	}
	return id, nil
}
