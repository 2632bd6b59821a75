package approvaltemplate

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	approvaltemplatestore "task-approval-backend/lib/approval-template/store"
	userstore "task-approval-backend/lib/users/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	approvalapimodels "task-approval-backend/models/api/approval"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(request approvalapimodels.TemplateData) (id string, err error)
	Update(id string, request approvalapimodels.TemplateData) error
	Get(id string) (approvalapimodels.TemplateView, error)
	List(filter approvalapimodels.TemplateFilter) (list []approvalapimodels.TemplateView, rowCount int64, err error)
	Delete(id string) error
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(tx *gorm.DB) Provider {
	instance := impl{
		store:     approvaltemplatestore.NewInstance(tx),
		userStore: userstore.NewInstance(tx),
	}
	initchecker.CheckInit(
		"store", instance.store,
		"userStore", instance.userStore,
	)
	return instance
}

type impl struct {
	store     approvaltemplatestore.Provider
	userStore userstore.Provider
}

func (i impl) Create(request approvalapimodels.TemplateData) (id string, err error) {
	rec, err := i.toRecord(request)
	if err != nil {
		return "", err
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", err
	}
	log.WithField("template_id", id).
		WithField("stages", len(rec.Stages)).
		Info("approval template created")
	return id, nil
}

func (i impl) Update(id string, request approvalapimodels.TemplateData) error {
	rec, err := i.toRecord(request)
	if err != nil {
		return err
	}
	rec.ID = id
	err = i.store.Update(rec)
	if err != nil {
		return err
	}
	log.WithField("template_id", id).Info("approval template updated")
	return nil
}

func (i impl) Get(id string) (approvalapimodels.TemplateView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return approvalapimodels.TemplateView{}, err
	}
	if rec == nil {
		return approvalapimodels.TemplateView{}, errors.Wrapf(models.ErrTemplateNotFound, "template %s", id)
	}
	return approvalapimodels.TemplateConvert(*rec), nil
}

func (i impl) List(filter approvalapimodels.TemplateFilter) (list []approvalapimodels.TemplateView, rowCount int64, err error) {
	page, limit := filter.GetPage()
	recList, rowCount, err := i.store.List(filter.OnlyActive, page, limit)
	if err != nil {
		return nil, 0, err
	}
	list = make([]approvalapimodels.TemplateView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, approvalapimodels.TemplateConvert(rec))
	}
	return list, rowCount, nil
}

func (i impl) Delete(id string) error {
	if err := i.store.Delete(id); err != nil {
		return err
	}
	log.WithField("template_id", id).Info("approval template deleted")
	return nil
}

func (i impl) toRecord(request approvalapimodels.TemplateData) (dbmodels.ApprovalTemplate, error) {
	if err := request.Validate(); err != nil {
		return dbmodels.ApprovalTemplate{}, err
	}
	rec := dbmodels.ApprovalTemplate{
		Name:      strings.TrimSpace(request.Name),
		Condition: approvalapimodels.ConditionToJSON(request.Condition),
		IsActive:  request.IsActive,
		Stages:    make([]dbmodels.ApprovalTemplateStage, 0, len(request.Stages)),
	}
	for _, stage := range request.Stages {
		value := strings.TrimSpace(stage.ApproverValue)
		if stage.ApproverType == models.ApproverTypeUser {
			user, err := i.userStore.GetByID(value)
			if err != nil {
				return dbmodels.ApprovalTemplate{}, err
			}
			if user == nil {
				return dbmodels.ApprovalTemplate{}, errors.Wrapf(models.ErrNotFound, "stage %v: user %s", stage.LevelOrder, value)
			}
		}
		rec.Stages = append(rec.Stages, dbmodels.ApprovalTemplateStage{
			LevelOrder:    stage.LevelOrder,
			ApproverType:  stage.ApproverType,
			ApproverValue: value,
			Condition:     approvalapimodels.ConditionToJSON(stage.Condition),
		})
	}
	return rec, nil
}
