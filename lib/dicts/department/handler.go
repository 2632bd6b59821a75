package departmentprovider

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	"task-approval-backend/lib/dicts/department/store"
	"task-approval-backend/lib/utils/helpers"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	dictapimodels "task-approval-backend/models/api/dict"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(request dictapimodels.DepartmentData) (id string, err error)
	Update(id string, request dictapimodels.DepartmentData) error
	Get(id string) (item dictapimodels.DepartmentView, err error)
	Tree(request dictapimodels.DepartmentFind) (list []dictapimodels.DepartmentTreeItem, err error)
	Delete(id string) error
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(tx *gorm.DB) Provider {
	instance := impl{
		store: store.NewInstance(tx),
	}
	initchecker.CheckInit(
		"store", instance.store,
	)
	return instance
}

type impl struct {
	store store.Provider
}

func (i impl) Create(request dictapimodels.DepartmentData) (id string, err error) {
	parentID := helpers.EmptyToNil(request.ParentID)
	if err = i.checkParent("", parentID); err != nil {
		return "", err
	}
	rec := dbmodels.Department{
		Name:     strings.TrimSpace(request.Name),
		ParentID: parentID,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", err
	}
	log.
		WithField("department_name", rec.Name).
		WithField("rec_id", id).
		Info("department created")
	return id, nil
}

func (i impl) Update(id string, request dictapimodels.DepartmentData) error {
	logger := log.WithField("rec_id", id)
	parentID := helpers.EmptyToNil(request.ParentID)
	if err := i.checkParent(id, parentID); err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"name":      strings.TrimSpace(request.Name),
		"parent_id": parentID,
	}
	err := i.store.Update(id, updMap)
	if err != nil {
		return err
	}
	logger.Info("department updated")
	return nil
}

func (i impl) Get(id string) (item dictapimodels.DepartmentView, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return dictapimodels.DepartmentView{}, err
	}
	if rec == nil {
		return dictapimodels.DepartmentView{}, errors.Wrapf(models.ErrNotFound, "department %s", id)
	}
	return dictapimodels.DepartmentConvert(*rec), nil
}

func (i impl) Tree(request dictapimodels.DepartmentFind) (list []dictapimodels.DepartmentTreeItem, err error) {
	recList, err := i.store.List()
	if err != nil {
		return nil, err
	}
	tree := getChildren("", recList)
	if request.Name == "" {
		return tree, nil
	}
	result := make([]dictapimodels.DepartmentTreeItem, 0, len(tree))
	searchName := strings.ToLower(request.Name)
	for _, treeItem := range tree {
		found, subUnits := filterTree(searchName, treeItem)
		if found {
			treeItem.SubUnits = subUnits
			result = append(result, treeItem)
		}
	}
	return result, nil
}

func (i impl) Delete(id string) error {
	err := i.store.Delete(id)
	if err != nil {
		return err
	}
	log.WithField("rec_id", id).Info("department deleted")
	return nil
}

// checkParent walks up from the new parent and fails when it meets selfID.
func (i impl) checkParent(selfID string, parentID *string) error {
	visited := map[string]bool{}
	for current := parentID; current != nil; {
		if *current == selfID {
			return errors.Wrap(models.ErrValidation, "department parent link forms a cycle")
		}
		if visited[*current] {
			return nil
		}
		visited[*current] = true
		rec, err := i.store.GetByID(*current)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.Wrapf(models.ErrNotFound, "parent department %s", *current)
		}
		current = rec.ParentID
	}
	return nil
}

func getChildren(rootID string, recList []dbmodels.Department) []dictapimodels.DepartmentTreeItem {
	result := []dictapimodels.DepartmentTreeItem{}
	for _, rec := range recList {
		if helpers.PtrToStr(rec.ParentID) != rootID {
			continue
		}
		result = append(result, dictapimodels.DepartmentTreeItem{
			DepartmentView: dictapimodels.DepartmentConvert(rec),
			SubUnits:       getChildren(rec.ID, recList),
		})
	}
	return result
}

func filterTree(searchName string, item dictapimodels.DepartmentTreeItem) (bool, []dictapimodels.DepartmentTreeItem) {
	foundSubUnits := []dictapimodels.DepartmentTreeItem{}
	for _, subUnit := range item.SubUnits {
		found, foundList := filterTree(searchName, subUnit)
		if found {
			subUnit.SubUnits = foundList
			foundSubUnits = append(foundSubUnits, subUnit)
		}
	}
	if len(foundSubUnits) > 0 {
		return true, foundSubUnits
	}
	if strings.Contains(strings.ToLower(item.Name), searchName) {
		return true, []dictapimodels.DepartmentTreeItem{}
	}
	return false, []dictapimodels.DepartmentTreeItem{}
}
