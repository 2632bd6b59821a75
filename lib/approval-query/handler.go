package approvalquery

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	approvalquerystore "task-approval-backend/lib/approval-query/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	approvalapimodels "task-approval-backend/models/api/approval"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	MyApprovals(userID string) ([]approvalapimodels.ApprovalView, error)
	PendingApprovals(actor models.Actor, role string) ([]approvalapimodels.ApprovalView, error)
	ApprovalHistory(userID string) ([]approvalapimodels.ApprovalView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(DB *gorm.DB) Provider {
	instance := impl{db: DB}
	initchecker.CheckInit("db", instance.db)
	return instance
}

type impl struct {
	db *gorm.DB
}

// snapshot runs query in one read-only transaction so rows and preloaded tasks agree.
func (i impl) snapshot(query func(store approvalquerystore.Provider) ([]dbmodels.TaskApprover, error)) ([]approvalapimodels.ApprovalView, error) {
	var list []dbmodels.TaskApprover
	err := i.db.Transaction(func(tx *gorm.DB) (err error) {
		list, err = query(approvalquerystore.NewInstance(tx))
		return err
	}, db.SnapshotTxOptions(i.db))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result := make([]approvalapimodels.ApprovalView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.ApprovalConvert(rec, now))
	}
	return result, nil
}

func (i impl) MyApprovals(userID string) ([]approvalapimodels.ApprovalView, error) {
	result, err := i.snapshot(func(store approvalquerystore.Provider) ([]dbmodels.TaskApprover, error) {
		return store.PendingByUser(userID)
	})
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("unable to load my approvals")
	}
	return result, err
}

func (i impl) PendingApprovals(actor models.Actor, role string) ([]approvalapimodels.ApprovalView, error) {
	if !actor.Role.IsElevated() {
		return nil, errors.Wrap(models.ErrUnauthorized, "pending approvals are available to administrators and managers")
	}
	result, err := i.snapshot(func(store approvalquerystore.Provider) ([]dbmodels.TaskApprover, error) {
		return store.PendingByRole(role)
	})
	if err != nil {
		log.WithField("user_id", actor.UserID).WithField("role", role).WithError(err).Error("unable to load pending approvals")
	}
	return result, err
}

func (i impl) ApprovalHistory(userID string) ([]approvalapimodels.ApprovalView, error) {
	result, err := i.snapshot(func(store approvalquerystore.Provider) ([]dbmodels.TaskApprover, error) {
		return store.HistoryByUser(userID)
	})
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("unable to load approval history")
	}
	return result, err
}
