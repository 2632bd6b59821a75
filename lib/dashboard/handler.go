package dashboard

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	approvalquery "task-approval-backend/lib/approval-query"
	taskstore "task-approval-backend/lib/task/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	dashboardapimodels "task-approval-backend/models/api/dashboard"
	taskapimodels "task-approval-backend/models/api/task"
)

const recentLimit = 10

var openStatuses = []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusPendingApproval}

type Provider interface {
	Get(actor models.Actor) (dashboardapimodels.DashboardView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(tx *gorm.DB) Provider {
	instance := impl{
		taskStore: taskstore.NewInstance(tx),
		approvals: approvalquery.NewHandlerWithDB(tx),
	}
	initchecker.CheckInit(
		"taskStore", instance.taskStore,
		"approvals", instance.approvals,
	)
	return instance
}

type impl struct {
	taskStore taskstore.Provider
	approvals approvalquery.Provider
}

func (i impl) Get(actor models.Actor) (dashboardapimodels.DashboardView, error) {
	logger := log.WithField("user_id", actor.UserID)
	counts, err := i.taskStore.CountByStatus()
	if err != nil {
		logger.WithError(err).Error("unable to count tasks")
		return dashboardapimodels.DashboardView{}, err
	}
	openTasks, err := i.taskStore.CountAssigned(actor.UserID, openStatuses)
	if err != nil {
		return dashboardapimodels.DashboardView{}, err
	}
	approvals, err := i.approvals.MyApprovals(actor.UserID)
	if err != nil {
		return dashboardapimodels.DashboardView{}, err
	}
	recent, err := i.taskStore.Recent(actor.UserID, recentLimit)
	if err != nil {
		return dashboardapimodels.DashboardView{}, err
	}
	result := dashboardapimodels.DashboardView{
		TaskCounts:  counts,
		MyOpenTasks: openTasks,
		RecentTasks: make([]taskapimodels.TaskView, 0, len(recent)),
	}
	for _, approval := range approvals {
		if approval.IsActionable {
			result.MyApprovals++
		} else {
			result.MyUpcomingApprovals++
		}
	}
	now := time.Now()
	for _, rec := range recent {
		result.RecentTasks = append(result.RecentTasks, taskapimodels.TaskConvert(rec, now))
	}
	return result, nil
}
