package dashboardapimodels

import (
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
)

type DashboardView struct {
	TaskCounts          map[models.TaskStatus]int64 `json:"task_counts"`
	MyOpenTasks         int64                       `json:"my_open_tasks"`         // assigned to me and not terminal
	MyApprovals         int                         `json:"my_approvals"`          // stages waiting for my decision now
	MyUpcomingApprovals int                         `json:"my_upcoming_approvals"` // my pending stages behind other stages
	RecentTasks         []taskapimodels.TaskView    `json:"recent_tasks"`
}
