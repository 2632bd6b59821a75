package initializers

import (
	"context"

	"task-approval-backend/config"
	"task-approval-backend/db"
	"task-approval-backend/fiberlog"
	approvalquery "task-approval-backend/lib/approval-query"
	approvaltemplate "task-approval-backend/lib/approval-template"
	"task-approval-backend/lib/dashboard"
	departmentprovider "task-approval-backend/lib/dicts/department"
	xlsexport "task-approval-backend/lib/export/xls"
	filestorage "task-approval-backend/lib/file-storage"
	"task-approval-backend/lib/notify"
	overdueworker "task-approval-backend/lib/overdue-worker"
	"task-approval-backend/lib/rbac"
	taskhandler "task-approval-backend/lib/task"
	taskcommenthandler "task-approval-backend/lib/task-comment"
	tasknodehandler "task-approval-backend/lib/task-node"
	usershandler "task-approval-backend/lib/users"
	"task-approval-backend/lib/workflow"
	connectionhub "task-approval-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	config.InitConfig()
	LoggerConfig = InitLogger()
	InitDBConnection()
	objects := InitS3(ctx)
	InitSmtp()
	InitLock(ctx)
	connectionhub.Init(db.DB)
	notify.NewHandler(db.DB)
	if objects != nil {
		filestorage.NewHandler(objects)
	}
	rbac.NewHandler()
	departmentprovider.NewHandler()
	usershandler.NewHandler()
	approvaltemplate.NewHandler()
	taskhandler.NewHandler()
	workflow.NewHandler()
	tasknodehandler.NewHandler()
	taskcommenthandler.NewHandler()
	approvalquery.NewHandler()
	dashboard.NewHandler()
	xlsexport.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// notifies assignees and creators about overdue tasks
	overdueworker.StartWorker(ctx)
}
