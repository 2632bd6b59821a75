package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	dbmodels "task-approval-backend/models/db"
)

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&dbmodels.Department{},
		&dbmodels.User{},
		&dbmodels.ApprovalTemplate{},
		&dbmodels.ApprovalTemplateStage{},
		&dbmodels.Task{},
		&dbmodels.TaskApprover{},
		&dbmodels.TaskNode{},
		&dbmodels.Comment{},
		&dbmodels.Attachment{},
		&dbmodels.TaskHistory{},
		&dbmodels.PushData{},
	}
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info("running migrations")
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "unable to migrate %T", model)
		}
	}
	log.Info("migrations done")
	return nil
}
