package db

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"task-approval-backend/config"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

func InitPreload() {
	addAdmin()
}

// addAdmin seeds the first administrator, tokens for it are issued by the identity provider.
func addAdmin() {
	email := strings.ToLower(strings.TrimSpace(config.Conf.Admin.Email))
	if email == "" {
		log.Warn("administrator is not seeded, ADMIN_EMAIL is not set")
		return
	}
	var count int64
	err := DB.Model(&dbmodels.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		log.WithError(err).Error("unable to seed administrator")
		return
	}
	if count != 0 {
		return
	}
	rec := dbmodels.User{
		Name:     config.Conf.Admin.Name,
		Email:    email,
		Role:     models.AdminRole,
		IsActive: true,
	}
	if err = DB.Create(&rec).Error; err != nil {
		log.WithError(err).Error("unable to seed administrator")
		return
	}
	log.WithField("user_id", rec.ID).Info("administrator seeded")
}
