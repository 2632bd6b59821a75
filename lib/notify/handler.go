package notify

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	pushdatastore "task-approval-backend/lib/notify/push-data-store"
	"task-approval-backend/lib/smtp"
	userstore "task-approval-backend/lib/users/store"
	"task-approval-backend/lib/utils/helpers"
	initchecker "task-approval-backend/lib/utils/init-checker"
	connectionhub "task-approval-backend/lib/ws/hub/connection-hub"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
	wsmodels "task-approval-backend/models/ws"
)

// Event is one notification for a set of users. Email additionally mails it to them.
type Event struct {
	UserIDs []string
	Data    models.NotificationData
	Email   bool
}

type Provider interface {
	Publish(events ...Event)
}

var Instance Provider

func NewHandler(tx *gorm.DB) {
	Instance = NewInstance(connectionhub.Instance, pushdatastore.NewInstance(tx), userstore.NewInstance(tx), smtp.Instance)
}

func NewInstance(hub connectionhub.Provider, store pushdatastore.Provider, users userstore.Provider, mailer smtp.Provider) Provider {
	instance := impl{
		hub:    hub,
		store:  store,
		users:  users,
		mailer: mailer,
	}
	initchecker.CheckInit(
		"hub", instance.hub,
		"store", instance.store,
		"users", instance.users,
	)
	return instance
}

type impl struct {
	hub    connectionhub.Provider
	store  pushdatastore.Provider
	users  userstore.Provider
	mailer smtp.Provider
}

func (i impl) Publish(events ...Event) {
	now := time.Now()
	for _, event := range events {
		logger := log.WithField("task_id", event.Data.TaskID).
			WithField("event_code", event.Data.Code)
		recipients := helpers.Unique(event.UserIDs)
		for _, userID := range recipients {
			if userID == models.SystemUser {
				continue
			}
			msg := wsmodels.ServerMessage{
				ToUserID: userID,
				Time:     connectionhub.FormatTime(now),
				Code:     string(event.Data.Code),
				TaskID:   event.Data.TaskID,
				Status:   string(event.Data.Status),
				Title:    event.Data.Title,
				Msg:      event.Data.Msg,
			}
			if i.hub.SendMessage(msg) {
				continue
			}
			err := i.store.Create(dbmodels.PushData{
				UserID: userID,
				Code:   event.Data.Code,
				TaskID: event.Data.TaskID,
				Status: string(event.Data.Status),
				Msg:    event.Data.Msg,
				Title:  event.Data.Title,
			})
			if err != nil {
				logger.WithError(err).WithField("user_id", userID).Error("unable to store event for offline user")
			}
		}
		if event.Email {
			i.sendEmails(logger, recipients, event.Data)
		}
	}
}

func (i impl) sendEmails(logger *log.Entry, userIDs []string, data models.NotificationData) {
	if i.mailer == nil || !i.mailer.IsConfigured() {
		return
	}
	users, err := i.users.GetByIDs(userIDs)
	if err != nil {
		logger.WithError(err).Error("unable to load email recipients")
		return
	}
	for _, user := range users {
		if !user.IsActive || user.Email == "" {
			continue
		}
		go func(to string) {
			if err := i.mailer.SendEMail(to, data.Title, data.Msg); err != nil {
				logger.WithError(err).WithField("recipient", to).Warn("notification email not delivered")
			}
		}(user.Email)
	}
}
