package initializers

import (
	log "github.com/sirupsen/logrus"
	"task-approval-backend/config"
	"task-approval-backend/fiberlog"
	"task-approval-backend/middleware"
)

func jsonFormatter() *log.JSONFormatter {
	return &log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	}
}

// InitLogger sets up the global logger and returns the request logging config.
func InitLogger() *fiberlog.Config {
	level, err := log.ParseLevel(config.Conf.App.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetFormatter(jsonFormatter())
	log.SetLevel(level)
	if err != nil {
		log.WithError(err).Warn("unknown log level, info is used")
	}

	requestLogger := log.New()
	requestLogger.SetFormatter(jsonFormatter())
	requestLogger.SetLevel(level)
	return &fiberlog.Config{
		Logger: requestLogger,
		Tags: []string{
			fiberlog.TagMethod,
			fiberlog.TagPath,
			fiberlog.TagStatus,
			fiberlog.TagLatency,
			fiberlog.TagUserID,
			fiberlog.RequestID,
		},
		UserID: middleware.GetUserID,
	}
}
