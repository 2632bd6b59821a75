package fiberlog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Config is config for middleware
type Config struct {
	Logger *logrus.Logger
	Tags   []string
	// UserID extracts the acting user for TagUserID.
	UserID func(c *fiber.Ctx) string
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
	},
}
