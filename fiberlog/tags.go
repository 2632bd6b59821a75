package fiberlog

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid       = "pid"
	TagLatency   = "latency"
	TagStatus    = "status"
	TagMethod    = "method"
	TagPath      = "path"
	TagURL       = "url"
	TagIP        = "ip"
	TagBody      = "body"
	TagResBody   = "resBody"
	TagUserID    = "user_id"
	RequestID    = "requestId"
	maxBodyToLog = 4096
)

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag returns the value logged under a tag.
type FuncTag func(c *fiber.Ctx, d *data) any

func getFuncTagMap(cfg Config, pid int) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid:     func(c *fiber.Ctx, d *data) any { return d.pid },
		TagLatency: func(c *fiber.Ctx, d *data) any { return d.end.Sub(d.start).String() },
		TagStatus:  func(c *fiber.Ctx, d *data) any { return c.Response().StatusCode() },
		TagMethod:  func(c *fiber.Ctx, d *data) any { return c.Method() },
		TagPath:    func(c *fiber.Ctx, d *data) any { return c.Path() },
		TagURL:     func(c *fiber.Ctx, d *data) any { return c.OriginalURL() },
		TagIP:      func(c *fiber.Ctx, d *data) any { return c.IP() },
		TagBody:    func(c *fiber.Ctx, d *data) any { return truncate(c.Body()) },
		TagResBody: func(c *fiber.Ctx, d *data) any { return truncate(c.Response().Body()) },
		RequestID: func(c *fiber.Ctx, d *data) any {
			return c.GetRespHeader(fiber.HeaderXRequestID)
		},
		TagUserID: func(c *fiber.Ctx, d *data) any {
			if cfg.UserID == nil {
				return ""
			}
			return cfg.UserID(c)
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func truncate(body []byte) string {
	if len(body) > maxBodyToLog {
		return string(body[:maxBodyToLog]) + "..."
	}
	return string(body)
}
