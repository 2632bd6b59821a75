package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type errNotification struct {
	Code      int    `json:"code"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	UserID    string `json:"user_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

var notifyClient = &http.Client{Timeout: 5 * time.Second}

// ErrNotify posts every 5xx response to the webhook at addr.
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}
		var body struct {
			Message string `json:"message"`
		}
		if unmErr := json.Unmarshal(c.Response().Body(), &body); unmErr != nil || body.Message == "" {
			body.Message = string(c.Response().Body())
		}
		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		payload, marshalErr := json.Marshal(errNotification{
			Code:      statusCode,
			Method:    c.Method(),
			Path:      path,
			UserID:    GetUserID(c),
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
			Error:     body.Message,
		})
		if marshalErr != nil {
			log.WithError(marshalErr).Warn("unable to encode error notification")
			return err
		}
		go func() {
			resp, reqErr := notifyClient.Post(addr, fiber.MIMEApplicationJSON, bytes.NewReader(payload))
			if reqErr != nil {
				log.WithError(reqErr).Warn("unable to send error notification")
				return
			}
			_ = resp.Body.Close()
		}()
		return err
	}
}
