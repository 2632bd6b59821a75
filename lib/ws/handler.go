package ws

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	wsclient "task-approval-backend/lib/ws/client"
	connectionhub "task-approval-backend/lib/ws/hub/connection-hub"
	"task-approval-backend/middleware"
)

func InitWs(app fiber.Router) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		ctx.Locals("userID", middleware.GetUserID(ctx))
		return ctx.Next()
	})
	app.Get("/", websocket.New(feedHandler))
}

// @Summary Task change feed
// @Tags Websocket
// @Description Events about tasks the user takes part in. Undelivered events are sent on connect.
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 403
// @Failure 500
// @router /api/v1/ws [get]
func feedHandler(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		_ = c.Close()
		return
	}
	client := wsclient.NewClient(userID, c)
	connectionhub.Instance.AddClient(userID, c)
	defer connectionhub.Instance.DeleteClient(userID, c)
	client.Dispatch()
}
