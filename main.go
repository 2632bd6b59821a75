package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"task-approval-backend/config"
	apiv1 "task-approval-backend/controllers/v1"
	"task-approval-backend/controllers/v1/dict"
	"task-approval-backend/fiberlog"
	"task-approval-backend/initializers"
	"task-approval-backend/lib/ws"
	"task-approval-backend/middleware"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	initializers.InitAllServices(ctx)

	bodyLimit := config.Conf.App.BodyLimitMB * 1024 * 1024
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})
	app.Use(fiberRecover.New())
	app.Use(middleware.WithBodyLimit(int64(bodyLimit)))

	if _, err := os.Stat(config.Conf.App.SwaggerPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			Path:     "/swagger",
			FilePath: config.Conf.App.SwaggerPath,
		}))
	} else {
		log.WithField("path", config.Conf.App.SwaggerPath).Warn("swagger file not found, swagger ui is disabled")
	}

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*initializers.LoggerConfig))
	if config.Conf.App.ErrNotifyURL != "" {
		apiV1.Use(middleware.ErrNotify(config.Conf.App.ErrNotifyURL))
	}
	apiV1.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, PUT",
	}))
	app.Mount("/api/v1", apiV1)

	//change feed
	feed := apiV1.Group("/ws", middleware.AuthorizationRequired())
	ws.InitWs(feed)

	apiV1.Use(middleware.AuthorizationRequired())
	apiV1.Use(middleware.RbacMiddleware())
	apiv1.InitTaskApiRouters(apiV1)
	apiv1.InitTaskCommentApiRouters(apiV1)
	apiv1.InitTaskAttachmentApiRouters(apiV1)
	apiv1.InitApprovalApiRouters(apiV1)
	apiv1.InitApprovalTemplateApiRouters(apiV1)
	apiv1.InitUserApiRouters(apiV1)
	apiv1.InitDashboardApiRouters(apiV1)

	//dict
	dicts := fiber.New()
	apiV1.Mount("/dict", dicts)
	dict.InitDepartmentDictApiRouters(dicts)

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-c
		log.Info("gracefully shutting down...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("error on graceful shutdown")
		}
		log.Info("gracefully shutting down finished")
	}()

	// run HTTP server
	if err := app.Listen(fmt.Sprintf("%s:%d", config.Conf.App.ListenAddr, config.Conf.App.Port)); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
	log.Info("HTTP server successfully stopped")
}
