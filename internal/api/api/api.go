package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"github.com/avora-app/reservations/cmd/middleware"
	"github.com/avora-app/reservations/internal/service"
)

type Routers struct {
	Service    service.Service
	StaffToken string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	app.GET("/healthz", func(c *ginext.Context) {
		c.String(200, "ok")
	})

	apiGroup := app.Group("/v1")
	apiGroup.GET("/reservations", r.Service.ListReservations)
	apiGroup.POST("/reservations", r.Service.CreateReservation)

	adminGroup := app.Group("/v1/admin", middleware.StaffOnly(r.StaffToken))
	adminGroup.GET("/reservations", r.Service.ModerationList)
	adminGroup.PATCH("/reservations/:id/status", r.Service.UpdateStatus)
	adminGroup.POST("/reservations/status", r.Service.BulkUpdateStatus)

	return app
}
