package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relief_resource_sync/app"
	"relief_resource_sync/config"
	"relief_resource_sync/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	if err := application.Engine.Start(context.Background()); err != nil {
		log.Fatalf("start sync engine: %v", err)
	}

	r := application.Router

	// Health & metrics
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	r.GET("/metrics", func(c *app.Ctx) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	routes.RegisterRoutes(r, application)

	port := application.Config.Port
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
