// Package api exposes the operational surface of the long-running process:
// liveness, loop status and Prometheus metrics.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roadpulse/roadpulse/internal/scheduler"
)

func New(sched *scheduler.Scheduler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "roadpulse",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "roadpulse",
		})
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(sched.Status())
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}
