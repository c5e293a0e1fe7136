// Package api builds the Fiber application that serves the notices API.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/pdvd-notices/graphql"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/restapi"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(svc *services.NoticeService, defaults model.DisplayContext, accessLog bool) (*fiber.App, error) {
	schema, err := graphql.CreateSchema(svc, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL schema: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "pdvd-notices API v1.0",
		ReadTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	if accessLog {
		app.Use(logger.New())
	}

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	restapi.SetupRoutes(app, svc, defaults, schema)

	return app, nil
}
