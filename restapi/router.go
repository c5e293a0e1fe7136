// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/restapi/modules/notices"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, svc *services.NoticeService, defaults model.DisplayContext, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	api.Post("/graphql", GraphQLHandler(schema))

	// Notice Routes
	noticeGroup := api.Group("/notices")
	noticeGroup.Get("/", notices.ListNotices(svc))
	noticeGroup.Get("/applicable", notices.ApplicableNotices(svc, defaults))
	noticeGroup.Get("/message", notices.Message(svc, defaults))

	api.Get("/inventory", notices.Inventory(svc, defaults))
}
