// Package graphql assembles the GraphQL schema served by pdvd-notices.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-notices/graphql/modules/notices"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
)

// CreateSchema builds the root query from the notice module
func CreateSchema(svc *services.NoticeService, defaults model.DisplayContext) (graphql.Schema, error) {
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: notices.GetQueryFields(svc, defaults),
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}
