// Package notices defines the GraphQL types for notices and inventory facts.
package notices

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-notices/model"
)

// ComponentType represents an affected component of a notice.
var ComponentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Component",
	Fields: graphql.Fields{
		"name":    &graphql.Field{Type: graphql.String},
		"version": &graphql.Field{Type: graphql.String},
	},
})

// NoticeType represents a notice from the catalog.
var NoticeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Notice",
	Fields: graphql.Fields{
		"issueNumber":   &graphql.Field{Type: graphql.Int},
		"title":         &graphql.Field{Type: graphql.String},
		"overview":      &graphql.Field{Type: graphql.String},
		"schemaVersion": &graphql.Field{Type: graphql.String},
		"components":    &graphql.Field{Type: graphql.NewList(ComponentType)},
		"affectedVersions": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if n, ok := p.Source.(model.Notice); ok {
					return n.AffectedVersions(), nil
				}
				return nil, nil
			},
		},
	},
})

// InventoryFactType represents a fact discovered about the run.
var InventoryFactType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InventoryFact",
	Fields: graphql.Fields{
		"kind": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if f, ok := p.Source.(model.InventoryFact); ok {
					return f.Kind.String(), nil
				}
				return nil, nil
			},
		},
		"moduleName":   &graphql.Field{Type: graphql.String},
		"version":      &graphql.Field{Type: graphql.String},
		"constructFqn": &graphql.Field{Type: graphql.String},
		"purl": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if f, ok := p.Source.(model.InventoryFact); ok {
					return f.PURL(), nil
				}
				return nil, nil
			},
		},
	},
})
