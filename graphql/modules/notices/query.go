// Package notices defines the GraphQL queries for notices and inventory facts.
package notices

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/util"
)

// GetQueryFields returns the notice queries to be mounted in the root schema.
func GetQueryFields(svc *services.NoticeService, defaults model.DisplayContext) graphql.Fields {
	contextArgs := graphql.FieldConfigArgument{
		"outdir":     &graphql.ArgumentConfig{Type: graphql.String},
		"cliVersion": &graphql.ArgumentConfig{Type: graphql.String},
	}

	return graphql.Fields{
		"notices": &graphql.Field{
			Type: graphql.NewList(NoticeType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return svc.DataSource.Fetch(resolveContext(p))
			},
		},
		"applicableNotices": &graphql.Field{
			Type: graphql.NewList(NoticeType),
			Args: graphql.FieldConfigArgument{
				"outdir":       contextArgs["outdir"],
				"cliVersion":   contextArgs["cliVersion"],
				"acknowledged": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return svc.ApplicableNotices(resolveContext(p), displayContext(p.Args, defaults)), nil
			},
		},
		"inventory": &graphql.Field{
			Type: graphql.NewList(InventoryFactType),
			Args: contextArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				dc := displayContext(p.Args, defaults)
				return svc.Scanner.Scan(dc.Outdir, dc.ToolVersion), nil
			},
		},
	}
}

func displayContext(args map[string]interface{}, defaults model.DisplayContext) model.DisplayContext {
	dc := model.DisplayContext{
		Outdir:                   defaults.Outdir,
		ToolVersion:              defaults.ToolVersion,
		AcknowledgedIssueNumbers: defaults.AcknowledgedIssueNumbers,
	}
	if outdir, ok := args["outdir"].(string); ok {
		dc.Outdir = util.GetStringOrDefault(outdir, defaults.Outdir)
	}
	if version, ok := args["cliVersion"].(string); ok {
		dc.ToolVersion = util.GetStringOrDefault(version, defaults.ToolVersion)
	}
	if acks, ok := args["acknowledged"].([]interface{}); ok {
		var extra []int
		for _, a := range acks {
			if n, ok := a.(int); ok {
				extra = append(extra, n)
			}
		}
		dc.AcknowledgedIssueNumbers = util.MergeInts(defaults.AcknowledgedIssueNumbers, extra...)
	}
	return dc
}

func resolveContext(p graphql.ResolveParams) context.Context {
	if p.Context == nil {
		return context.Background()
	}
	return p.Context
}
