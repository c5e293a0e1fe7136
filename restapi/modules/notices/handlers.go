// Package notices implements the REST API handlers for notice operations.
package notices

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/util"
)

// InventoryResponse lists the facts gathered for a request
type InventoryResponse struct {
	Outdir string         `json:"outdir"`
	Facts  []InventoryRow `json:"facts"`
}

// InventoryRow is a single fact with its package URL
type InventoryRow struct {
	model.InventoryFact
	Kind string `json:"kind"`
	Purl string `json:"purl,omitempty"`
}

// ListNotices returns the full catalog as served by the data source
func ListNotices(svc *services.NoticeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notices, err := svc.DataSource.Fetch(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(model.NoticesResponse{Notices: notices})
	}
}

// ApplicableNotices returns the notices that apply to the requested outdir and cli version
func ApplicableNotices(svc *services.NoticeService, defaults model.DisplayContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dc, err := DisplayContextFromQuery(c, defaults)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(model.NoticesResponse{Notices: svc.ApplicableNotices(c.UserContext(), dc)})
	}
}

// Message returns the rendered notices report as plain text
func Message(svc *services.NoticeService, defaults model.DisplayContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dc, err := DisplayContextFromQuery(c, defaults)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		c.Type("txt", "utf-8")
		return c.SendString(svc.GenerateMessage(c.UserContext(), dc))
	}
}

// Inventory returns the facts the scanner finds for the requested outdir
func Inventory(svc *services.NoticeService, defaults model.DisplayContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dc, err := DisplayContextFromQuery(c, defaults)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		facts := svc.Scanner.Scan(dc.Outdir, dc.ToolVersion)
		rows := make([]InventoryRow, 0, len(facts))
		for _, f := range facts {
			rows = append(rows, InventoryRow{InventoryFact: f, Kind: f.Kind.String(), Purl: f.PURL()})
		}
		return c.JSON(InventoryResponse{Outdir: dc.Outdir, Facts: rows})
	}
}

// DisplayContextFromQuery reads outdir, cli_version and acknowledged from the query string
func DisplayContextFromQuery(c *fiber.Ctx, defaults model.DisplayContext) (model.DisplayContext, error) {
	dc := model.DisplayContext{
		Outdir:                   util.GetStringOrDefault(c.Query("outdir"), defaults.Outdir),
		ToolVersion:              util.GetStringOrDefault(c.Query("cli_version"), defaults.ToolVersion),
		AcknowledgedIssueNumbers: defaults.AcknowledgedIssueNumbers,
	}

	if raw := c.Query("acknowledged"); raw != "" {
		extra, err := util.ParseIntList(raw)
		if err != nil {
			return dc, fiber.NewError(fiber.StatusBadRequest, "acknowledged must be a comma separated list of issue numbers")
		}
		dc.AcknowledgedIssueNumbers = util.MergeInts(defaults.AcknowledgedIssueNumbers, extra...)
	}
	return dc, nil
}
