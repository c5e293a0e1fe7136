// Package services provides the notice filter and formatter that ties the
// data sources, the inventory scanner and the matcher together.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ortelius/pdvd-notices/internal/datasource"
	"github.com/ortelius/pdvd-notices/internal/inventory"
	"github.com/ortelius/pdvd-notices/internal/matcher"
	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OverviewWidth is the column at which notice overviews are wrapped
const OverviewWidth = 60

// DefaultIssueURL is the prefix for the "More information at" link
const DefaultIssueURL = "https://github.com/aws/aws-cdk/issues"

// AcknowledgeCommand is the command operators run to hide a notice
const AcknowledgeCommand = "pdvd-notices acknowledge"

const overviewLabel = "Overview: "

// NoticeService decides which notices apply to a run and renders them.
type NoticeService struct {
	DataSource datasource.NoticeDataSource
	Scanner    *inventory.Scanner
	Matcher    *matcher.Matcher
	IssueURL   string

	logger *zap.Logger
}

// NewNoticeService creates a NoticeService with the default matcher and issue link.
func NewNoticeService(ds datasource.NoticeDataSource, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{
		DataSource: ds,
		Scanner:    inventory.NewScanner(logger),
		Matcher:    matcher.New(),
		IssueURL:   DefaultIssueURL,
		logger:     logger,
	}
}

// ApplicableNotices fetches the catalog and scans the inventory concurrently, then keeps,
// in catalog order, the notices that match the inventory and were not acknowledged.
// A notice with a malformed version range is skipped on its own.
func (s *NoticeService) ApplicableNotices(ctx context.Context, dc model.DisplayContext) []model.Notice {
	var (
		catalog []model.Notice
		facts   []model.InventoryFact
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notices, err := s.DataSource.Fetch(gCtx)
		if err != nil {
			s.logger.Sugar().Warnf("Failed to fetch notices: %v", err)
			return nil
		}
		catalog = notices
		return nil
	})
	g.Go(func() error {
		facts = s.Scanner.Scan(dc.Outdir, dc.ToolVersion)
		return nil
	})
	_ = g.Wait()

	return s.Filter(catalog, facts, dc)
}

// Filter applies the matching rules and the acknowledgements in dc to an already fetched catalog.
func (s *NoticeService) Filter(catalog []model.Notice, facts []model.InventoryFact, dc model.DisplayContext) []model.Notice {
	applicable := []model.Notice{}
	for _, notice := range catalog {
		if dc.IsAcknowledged(notice.IssueNumber) {
			continue
		}

		ok, err := s.Matcher.IsApplicable(notice, facts)
		if err != nil {
			s.logger.Sugar().Warnf("Skipping notice %d: %v", notice.IssueNumber, err)
			continue
		}
		if ok {
			applicable = append(applicable, notice)
		}
	}
	return applicable
}

// GenerateMessage returns the report for the applicable notices, or "" when there are none.
func (s *NoticeService) GenerateMessage(ctx context.Context, dc model.DisplayContext) string {
	return s.RenderMessage(s.ApplicableNotices(ctx, dc))
}

// RenderMessage renders a header, every notice block and the acknowledgement instructions
func (s *NoticeService) RenderMessage(notices []model.Notice) string {
	if len(notices) == 0 {
		return ""
	}

	parts := []string{"\nNOTICES"}
	parts = append(parts, s.FormatNotices(notices)...)
	parts = append(parts, fmt.Sprintf(
		"If you don’t want to see a notice anymore, use \"%s <id>\". For example, \"%s %d\".",
		AcknowledgeCommand, AcknowledgeCommand, notices[0].IssueNumber))
	return strings.Join(parts, "\n\n")
}

// FormatNotices renders one block per notice, preserving order
func (s *NoticeService) FormatNotices(notices []model.Notice) []string {
	blocks := make([]string, 0, len(notices))
	for _, n := range notices {
		blocks = append(blocks, FormatNotice(n, s.issueURL()))
	}
	return blocks
}

// FormatNotices renders notices with the default issue link
func FormatNotices(notices []model.Notice) []string {
	return (&NoticeService{}).FormatNotices(notices)
}

func (s *NoticeService) issueURL() string {
	return strings.TrimSuffix(util.GetStringOrDefault(s.IssueURL, DefaultIssueURL), "/")
}

// FormatNotice renders a single notice:
//
//	16603	Toggling off auto_delete_objects for Bucket empties the bucket
//
//		Overview: If a stack is deployed with an S3 bucket with
//		          auto_delete_objects=True, ...
//
//		Affected versions: framework: <=2.15.0 >=2.0.0
//
//		More information at: https://github.com/aws/aws-cdk/issues/16603
func FormatNotice(n model.Notice, issueURL string) string {
	return strings.Join([]string{
		fmt.Sprintf("%d\t%s", n.IssueNumber, n.Title),
		formatOverview(n.Overview),
		"\tAffected versions: " + n.AffectedVersions(),
		fmt.Sprintf("\tMore information at: %s/%d", issueURL, n.IssueNumber),
	}, "\n\n") + "\n"
}

func formatOverview(text string) string {
	separator := "\n\t" + strings.Repeat(" ", len(overviewLabel))
	lines := util.WrapText(text, OverviewWidth)
	return "\t" + overviewLabel + strings.Join(lines, separator)
}
