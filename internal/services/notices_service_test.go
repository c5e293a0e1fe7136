package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ortelius/pdvd-notices/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDataSource struct {
	notices []model.Notice
	err     error
}

func (s *stubDataSource) Fetch(_ context.Context) ([]model.Notice, error) {
	return s.notices, s.err
}

var bucketNotice = model.Notice{
	Title:         "Toggling off auto_delete_objects for Bucket empties the bucket",
	IssueNumber:   16603,
	Overview:      "If a stack is deployed with an S3 bucket with auto_delete_objects=True, and then re-deployed with auto_delete_objects=False, all the objects in the bucket will be deleted.",
	Components:    []model.Component{{Name: "framework", Version: "<=2.15.0 >=2.0.0"}},
	SchemaVersion: "1",
}

var cliNoticeA = model.Notice{
	Title:       "(cli): Some bug affecting cdk deploy.",
	IssueNumber: 17061,
	Overview:    "Overview for Some bug affecting cdk deploy.",
	Components:  []model.Component{{Name: "cli", Version: "<=1.126.0"}},
}

var cliNoticeB = model.Notice{
	Title:       "(cli): Some bug affecting cdk diff.",
	IssueNumber: 17062,
	Overview:    "Overview for Some bug affecting cdk diff.",
	Components:  []model.Component{{Name: "cli", Version: "<1.130.0 >=1.126.0"}},
}

func newService(notices ...model.Notice) *NoticeService {
	return NewNoticeService(&stubDataSource{notices: notices}, nil)
}

func writeTree(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.json"), []byte(content), 0o600))
	return dir
}

func TestApplicableNotices_ToolVersion(t *testing.T) {
	svc := newService(cliNoticeA, cliNoticeB)

	got := svc.ApplicableNotices(context.Background(), model.DisplayContext{ToolVersion: "1.126.0"})
	assert.Equal(t, []model.Notice{cliNoticeA, cliNoticeB}, got)

	got = svc.ApplicableNotices(context.Background(), model.DisplayContext{ToolVersion: "1.130.0"})
	assert.Empty(t, got)
}

func TestApplicableNotices_Acknowledged(t *testing.T) {
	svc := newService(cliNoticeA, cliNoticeB)

	got := svc.ApplicableNotices(context.Background(), model.DisplayContext{
		ToolVersion:              "1.126.0",
		AcknowledgedIssueNumbers: []int{17061},
	})
	assert.Equal(t, []model.Notice{cliNoticeB}, got)
}

func TestApplicableNotices_ConstructTree(t *testing.T) {
	outdir := writeTree(t, `{"version":"tree-0.1","tree":{"id":"App","path":"","children":{
		"Stack":{"id":"Stack","path":"Stack","constructInfo":{"fqn":"aws-cdk-lib.Stack","version":"2.10.0"}}}}}`)

	alphaNotice := model.Notice{
		Title:       "alpha module",
		IssueNumber: 20000,
		Components:  []model.Component{{Name: "@aws-cdk/aws-apigatewayv2-alpha.", Version: "<3.0.0"}},
	}
	svc := newService(alphaNotice, bucketNotice, cliNoticeA)

	got := svc.ApplicableNotices(context.Background(), model.DisplayContext{Outdir: outdir, ToolVersion: "2.10.0"})
	assert.Equal(t, []model.Notice{bucketNotice}, got)
}

func TestApplicableNotices_SkipsMalformedNotice(t *testing.T) {
	broken := model.Notice{
		Title:       "broken",
		IssueNumber: 1,
		Components:  []model.Component{{Name: "cli", Version: "1.0.0"}},
	}
	svc := newService(broken, cliNoticeA)

	got := svc.ApplicableNotices(context.Background(), model.DisplayContext{ToolVersion: "1.0.0"})
	assert.Equal(t, []model.Notice{cliNoticeA}, got)
}

func TestApplicableNotices_DataSourceError(t *testing.T) {
	svc := NewNoticeService(&stubDataSource{err: errors.New("offline")}, nil)
	got := svc.ApplicableNotices(context.Background(), model.DisplayContext{ToolVersion: "1.0.0"})
	assert.Empty(t, got)
}

func TestFormatNotice_Golden(t *testing.T) {
	expected := "16603\tToggling off auto_delete_objects for Bucket empties the bucket\n" +
		"\n" +
		"\tOverview: If a stack is deployed with an S3 bucket with\n" +
		"\t          auto_delete_objects=True, and then re-deployed with\n" +
		"\t          auto_delete_objects=False, all the objects in the bucket\n" +
		"\t          will be deleted.\n" +
		"\n" +
		"\tAffected versions: framework: <=2.15.0 >=2.0.0\n" +
		"\n" +
		"\tMore information at: https://github.com/aws/aws-cdk/issues/16603\n"

	assert.Equal(t, expected, FormatNotice(bucketNotice, DefaultIssueURL))
	assert.Equal(t, []string{expected}, FormatNotices([]model.Notice{bucketNotice}))
}

func TestFormatNotice_NonASCIIOverview(t *testing.T) {
	notice := bucketNotice
	notice.Overview = "Don’t “panic” – the bucket’s objects aren’t deleted unless… the stack is re-deployed."

	expected := "16603\tToggling off auto_delete_objects for Bucket empties the bucket\n" +
		"\n" +
		"\tOverview: Don’t “panic” – the bucket’s objects aren’t deleted unless…\n" +
		"\t          the stack is re-deployed.\n" +
		"\n" +
		"\tAffected versions: framework: <=2.15.0 >=2.0.0\n" +
		"\n" +
		"\tMore information at: https://github.com/aws/aws-cdk/issues/16603\n"

	assert.Equal(t, expected, FormatNotice(notice, DefaultIssueURL))
}

func TestFilter_UsesDisplayContextAcknowledgements(t *testing.T) {
	svc := newService()
	facts := []model.InventoryFact{model.NewToolVersionFact("1.126.0")}

	got := svc.Filter([]model.Notice{cliNoticeA, cliNoticeB}, facts, model.DisplayContext{AcknowledgedIssueNumbers: []int{17062}})
	assert.Equal(t, []model.Notice{cliNoticeA}, got)

	got = svc.Filter([]model.Notice{cliNoticeA, cliNoticeB}, facts, model.DisplayContext{})
	assert.Equal(t, []model.Notice{cliNoticeA, cliNoticeB}, got)
}

func TestFormatNotice_LongOverview(t *testing.T) {
	notice := cliNoticeA
	notice.Overview = strings.TrimSpace(strings.Repeat("wrapping test ", 15)) // 209 chars
	block := FormatNotice(notice, DefaultIssueURL)

	var overview []string
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "\tOverview: ") || strings.HasPrefix(line, "\t          ") {
			overview = append(overview, line)
		}
	}

	require.Greater(t, len(overview), 1)
	assert.True(t, strings.HasPrefix(overview[0], "\tOverview: "))
	for _, line := range overview {
		text := strings.TrimPrefix(strings.TrimPrefix(line, "\tOverview: "), "\t          ")
		assert.LessOrEqual(t, len(text), OverviewWidth)
		assert.NotContains(t, text, "Overview:", "the label appears only once")
	}
	for _, line := range overview[1:] {
		assert.True(t, strings.HasPrefix(line, "\t          "))
	}
}

func TestFormatNotice_MultipleComponents(t *testing.T) {
	notice := cliNoticeA
	notice.Components = []model.Component{
		{Name: "cli", Version: "<=1.126.0"},
		{Name: "framework", Version: "<1.130.0 >=1.126.0"},
	}
	svc := newService()
	svc.IssueURL = "https://example.com/issues/"

	block := svc.FormatNotices([]model.Notice{notice})[0]
	assert.Contains(t, block, "\tAffected versions: cli: <=1.126.0, framework: <1.130.0 >=1.126.0\n")
	assert.Contains(t, block, "\tMore information at: https://example.com/issues/17061\n")
}

func TestGenerateMessage_Empty(t *testing.T) {
	svc := newService(cliNoticeA)
	assert.Equal(t, "", svc.GenerateMessage(context.Background(), model.DisplayContext{ToolVersion: "9.9.9"}))
}

func TestGenerateMessage(t *testing.T) {
	svc := newService(cliNoticeA, cliNoticeB)
	msg := svc.GenerateMessage(context.Background(), model.DisplayContext{ToolVersion: "1.126.0"})

	assert.True(t, strings.HasPrefix(msg, "\nNOTICES\n\n"))
	blockA := FormatNotice(cliNoticeA, DefaultIssueURL)
	blockB := FormatNotice(cliNoticeB, DefaultIssueURL)
	idxA := strings.Index(msg, blockA)
	idxB := strings.Index(msg, blockB)
	require.NotEqual(t, -1, idxA)
	require.NotEqual(t, -1, idxB)
	assert.Less(t, idxA, idxB, "blocks keep catalog order")
	assert.True(t, strings.HasSuffix(msg,
		`If you don’t want to see a notice anymore, use "pdvd-notices acknowledge <id>". For example, "pdvd-notices acknowledge 17061".`))
}
