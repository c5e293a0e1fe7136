package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ortelius/pdvd-notices/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = `{
  "version": "tree-0.1",
  "tree": {
    "id": "App",
    "path": "",
    "children": {
      "Tree": {
        "id": "Tree",
        "path": "Tree",
        "constructInfo": {"fqn": "constructs.Construct", "version": "10.0.5"}
      },
      "MyStack": {
        "id": "MyStack",
        "path": "MyStack",
        "constructInfo": {"fqn": "aws-cdk-lib.Stack", "version": "2.50.0"},
        "children": {
          "Bucket": {
            "id": "Bucket",
            "path": "MyStack/Bucket",
            "constructInfo": {"fqn": "aws-cdk-lib.aws_s3.Bucket", "version": "2.50.0"},
            "children": {
              "Resource": {
                "id": "Resource",
                "path": "MyStack/Bucket/Resource",
                "constructInfo": {"fqn": "aws-cdk-lib.aws_s3.CfnBucket", "version": "2.50.0"}
              }
            }
          },
          "OtherBucket": {
            "id": "OtherBucket",
            "path": "MyStack/OtherBucket",
            "constructInfo": {"fqn": "aws-cdk-lib.aws_s3.Bucket", "version": "2.50.0"}
          },
          "Api": {
            "id": "Api",
            "path": "MyStack/Api",
            "constructInfo": {"fqn": "@aws-cdk/aws-apigatewayv2-alpha.HttpApi", "version": "2.39.0-alpha.0"}
          },
          "Custom": {
            "id": "Custom",
            "path": "MyStack/Custom",
            "module": {"name": "my-constructs", "version": "0.3.1"}
          },
          "Plain": {
            "id": "Plain",
            "path": "MyStack/Plain"
          }
        }
      }
    }
  }
}`

func writeTree(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TreeFileName), []byte(content), 0o600))
	return dir
}

func TestScan_CollectsFacts(t *testing.T) {
	outdir := writeTree(t, sampleTree)
	facts := NewScanner(nil).Scan(outdir, "2.50.0")

	expected := []model.InventoryFact{
		model.NewToolVersionFact("2.50.0"),
		model.NewModuleFact("@aws-cdk/aws-apigatewayv2-alpha", "2.39.0-alpha.0", "@aws-cdk/aws-apigatewayv2-alpha.HttpApi"),
		model.NewModuleFact("aws-cdk-lib", "2.50.0", "aws-cdk-lib.Stack"),
		model.NewModuleFact("aws-cdk-lib", "2.50.0", "aws-cdk-lib.aws_s3.Bucket"),
		model.NewModuleFact("aws-cdk-lib", "2.50.0", "aws-cdk-lib.aws_s3.CfnBucket"),
		model.NewModuleFact("constructs", "10.0.5", "constructs.Construct"),
		model.NewModuleFact("my-constructs", "0.3.1", ""),
	}
	assert.Equal(t, expected, facts, "facts are deduplicated and sorted")
}

func TestScan_MissingTree(t *testing.T) {
	facts := NewScanner(nil).Scan(t.TempDir(), "1.126.0")
	assert.Equal(t, []model.InventoryFact{model.NewToolVersionFact("1.126.0")}, facts)
}

func TestScan_MalformedTree(t *testing.T) {
	for _, content := range []string{"{not json", `{"version":"tree-0.1"}`, ""} {
		outdir := writeTree(t, content)
		facts := NewScanner(nil).Scan(outdir, "1.126.0")
		assert.Equal(t, []model.InventoryFact{model.NewToolVersionFact("1.126.0")}, facts)
	}
}

func TestScan_NoOutdir(t *testing.T) {
	facts := NewScanner(nil).Scan("", "1.0.0")
	assert.Len(t, facts, 1)
}

func TestLoadTree(t *testing.T) {
	tree, err := LoadTree(writeTree(t, sampleTree))
	require.NoError(t, err)
	assert.Equal(t, "tree-0.1", tree.Version)
	assert.Equal(t, "App", tree.Root.ID)
	assert.Contains(t, tree.Root.Children, "MyStack")

	_, err = LoadTree(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
