// Package datasource provides the notice catalog sources: the remote notices endpoint,
// a local catalog file, and a caching decorator that wraps either of them.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ortelius/pdvd-notices/model"
)

// NoticeDataSource defines the interface for fetching the notice catalog.
type NoticeDataSource interface {
	Fetch(ctx context.Context) ([]model.Notice, error)
}

// FileDataSource reads a catalog from a local file in the same shape the
// notices endpoint serves, which lets air-gapped mirrors host their own catalog.
type FileDataSource struct {
	Path string
}

// NewFileDataSource creates a FileDataSource for path
func NewFileDataSource(path string) *FileDataSource {
	return &FileDataSource{Path: path}
}

// Fetch reads and decodes the catalog file
func (f *FileDataSource) Fetch(_ context.Context) ([]model.Notice, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notices catalog: %w", err)
	}
	return decodeCatalog(data)
}

// decodeCatalog parses a {"notices": [...]} document. A document without a
// notices array does not have the expected shape and is rejected.
func decodeCatalog(data []byte) ([]model.Notice, error) {
	var body struct {
		Notices *[]model.Notice `json:"notices"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("error decoding notices JSON: %w", err)
	}
	if body.Notices == nil {
		return nil, fmt.Errorf("notices document has no notices array")
	}
	return *body.Notices, nil
}

// Ensure compile-time interface check
var (
	_ NoticeDataSource = (*FileDataSource)(nil)
	_ NoticeDataSource = (*WebsiteDataSource)(nil)
	_ NoticeDataSource = (*CachedDataSource)(nil)
)
