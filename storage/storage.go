// Package storage - Handles the logger setup and all interaction with the on-disk notices cache
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ortelius/pdvd-notices/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const cacheDirName = "pdvd-notices"
const cacheFileName = "notices.json"

// ErrEmptyCache is returned by LoadEnvelope when the cache file has no content
var ErrEmptyCache = errors.New("cache file is empty")

// ErrMissingNotices is returned by LoadEnvelope when the cache file has no notices array
var ErrMissingNotices = errors.New("cache file has no notices array")

// InitLogger sets up the Zap Logger to log to stderr in a human readable format
func InitLogger(debug bool) *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	prodConfig.OutputPaths = []string{"stderr"}
	prodConfig.ErrorOutputPaths = []string{"stderr"}
	if debug {
		prodConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		prodConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// DefaultCacheFile returns the per-user location of the notices cache.
// It falls back to the temp directory when no user cache directory can be determined.
func DefaultCacheFile() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, cacheDirName, cacheFileName)
}

// LoadEnvelope reads and decodes the cache file
func LoadEnvelope(fileName string) (model.CacheEnvelope, error) {
	var envelope model.CacheEnvelope

	data, err := os.ReadFile(fileName)
	if err != nil {
		return envelope, fmt.Errorf("failed to read cache file %s: %w", fileName, err)
	}
	if len(data) == 0 {
		return envelope, ErrEmptyCache
	}

	var raw struct {
		Notices    *[]model.Notice `json:"notices"`
		Expiration int64           `json:"expiration"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return envelope, fmt.Errorf("failed to decode cache file %s: %w", fileName, err)
	}
	if raw.Notices == nil {
		return envelope, fmt.Errorf("failed to decode cache file %s: %w", fileName, ErrMissingNotices)
	}

	envelope.Notices = *raw.Notices
	envelope.Expiration = raw.Expiration
	return envelope, nil
}

// SaveEnvelope writes the envelope as a whole: the content goes to a temporary file in the
// same directory which is then renamed over the cache file, so readers never see a partial write.
func SaveEnvelope(fileName string, envelope model.CacheEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode cache envelope: %w", err)
	}

	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fileName)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpName, fileName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file %s: %w", fileName, err)
	}
	return nil
}
