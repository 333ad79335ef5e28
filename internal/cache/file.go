package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// FileStore keeps one JSON file per province per day under a cache
// directory.
type FileStore struct {
	dir string
}

// NewFile creates the cache directory if needed and returns a file-backed
// store.
func NewFile(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(province string, day time.Time) string {
	return filepath.Join(s.dir, Key(province, day)+".json")
}

func (s *FileStore) Load(ctx context.Context, province string, day time.Time) (*model.Bundle, error) {
	path := s.path(province, day)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: read %s", path)
	}

	var bundle model.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		// A half-written or mangled file must not wedge the cache; drop it
		// and report a miss so the pipeline refetches.
		zap.L().Warn("cache: dropping corrupt entry",
			zap.String("path", path),
			zap.Error(err),
		)
		_ = os.Remove(path)
		return nil, nil
	}
	return &bundle, nil
}

func (s *FileStore) Save(ctx context.Context, province string, day time.Time, bundle *model.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "cache: marshal bundle")
	}
	path := s.path(province, day)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "cache: write %s", path)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
