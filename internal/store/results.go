// internal/store/results.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "tdlr-processor/internal/common/errors"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/models"
)

// FileStore is the write-once sink of record for processing results. File
// names carry a second-granularity timestamp for operator greppability plus a
// random suffix, since two runs persisted within the same second would
// otherwise collide.
type FileStore struct {
	dir    string
	logger logger.Logger
}

func NewFileStore(dir string, log logger.Logger) *FileStore {
	return &FileStore{
		dir: dir,
		logger: log.With(map[string]interface{}{
			"component": "file-store",
		}),
	}
}

// Save writes the result as indented JSON and returns its path.
func (s *FileStore) Save(result *models.ProcessingResult) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.NewPersistenceFailedError(err)
	}

	name := fmt.Sprintf("processing_results_%s_%s.json",
		time.Now().Format("20060102_150405"), shortID())
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", apperrors.NewPersistenceFailedError(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewPersistenceFailedError(err)
	}

	s.logger.Info("results saved", map[string]interface{}{
		"path": path,
	})
	return path, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
