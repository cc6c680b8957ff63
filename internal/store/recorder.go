// internal/store/recorder.go
package store

import (
	"context"
	"time"

	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/models"
)

// Recorder fans a save out to the file sink and the optional archive and
// index. The file write decides success; the collaborators are best-effort
// and only logged on failure.
type Recorder struct {
	files   *FileStore
	archive *Archive
	index   *Index
	logger  logger.Logger
}

func NewRecorder(files *FileStore, archive *Archive, index *Index, log logger.Logger) *Recorder {
	return &Recorder{
		files:   files,
		archive: archive,
		index:   index,
		logger: log.With(map[string]interface{}{
			"component": "recorder",
		}),
	}
}

func (r *Recorder) Save(result *models.ProcessingResult) (string, error) {
	location, err := r.files.Save(result)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.archive != nil {
		if err := r.archive.Insert(ctx, result, location); err != nil {
			r.logger.WithError(err).Warn("archive insert failed", map[string]interface{}{
				"applicationId": result.ApplicationID,
			})
		}
	}

	if r.index != nil {
		if err := r.index.Record(ctx, result.ApplicationID, location); err != nil {
			r.logger.WithError(err).Warn("index update failed", map[string]interface{}{
				"applicationId": result.ApplicationID,
			})
		}
	}

	return location, nil
}
