package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"library-api/internal/infrastructure/storage"
	"library-api/internal/shared"
	"library-api/pkg/logger"
)

// tempUploadMaxAge is how long an orphaned temp upload may linger before
// the scheduled cleanup removes it.
const tempUploadMaxAge = 24 * time.Hour

// CleanupStorage is the slice of the storage client the cleanup job
// needs.
type CleanupStorage interface {
	ListByPrefix(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// CleanupTempUploadsHandler removes temp uploads whose archive task
// never ran, for example when the worker was down during an import.
type CleanupTempUploadsHandler struct {
	storage CleanupStorage
}

func NewCleanupTempUploadsHandler(storage CleanupStorage) *CleanupTempUploadsHandler {
	return &CleanupTempUploadsHandler{
		storage: storage,
	}
}

func (h *CleanupTempUploadsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	cutoff := time.Now().Add(-tempUploadMaxAge)

	logger.Debug("Starting cleanup of stale temp uploads")

	objects, err := h.storage.ListByPrefix(ctx, shared.ImportTempPrefix)
	if err != nil {
		logger.Error("List temp uploads fail due to ", err)
		return err
	}

	deleted := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := h.storage.Delete(ctx, obj.Key); err != nil {
			logger.Error("Delete temp upload fail due to ", err)
			return err
		}
		deleted++
	}

	logger.Info("Successfully cleaned up stale temp uploads", map[string]interface{}{
		"deleted": deleted,
		"scanned": len(objects),
	})

	return nil
}
