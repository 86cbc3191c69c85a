package job

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"

	"library-api/internal/shared"
	"library-api/pkg/logger"
)

// ArchiveStorage is the slice of the storage client the archive jobs
// need.
type ArchiveStorage interface {
	MoveObject(ctx context.Context, fromKey, toKey string) error
}

// ArchiveImportHandler moves a successfully imported spreadsheet from
// the temp prefix to its permanent archive key.
type ArchiveImportHandler struct {
	storage ArchiveStorage
}

func NewArchiveImportHandler(storage ArchiveStorage) *ArchiveImportHandler {
	return &ArchiveImportHandler{
		storage: storage,
	}
}

func (h *ArchiveImportHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ArchiveImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	archiveKey := archiveKeyFor(payload)

	logger.Info("Archiving import file", map[string]interface{}{
		"temp_key":    payload.TempKey,
		"archive_key": archiveKey,
		"uploaded_by": payload.UploadedBy,
	})

	if err := h.storage.MoveObject(ctx, payload.TempKey, archiveKey); err != nil {
		logger.Error("Archive import file fail due to ", err)
		return err
	}

	logger.Info("Successfully archived import file", map[string]interface{}{
		"archive_key": archiveKey,
	})

	return nil
}

// archiveKeyFor derives the permanent key: the import timestamp plus the
// original file name, under the archive prefix.
func archiveKeyFor(payload shared.ArchiveImportPayload) string {
	stamp := strings.ReplaceAll(payload.ImportedAt, ":", "-")
	name := payload.FileName
	if name == "" {
		name = strings.TrimPrefix(payload.TempKey, shared.ImportTempPrefix)
	}
	return shared.ImportArchivePrefix + stamp + "_" + name
}
