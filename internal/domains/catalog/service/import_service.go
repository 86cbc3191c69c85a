package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStorage is the slice of the storage client the importer needs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// TaskEnqueuer is the slice of the asynq client the importer needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ImportService runs the spreadsheet ingestion pipeline: parse the
// upload, reconcile the rows, then stash the original file in object
// storage and hand archival to the background worker.
type ImportService struct {
	reconciler *ReconcileService
	storage    ObjectStorage
	tasks      TaskEnqueuer
	maxRows    int
	archive    bool
	now        func() time.Time
}

func NewImportService(reconciler *ReconcileService, storage ObjectStorage, tasks TaskEnqueuer, maxRows int, archive bool) *ImportService {
	return &ImportService{
		reconciler: reconciler,
		storage:    storage,
		tasks:      tasks,
		maxRows:    maxRows,
		archive:    archive,
		now:        time.Now,
	}
}

// Import parses and reconciles one uploaded workbook. Cell-level errors
// do not abort the run; they are reported alongside the summary of the
// rows that did apply. A reconciliation failure aborts with no partial
// writes.
func (s *ImportService) Import(ctx context.Context, file io.Reader, fileName, uploadedBy string, policy Policy) (model.ImportResult, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to read upload: %w", err)
	}

	rows, rowErrors, err := ParseRawDataWorkbook(bytes.NewReader(content), s.maxRows)
	if err != nil {
		return model.ImportResult{}, err
	}

	result := model.ImportResult{
		TotalRows: len(rows) + len(rowErrors),
		ValidRows: len(rows),
		RowErrors: rowErrors,
	}

	// A workbook where every row failed parsing aborts before any store
	// access; the row errors still go back to the caller.
	if len(rows) == 0 {
		return result, model.ErrEmptyBatch
	}

	summary, err := s.reconciler.Reconcile(ctx, rows, policy)
	if err != nil {
		return result, err
	}
	result.Summary = summary

	if s.archive {
		key, err := s.stashForArchive(ctx, content, fileName, uploadedBy)
		if err != nil {
			// The batch is already committed; losing the audit copy is
			// logged, not surfaced as an import failure.
			log.Error().Err(err).Str("file", fileName).Msg("failed to stash import file for archival")
		} else {
			result.ArchiveKey = key
		}
	}

	return result, nil
}

// stashForArchive uploads the original file under the temp prefix and
// enqueues the archive task that moves it to its permanent key.
func (s *ImportService) stashForArchive(ctx context.Context, content []byte, fileName, uploadedBy string) (string, error) {
	tempKey := shared.ImportTempPrefix + uuid.NewString() + path.Ext(fileName)

	if err := s.storage.Upload(ctx, tempKey, content, xlsxContentType); err != nil {
		return "", fmt.Errorf("upload to temp storage: %w", err)
	}

	payload, err := json.Marshal(shared.ArchiveImportPayload{
		TempKey:    tempKey,
		FileName:   fileName,
		UploadedBy: uploadedBy,
		ImportedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("marshal archive payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeArchiveImportFile, payload)
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(5)); err != nil {
		return "", fmt.Errorf("enqueue archive task: %w", err)
	}

	return tempKey, nil
}
