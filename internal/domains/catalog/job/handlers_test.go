package job

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/infrastructure/storage"
	"library-api/internal/shared"
)

type fakeArchiveStorage struct {
	objects map[string]struct{}
	moves   map[string]string
}

func newFakeArchiveStorage() *fakeArchiveStorage {
	return &fakeArchiveStorage{
		objects: make(map[string]struct{}),
		moves:   make(map[string]string),
	}
}

func (s *fakeArchiveStorage) MoveObject(ctx context.Context, fromKey, toKey string) error {
	delete(s.objects, fromKey)
	s.objects[toKey] = struct{}{}
	s.moves[fromKey] = toKey
	return nil
}

func Test_ArchiveImportHandler_MovesToArchiveKey(t *testing.T) {
	store := newFakeArchiveStorage()
	tempKey := shared.ImportTempPrefix + "abc123.xlsx"
	store.objects[tempKey] = struct{}{}

	payload, err := json.Marshal(shared.ArchiveImportPayload{
		TempKey:    tempKey,
		FileName:   "catalog.xlsx",
		UploadedBy: "admin-1",
		ImportedAt: "2026-03-01T12:00:00Z",
	})
	require.NoError(t, err)

	h := NewArchiveImportHandler(store)
	err = h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeArchiveImportFile, payload))
	require.NoError(t, err)

	archiveKey, moved := store.moves[tempKey]
	require.True(t, moved)
	assert.Equal(t, shared.ImportArchivePrefix+"2026-03-01T12-00-00Z_catalog.xlsx", archiveKey)
}

type fakeCleanupStorage struct {
	objects []storage.ObjectInfo
	deleted []string
}

func (s *fakeCleanupStorage) ListByPrefix(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return s.objects, nil
}

func (s *fakeCleanupStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func Test_CleanupTempUploadsHandler_DeletesOnlyStaleObjects(t *testing.T) {
	now := time.Now()
	store := &fakeCleanupStorage{
		objects: []storage.ObjectInfo{
			{Key: shared.ImportTempPrefix + "stale.xlsx", LastModified: now.Add(-48 * time.Hour)},
			{Key: shared.ImportTempPrefix + "fresh.xlsx", LastModified: now.Add(-1 * time.Hour)},
		},
	}

	h := NewCleanupTempUploadsHandler(store)
	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeCleanupTempUploads, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{shared.ImportTempPrefix + "stale.xlsx"}, store.deleted)
}
