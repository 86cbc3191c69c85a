package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/shared"
)

func Test_Import_ParsesReconcilesAndArchives(t *testing.T) {
	store := newFakeStore()
	reconciler := NewReconcileService(store, nil)
	uploader := newFakeUploader()
	enqueuer := &fakeEnqueuer{}

	svc := NewImportService(reconciler, uploader, enqueuer, 1000, true)

	upload := workbookBytes(t, [][]interface{}{
		{1, "Dune", "Ace", "9.99", 10, "Frank", "Herbert", ""},
		{"oops", "Broken", "", "", 11, "Dan", "Simmons", ""},
	})

	result, err := svc.Import(context.Background(), upload, "catalog.xlsx", "admin-1", PolicyAutoCreate)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 1, result.Summary.CreatedBooks)

	// The original bytes land under the temp prefix.
	require.NotEmpty(t, result.ArchiveKey)
	assert.True(t, strings.HasPrefix(result.ArchiveKey, shared.ImportTempPrefix))
	_, stored := uploader.objects[result.ArchiveKey]
	assert.True(t, stored)

	// One archive task referencing that key.
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, shared.TypeArchiveImportFile, enqueuer.tasks[0].Type())

	var payload shared.ArchiveImportPayload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &payload))
	assert.Equal(t, result.ArchiveKey, payload.TempKey)
	assert.Equal(t, "catalog.xlsx", payload.FileName)
	assert.Equal(t, "admin-1", payload.UploadedBy)
}

func Test_Import_SkipsArchivalWhenDisabled(t *testing.T) {
	store := newFakeStore()
	reconciler := NewReconcileService(store, nil)
	uploader := newFakeUploader()
	enqueuer := &fakeEnqueuer{}

	svc := NewImportService(reconciler, uploader, enqueuer, 1000, false)

	upload := workbookBytes(t, [][]interface{}{
		{1, "Dune", "", "", 10, "Frank", "Herbert", ""},
	})

	result, err := svc.Import(context.Background(), upload, "catalog.xlsx", "admin-1", PolicyAutoCreate)
	require.NoError(t, err)

	assert.Empty(t, result.ArchiveKey)
	assert.Empty(t, uploader.objects)
	assert.Empty(t, enqueuer.tasks)
}

func Test_Import_AllRowsInvalidAbortsWithRowErrors(t *testing.T) {
	store := newFakeStore()
	reconciler := NewReconcileService(store, nil)
	svc := NewImportService(reconciler, newFakeUploader(), &fakeEnqueuer{}, 1000, true)

	upload := workbookBytes(t, [][]interface{}{
		{"x", "Bad", "", "", 10, "Frank", "Herbert", ""},
		{1, "Bad Too", "", "y", "z", "Dan", "Simmons", ""},
	})

	result, err := svc.Import(context.Background(), upload, "catalog.xlsx", "admin-1", PolicyAutoCreate)
	require.ErrorIs(t, err, model.ErrEmptyBatch)

	assert.Equal(t, 0, result.ValidRows)
	assert.Len(t, result.RowErrors, 3)
	assert.Empty(t, store.books)
}

func Test_Import_NotAWorkbookFails(t *testing.T) {
	store := newFakeStore()
	reconciler := NewReconcileService(store, nil)
	svc := NewImportService(reconciler, newFakeUploader(), &fakeEnqueuer{}, 1000, true)

	_, err := svc.Import(context.Background(), bytes.NewReader([]byte("not a spreadsheet")), "x.xlsx", "admin-1", PolicyAutoCreate)
	assert.Error(t, err)
}

func Test_Export_BuildsParseableWorkbook(t *testing.T) {
	store := newFakeStore()
	store.exportRows = makeExportRows(3)

	svc := NewExportService(store, 1000)

	content, fileName, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "book-catalog.xlsx", fileName)

	parsed, rowErrors, err := ParseRawDataWorkbook(bytes.NewReader(content), 0)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	assert.Len(t, parsed, 3)
}

func Test_Export_AppliesRowLimit(t *testing.T) {
	store := newFakeStore()
	store.exportRows = makeExportRows(10)

	svc := NewExportService(store, 4)

	content, _, err := svc.Export(context.Background())
	require.NoError(t, err)

	parsed, _, err := ParseRawDataWorkbook(bytes.NewReader(content), 0)
	require.NoError(t, err)
	assert.Len(t, parsed, 4)
}

func makeExportRows(n int) []model.RawBookAuthorRow {
	rows := make([]model.RawBookAuthorRow, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, row(i, "Book", 100+i, "First", "Last"))
	}
	return rows
}
