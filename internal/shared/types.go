package shared

// Asynq task types.
const (
	TypeArchiveImportFile  = "catalog:archive_import_file"
	TypeCleanupTempUploads = "catalog:cleanup_temp_uploads"
)

// Queue names with their worker priorities configured in cmd/worker.
const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// Object storage prefixes for uploaded spreadsheets.
const (
	ImportTempPrefix    = "imports/temp/"
	ImportArchivePrefix = "imports/archive/"
)

// ArchiveImportPayload is the task payload for archiving an uploaded
// import file after a successful reconciliation.
type ArchiveImportPayload struct {
	TempKey    string `json:"tempKey"`
	FileName   string `json:"fileName"`
	UploadedBy string `json:"uploadedBy"`
	ImportedAt string `json:"importedAt"` // RFC 3339
}

// CleanupTempUploadsPayload is the scheduled cleanup task payload.
type CleanupTempUploadsPayload struct{}
