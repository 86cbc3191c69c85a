package main

import (
	"github.com/hibiken/asynq"

	catalogJob "library-api/internal/domains/catalog/job"
	"library-api/internal/shared"
	"library-api/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	archiveImport  *catalogJob.ArchiveImportHandler
	cleanupUploads *catalogJob.CleanupTempUploadsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		archiveImport:  catalogJob.NewArchiveImportHandler(c.Storage),
		cleanupUploads: catalogJob.NewCleanupTempUploadsHandler(c.Storage),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeArchiveImportFile, h.archiveImport.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupTempUploads, h.cleanupUploads.ProcessTask)
}
