package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/service"
	"library-api/internal/shared/response"
)

// AdminHandler serves the write endpoints: JSON upsert batches,
// spreadsheet import and export. All routes behind it require an admin
// token.
type AdminHandler struct {
	reconciler    *service.ReconcileService
	importer      *service.ImportService
	exporter      *service.ExportService
	defaultPolicy service.Policy
}

func NewAdminHandler(reconciler *service.ReconcileService, importer *service.ImportService, exporter *service.ExportService, defaultPolicy service.Policy) *AdminHandler {
	return &AdminHandler{
		reconciler:    reconciler,
		importer:      importer,
		exporter:      exporter,
		defaultPolicy: defaultPolicy,
	}
}

// resolvePolicy picks the request's policy override or the configured
// default.
func (h *AdminHandler) resolvePolicy(raw string) (service.Policy, error) {
	if raw == "" {
		return h.defaultPolicy, nil
	}
	return service.ParsePolicy(raw)
}

// Upsert - POST /v1/admin/catalog/upsert
func (h *AdminHandler) Upsert(c *gin.Context) {
	var req model.ReconcileBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	policy, err := h.resolvePolicy(req.Policy)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.reconciler.Reconcile(c.Request.Context(), req.Rows, policy)
	if err != nil {
		h.writeReconcileError(c, err)
		return
	}

	response.OK(c, summary, summary.Describe())
}

// Import - POST /v1/admin/catalog/import
// Accepts a multipart upload under the "file" field.
func (h *AdminHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "missing file upload")
		return
	}

	policy, err := h.resolvePolicy(c.PostForm("policy"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "failed to open upload")
		return
	}
	defer file.Close()

	uploadedBy := c.GetString("user_id")

	result, err := h.importer.Import(c.Request.Context(), file, fileHeader.Filename, uploadedBy, policy)
	if err != nil {
		if errors.Is(err, model.ErrEmptyBatch) && len(result.RowErrors) > 0 {
			response.FailWithDetails(c, http.StatusBadRequest, "no valid rows in upload", result.RowErrors)
			return
		}
		h.writeReconcileError(c, err)
		return
	}

	response.OK(c, result, result.Summary.Describe())
}

// Export - GET /v1/admin/catalog/export
// Streams the catalog as an xlsx attachment.
func (h *AdminHandler) Export(c *gin.Context) {
	content, fileName, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to export catalog")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		content)
}

func (h *AdminHandler) writeReconcileError(c *gin.Context, err error) {
	var refErr *model.MissingReferencesError
	switch {
	case errors.As(err, &refErr):
		response.FailWithDetails(c, http.StatusBadRequest, refErr.Error(), refErr)
	case errors.Is(err, model.ErrEmptyBatch):
		response.Fail(c, http.StatusBadRequest, model.ErrEmptyBatch.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, "reconciliation failed")
	}
}
