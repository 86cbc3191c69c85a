package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/service"
	"library-api/internal/shared/response"
)

// CatalogHandler serves the public read endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListBooks - GET /v1/books
// Query params: page, pageSize, sortBy, sortDirection, authorId
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	var req model.PagedBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	page, err := h.catalog.ListBooks(c.Request.Context(), req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			response.Fail(c, http.StatusBadRequest, vErr.Error())
			return
		}
		response.Fail(c, http.StatusInternalServerError, "failed to list books")
		return
	}

	response.Paged(c, page.Items, page.TotalCount, page.Page, page.PageSize)
}

// BookHistory - GET /v1/books/:id/history
func (h *CatalogHandler) BookHistory(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil || bookID <= 0 {
		response.Fail(c, http.StatusBadRequest, "book id must be a positive integer")
		return
	}

	history, err := h.catalog.BookHistory(c.Request.Context(), bookID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to load book history")
		return
	}

	response.OK(c, history, "")
}

// AuthorDropdown - GET /v1/authors/dropdown
func (h *CatalogHandler) AuthorDropdown(c *gin.Context) {
	options, err := h.catalog.AuthorOptions(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "failed to load authors")
		return
	}

	response.OK(c, options, "")
}
