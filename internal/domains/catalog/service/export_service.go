package service

import (
	"bytes"
	"context"
	"fmt"

	"library-api/internal/domains/catalog/repository"
)

// ExportService renders the flat book-author view as an xlsx download.
type ExportService struct {
	repo     repository.Interface
	rowLimit int
}

func NewExportService(repo repository.Interface, rowLimit int) *ExportService {
	return &ExportService{
		repo:     repo,
		rowLimit: rowLimit,
	}
}

// Export builds the workbook for the current catalog contents, one row
// per book-author link ordered by (book id, author id), capped at the
// configured row limit. Returns the file bytes and a suggested name.
func (s *ExportService) Export(ctx context.Context) ([]byte, string, error) {
	rows, err := s.repo.ListExportRows(ctx, s.rowLimit)
	if err != nil {
		return nil, "", err
	}

	f, err := BuildRawDataWorkbook(rows)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), "book-catalog.xlsx", nil
}
