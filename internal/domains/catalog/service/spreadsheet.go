package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"library-api/internal/domains/catalog/model"
)

const rawDataSheetName = "Raw data"

// rawDataHeaders is the column contract shared by import and export.
var rawDataHeaders = []string{
	"BookId", "Title", "Publisher", "Price",
	"AuthorId", "FirstName", "LastName", "PenName",
}

// ========================================
// PARSING
// ========================================

// ParseRawDataWorkbook reads the first sheet of an xlsx upload into raw
// book-author tuples. Malformed cells are collected as row errors with
// their position and offending value; well-formed rows still parse. The
// header row is validated against the column contract.
func ParseRawDataWorkbook(r io.Reader, maxRows int) ([]model.RawBookAuthorRow, []model.RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	if err := checkHeaders(cells[0]); err != nil {
		return nil, nil, err
	}

	dataRows := cells[1:]
	if maxRows > 0 && len(dataRows) > maxRows {
		return nil, nil, fmt.Errorf("workbook has %d data rows, limit is %d", len(dataRows), maxRows)
	}

	var parsed []model.RawBookAuthorRow
	var rowErrors []model.RowError

	for i, record := range dataRows {
		rowNum := i + 2 // 1-based, after the header
		if isBlankRow(record) {
			continue
		}

		row, errs := parseRawDataRow(record, rowNum)
		if len(errs) > 0 {
			rowErrors = append(rowErrors, errs...)
			continue
		}
		parsed = append(parsed, row)
	}

	return parsed, rowErrors, nil
}

func checkHeaders(header []string) error {
	if len(header) < len(rawDataHeaders) {
		return fmt.Errorf("header row has %d columns, expected %d", len(header), len(rawDataHeaders))
	}
	for i, want := range rawDataHeaders {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("unexpected header %q in column %d, expected %q", header[i], i+1, want)
		}
	}
	return nil
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRawDataRow(record []string, rowNum int) (model.RawBookAuthorRow, []model.RowError) {
	var row model.RawBookAuthorRow
	var errs []model.RowError

	cell := func(col int) string {
		if col < len(record) {
			return strings.TrimSpace(record[col])
		}
		return ""
	}

	bookID, err := strconv.Atoi(cell(0))
	if err != nil {
		errs = append(errs, model.RowError{Row: rowNum, Column: "BookId", Value: cell(0), Message: "must be an integer"})
	} else if bookID < 0 {
		errs = append(errs, model.RowError{Row: rowNum, Column: "BookId", Value: cell(0), Message: "must not be negative"})
	}
	row.BookID = bookID

	row.Title = cell(1)

	if publisher := cell(2); publisher != "" {
		row.Publisher = &publisher
	}

	if raw := cell(3); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, model.RowError{Row: rowNum, Column: "Price", Value: raw, Message: "must be a decimal number"})
		} else {
			row.Price = decimal.NewNullDecimal(price)
		}
	}

	authorID, err := strconv.Atoi(cell(4))
	if err != nil {
		errs = append(errs, model.RowError{Row: rowNum, Column: "AuthorId", Value: cell(4), Message: "must be an integer"})
	} else if authorID < 0 {
		errs = append(errs, model.RowError{Row: rowNum, Column: "AuthorId", Value: cell(4), Message: "must not be negative"})
	}
	row.AuthorID = authorID

	row.FirstName = cell(5)
	row.LastName = cell(6)

	if penName := cell(7); penName != "" {
		row.PenName = &penName
	}

	return row, errs
}

// ========================================
// BUILDING
// ========================================

// BuildRawDataWorkbook renders flat book-author rows into an xlsx file
// with the same column contract the importer reads.
func BuildRawDataWorkbook(rows []model.RawBookAuthorRow) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", rawDataSheetName)

	for colIdx, header := range rawDataHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(rawDataSheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(rawDataHeaders), 1)
		f.SetCellStyle(rawDataSheetName, "A1", endCell, headerStyle)
	}

	for i, row := range rows {
		rowNum := i + 2

		setCell := func(col int, value interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			f.SetCellValue(rawDataSheetName, cell, value)
		}

		setCell(1, row.BookID)
		setCell(2, row.Title)
		if row.Publisher != nil {
			setCell(3, *row.Publisher)
		}
		if row.Price.Valid {
			setCell(4, row.Price.Decimal.StringFixed(2))
		}
		setCell(5, row.AuthorID)
		setCell(6, row.FirstName)
		setCell(7, row.LastName)
		if row.PenName != nil {
			setCell(8, *row.PenName)
		}
	}

	return f, nil
}
