package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"library-api/internal/domains/catalog/model"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for colIdx, header := range rawDataHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		require.NoError(t, f.SetCellValue("Sheet1", cell, header))
	}
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func Test_ParseRawDataWorkbook_CollectsRowErrorsWithoutAborting(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{1, "Dune", "Ace", "9.99", 10, "Frank", "Herbert", ""},
		{"abc", "Bad Book", "", "", 11, "Dan", "Simmons", ""},
		{2, "Hyperion", "", "not-a-price", 11, "Dan", "Simmons", "ds"},
	})

	rows, rowErrors, err := ParseRawDataWorkbook(r, 0)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].BookID)
	assert.Equal(t, "Dune", rows[0].Title)
	require.NotNil(t, rows[0].Publisher)
	assert.Equal(t, "Ace", *rows[0].Publisher)
	require.True(t, rows[0].Price.Valid)
	assert.Equal(t, "9.99", rows[0].Price.Decimal.String())
	assert.Nil(t, rows[0].PenName)

	require.Len(t, rowErrors, 2)
	assert.Equal(t, 3, rowErrors[0].Row)
	assert.Equal(t, "BookId", rowErrors[0].Column)
	assert.Equal(t, "abc", rowErrors[0].Value)
	assert.Equal(t, 4, rowErrors[1].Row)
	assert.Equal(t, "Price", rowErrors[1].Column)
}

func Test_ParseRawDataWorkbook_SkipsBlankRowsAndOptionalCells(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{1, "Dune", "", "", 10, "Frank", "Herbert", ""},
		{"", "", "", "", "", "", "", ""},
		{2, "Hyperion", "Bantam", "7.5", 11, "Dan", "Simmons", "ds"},
	})

	rows, rowErrors, err := ParseRawDataWorkbook(r, 0)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, rows, 2)

	assert.Nil(t, rows[0].Publisher)
	assert.False(t, rows[0].Price.Valid)
	require.NotNil(t, rows[1].PenName)
	assert.Equal(t, "ds", *rows[1].PenName)
}

func Test_ParseRawDataWorkbook_RejectsWrongHeaders(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Id"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Name"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, _, err := ParseRawDataWorkbook(bytes.NewReader(buf.Bytes()), 0)
	assert.Error(t, err)
}

func Test_ParseRawDataWorkbook_EnforcesRowLimit(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{1, "Dune", "", "", 10, "Frank", "Herbert", ""},
		{2, "Hyperion", "", "", 11, "Dan", "Simmons", ""},
	})

	_, _, err := ParseRawDataWorkbook(r, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func Test_BuildRawDataWorkbook_RoundTripsThroughParser(t *testing.T) {
	source := []model.RawBookAuthorRow{
		{BookID: 1, Title: "Dune", Publisher: strPtr("Ace"), Price: price("9.99"), AuthorID: 10, FirstName: "Frank", LastName: "Herbert"},
		{BookID: 2, Title: "Hyperion", AuthorID: 11, FirstName: "Dan", LastName: "Simmons", PenName: strPtr("ds")},
	}

	f, err := BuildRawDataWorkbook(source)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	parsed, rowErrors, err := ParseRawDataWorkbook(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, parsed, 2)

	assert.Equal(t, "Dune", parsed[0].Title)
	require.True(t, parsed[0].Price.Valid)
	assert.True(t, parsed[0].Price.Decimal.Equal(source[0].Price.Decimal))
	assert.Nil(t, parsed[1].Publisher)
	require.NotNil(t, parsed[1].PenName)
	assert.Equal(t, "ds", *parsed[1].PenName)
}
