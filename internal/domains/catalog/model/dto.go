package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ========================================
// PAGED QUERY DTOs
// ========================================

// PagedBooksRequest carries the untrusted client paging parameters.
// Defaults are applied at binding time; validation happens in the query
// package before any SQL is built.
type PagedBooksRequest struct {
	Page          int    `form:"page,default=1" json:"page"`
	PageSize      int    `form:"pageSize,default=10" json:"pageSize"`
	SortBy        string `form:"sortBy" json:"sortBy"`
	SortDirection string `form:"sortDirection" json:"sortDirection"`
	AuthorID      int    `form:"authorId" json:"authorId"`
}

type AuthorDTO struct {
	AuthorID  int    `json:"authorId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// BookWithAuthorsDTO is the externally visible projection of a book and
// its nested author list. Optional text renders as empty string; an
// absent price renders as null.
type BookWithAuthorsDTO struct {
	BookID      int         `json:"bookId"`
	Title       string      `json:"title"`
	Publisher   string      `json:"publisher"`
	Price       *string     `json:"price"`
	Authors     []AuthorDTO `json:"authors"`
	AuthorCount int         `json:"authorCount"`
}

// PagedBooks is the projected window plus the paging totals.
type PagedBooks struct {
	Items      []BookWithAuthorsDTO
	TotalCount int
	Page       int
	PageSize   int
}

// AuthorOption is one entry of the author dropdown.
type AuthorOption struct {
	AuthorID int    `json:"authorId"`
	Name     string `json:"name"`
}

// BookHistoryDTO is one history snapshot rendered for the API.
type BookHistoryDTO struct {
	HistoryID   int64      `json:"historyId"`
	BookID      int        `json:"bookId"`
	Title       string     `json:"title"`
	Publisher   string     `json:"publisher"`
	Price       *string    `json:"price"`
	UpdatedDate *time.Time `json:"updatedDate"`
}

// ========================================
// RECONCILIATION DTOs
// ========================================

// RawBookAuthorRow is one externally-sourced tuple: a book, an author
// and the link between them, flattened the way the spreadsheet carries it.
type RawBookAuthorRow struct {
	BookID    int                 `json:"bookId"`
	Title     string              `json:"title"`
	Publisher *string             `json:"publisher"`
	Price     decimal.NullDecimal `json:"price"`
	AuthorID  int                 `json:"authorId"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	PenName   *string             `json:"penName"`
}

// ReconcileBatchRequest is the JSON body of the upsert endpoint.
// Policy is optional; empty falls back to the configured default.
type ReconcileBatchRequest struct {
	Policy string             `json:"policy"`
	Rows   []RawBookAuthorRow `json:"rows"`
}

// ReconcileSummary reports what one committed batch changed.
type ReconcileSummary struct {
	CreatedBooks   int `json:"createdBooks"`
	UpdatedBooks   int `json:"updatedBooks"`
	CreatedAuthors int `json:"createdAuthors"`
	UpdatedAuthors int `json:"updatedAuthors"`
	CreatedLinks   int `json:"createdLinks"`
}

// Describe renders the summary for human display.
func (s ReconcileSummary) Describe() string {
	return fmt.Sprintf(
		"Created books: %d, authors: %d, links: %d; updated books: %d, authors: %d",
		s.CreatedBooks, s.CreatedAuthors, s.CreatedLinks, s.UpdatedBooks, s.UpdatedAuthors,
	)
}

// ========================================
// IMPORT DTOs
// ========================================

// RowError records one malformed spreadsheet row. The row is excluded
// from the batch; the rest proceeds.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ImportResult is the outcome of one spreadsheet import.
type ImportResult struct {
	TotalRows  int              `json:"totalRows"`
	ValidRows  int              `json:"validRows"`
	RowErrors  []RowError       `json:"rowErrors,omitempty"`
	Summary    ReconcileSummary `json:"summary"`
	ArchiveKey string           `json:"archiveKey,omitempty"`
}
