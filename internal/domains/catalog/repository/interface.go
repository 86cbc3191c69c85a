package repository

import (
	"context"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/query"
)

// Interface is the catalog's entity store contract.
type Interface interface {
	// ListBooksPaged runs the paged query plan: exact count of matching
	// books and the window for the requested page, both against the same
	// filter predicate in one consistent snapshot.
	ListBooksPaged(ctx context.Context, p query.Params) ([]model.Book, int, error)

	// ListAuthorsForBooks loads the link rows joined with authors for a
	// window of book ids, ordered by (book_id, author_id).
	ListAuthorsForBooks(ctx context.Context, bookIDs []int) ([]model.LinkedAuthor, error)

	// ListAuthorOptions returns all authors as dropdown options.
	ListAuthorOptions(ctx context.Context) ([]model.AuthorOption, error)

	// ListBookHistory returns a book's history snapshots, newest first.
	ListBookHistory(ctx context.Context, bookID int) ([]model.BookHistory, error)

	// ListExportRows returns flat book-author rows ordered by
	// (book_id, author_id), capped at limit.
	ListExportRows(ctx context.Context, limit int) ([]model.RawBookAuthorRow, error)

	// Reconcile runs fn inside a single transaction. Either every
	// mutation fn performs commits, or none do.
	Reconcile(ctx context.Context, fn func(tx ReconcileTx) error) error
}

// ReconcileTx is the transaction-scoped store surface the reconciler
// mutates through. All reads reflect current state inside the
// transaction, never a cache.
type ReconcileTx interface {
	GetBooks(ctx context.Context, ids []int) (map[int]model.Book, error)
	GetAuthors(ctx context.Context, ids []int) (map[int]model.Author, error)
	GetLinks(ctx context.Context, bookIDs []int) (map[model.LinkKey]struct{}, error)

	InsertBook(ctx context.Context, b model.Book) error
	UpdateBook(ctx context.Context, b model.Book) error
	InsertBookHistory(ctx context.Context, h model.BookHistory) error

	InsertAuthor(ctx context.Context, a model.Author) error
	UpdateAuthor(ctx context.Context, a model.Author) error
	InsertAuthorHistory(ctx context.Context, h model.AuthorHistory) error

	InsertLink(ctx context.Context, l model.BookAuthor) error
}
