package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a live catalog row. Publisher and Price are optional and stay
// NULL when absent; Title is required and never NULL.
type Book struct {
	BookID      int                 `json:"bookId" db:"book_id"`
	Title       string              `json:"title" db:"title"`
	Publisher   *string             `json:"publisher" db:"publisher"`
	Price       decimal.NullDecimal `json:"price" db:"price"`
	UpdatedDate *time.Time          `json:"updatedDate" db:"updated_date"`
}

type Author struct {
	AuthorID    int        `json:"authorId" db:"author_id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	PenName     *string    `json:"penName" db:"pen_name"`
	UpdatedDate *time.Time `json:"updatedDate" db:"updated_date"`
}

// BookAuthor is one link row. The (BookID, AuthorID) pair is unique and
// link rows are only ever created, never updated.
type BookAuthor struct {
	BookID   int `json:"bookId" db:"book_id"`
	AuthorID int `json:"authorId" db:"author_id"`
}

// LinkKey identifies a link row in the reconciler's working set.
type LinkKey struct {
	BookID   int
	AuthorID int
}

// BookHistory is an append-only snapshot of a book's values immediately
// before a mutation. UpdatedDate is the prior stamp, not the new one.
type BookHistory struct {
	HistoryID   int64               `json:"historyId" db:"history_id"`
	BookID      int                 `json:"bookId" db:"book_id"`
	Title       string              `json:"title" db:"title"`
	Publisher   *string             `json:"publisher" db:"publisher"`
	Price       decimal.NullDecimal `json:"price" db:"price"`
	UpdatedDate *time.Time          `json:"updatedDate" db:"updated_date"`
}

type AuthorHistory struct {
	HistoryID   int64      `json:"historyId" db:"history_id"`
	AuthorID    int        `json:"authorId" db:"author_id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	PenName     *string    `json:"penName" db:"pen_name"`
	UpdatedDate *time.Time `json:"updatedDate" db:"updated_date"`
}

// LinkedAuthor is a link row joined with its author, used to project the
// nested author list for a page of books.
type LinkedAuthor struct {
	BookID    int    `db:"book_id"`
	AuthorID  int    `db:"author_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}
