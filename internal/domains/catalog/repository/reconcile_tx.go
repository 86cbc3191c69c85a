package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"library-api/internal/domains/catalog/model"
)

// reconcileTx implements ReconcileTx over one pgx transaction.
type reconcileTx struct {
	tx pgx.Tx
}

func (t *reconcileTx) GetBooks(ctx context.Context, ids []int) (map[int]model.Book, error) {
	books := make(map[int]model.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	sql := `
		SELECT book_id, title, publisher, price, updated_date
		FROM books
		WHERE book_id = ANY($1)
	`

	rows, err := t.tx.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("books lookup failed: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}

	for _, b := range list {
		books[b.BookID] = b
	}
	return books, nil
}

func (t *reconcileTx) GetAuthors(ctx context.Context, ids []int) (map[int]model.Author, error) {
	authors := make(map[int]model.Author, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	sql := `
		SELECT author_id, first_name, last_name, pen_name, updated_date
		FROM authors
		WHERE author_id = ANY($1)
	`

	rows, err := t.tx.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("authors lookup failed: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}

	for _, a := range list {
		authors[a.AuthorID] = a
	}
	return authors, nil
}

func (t *reconcileTx) GetLinks(ctx context.Context, bookIDs []int) (map[model.LinkKey]struct{}, error) {
	links := make(map[model.LinkKey]struct{})
	if len(bookIDs) == 0 {
		return links, nil
	}

	sql := `SELECT book_id, author_id FROM book_authors WHERE book_id = ANY($1)`

	rows, err := t.tx.Query(ctx, sql, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("links lookup failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key model.LinkKey
		if err := rows.Scan(&key.BookID, &key.AuthorID); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return links, nil
}

func (t *reconcileTx) InsertBook(ctx context.Context, b model.Book) error {
	sql := `
		INSERT INTO books (book_id, title, publisher, price, updated_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, sql, b.BookID, b.Title, b.Publisher, b.Price, b.UpdatedDate); err != nil {
		return fmt.Errorf("failed to insert book %d: %w", b.BookID, err)
	}
	return nil
}

func (t *reconcileTx) UpdateBook(ctx context.Context, b model.Book) error {
	sql := `
		UPDATE books
		SET title = $1, publisher = $2, price = $3, updated_date = $4
		WHERE book_id = $5
	`
	result, err := t.tx.Exec(ctx, sql, b.Title, b.Publisher, b.Price, b.UpdatedDate, b.BookID)
	if err != nil {
		return fmt.Errorf("failed to update book %d: %w", b.BookID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update book %d: %w", b.BookID, model.ErrBookNotFound)
	}
	return nil
}

func (t *reconcileTx) InsertBookHistory(ctx context.Context, h model.BookHistory) error {
	sql := `
		INSERT INTO book_history (book_id, title, publisher, price, updated_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, sql, h.BookID, h.Title, h.Publisher, h.Price, h.UpdatedDate); err != nil {
		return fmt.Errorf("failed to insert book history for %d: %w", h.BookID, err)
	}
	return nil
}

func (t *reconcileTx) InsertAuthor(ctx context.Context, a model.Author) error {
	sql := `
		INSERT INTO authors (author_id, first_name, last_name, pen_name, updated_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, sql, a.AuthorID, a.FirstName, a.LastName, a.PenName, a.UpdatedDate); err != nil {
		return fmt.Errorf("failed to insert author %d: %w", a.AuthorID, err)
	}
	return nil
}

func (t *reconcileTx) UpdateAuthor(ctx context.Context, a model.Author) error {
	sql := `
		UPDATE authors
		SET first_name = $1, last_name = $2, pen_name = $3, updated_date = $4
		WHERE author_id = $5
	`
	result, err := t.tx.Exec(ctx, sql, a.FirstName, a.LastName, a.PenName, a.UpdatedDate, a.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to update author %d: %w", a.AuthorID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update author %d: no such row", a.AuthorID)
	}
	return nil
}

func (t *reconcileTx) InsertAuthorHistory(ctx context.Context, h model.AuthorHistory) error {
	sql := `
		INSERT INTO author_history (author_id, first_name, last_name, pen_name, updated_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := t.tx.Exec(ctx, sql, h.AuthorID, h.FirstName, h.LastName, h.PenName, h.UpdatedDate); err != nil {
		return fmt.Errorf("failed to insert author history for %d: %w", h.AuthorID, err)
	}
	return nil
}

func (t *reconcileTx) InsertLink(ctx context.Context, l model.BookAuthor) error {
	sql := `INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2)`
	if _, err := t.tx.Exec(ctx, sql, l.BookID, l.AuthorID); err != nil {
		return fmt.Errorf("failed to insert link (%d, %d): %w", l.BookID, l.AuthorID, err)
	}
	return nil
}
