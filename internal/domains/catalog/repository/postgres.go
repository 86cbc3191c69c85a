package repository

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/query"
	"library-api/pkg/database"
)

const dialectPostgres = "postgres"

// postgresRepository - raw SQL with pgxpool for the static queries,
// goqu for the dynamic paged query plan.
type postgresRepository struct {
	pool  *pgxpool.Pool
	sorts *query.SortRegistry
}

// NewPostgresRepository builds the catalog store. The sort registry is
// the same instance the validator was constructed with, so every key
// that passes validation resolves here.
func NewPostgresRepository(pool *pgxpool.Pool, sorts *query.SortRegistry) Interface {
	return &postgresRepository{
		pool:  pool,
		sorts: sorts,
	}
}

// ========================================
// PAGED QUERY PLAN
// ========================================

// booksFilter builds the filter predicate shared by the count and the
// window query.
func booksFilter(p query.Params) []goqu.Expression {
	var conds []goqu.Expression
	if p.AuthorID > 0 {
		conds = append(conds, goqu.L(
			`EXISTS (SELECT 1 FROM book_authors ba WHERE ba.book_id = b.book_id AND ba.author_id = ?)`,
			p.AuthorID,
		))
	}
	return conds
}

func buildCountBooksSQL(p query.Params) (string, []interface{}, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("books").As("b")).
		Select(goqu.COUNT(goqu.Star())).
		Where(booksFilter(p)...)

	return ds.Prepared(true).ToSQL()
}

func buildPagedBooksSQL(p query.Params, order query.OrderFunc) (string, []interface{}, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("books").As("b")).
		Select(
			goqu.I("b.book_id"),
			goqu.I("b.title"),
			goqu.I("b.publisher"),
			goqu.I("b.price"),
			goqu.I("b.updated_date"),
		).
		Where(booksFilter(p)...).
		// Ties on the sort key break on book_id so paging is stable
		// across calls.
		Order(order(p.Descending), goqu.I("b.book_id").Asc()).
		Limit(uint(p.PageSize)).
		Offset(uint(p.Offset()))

	return ds.Prepared(true).ToSQL()
}

func (r *postgresRepository) ListBooksPaged(ctx context.Context, p query.Params) ([]model.Book, int, error) {
	order, ok := r.sorts.Lookup(p.Sort)
	if !ok {
		return nil, 0, fmt.Errorf("unregistered sort key %q", p.Sort)
	}

	countSQL, countArgs, err := buildCountBooksSQL(p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	pageSQL, pageArgs, err := buildPagedBooksSQL(p, order)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build page query: %w", err)
	}

	var books []model.Book
	var totalCount int

	// Count and window run in one read-only transaction so both see the
	// same snapshot.
	err = database.WithReadOnlyTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
			return fmt.Errorf("count query failed: %w", err)
		}

		rows, err := tx.Query(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("page query failed: %w", err)
		}

		books, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
		if err != nil {
			return fmt.Errorf("collect rows failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return books, totalCount, nil
}

// ========================================
// PROJECTION SUPPORT
// ========================================

func (r *postgresRepository) ListAuthorsForBooks(ctx context.Context, bookIDs []int) ([]model.LinkedAuthor, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	sql := `
		SELECT ba.book_id, a.author_id, a.first_name, a.last_name
		FROM book_authors ba
		JOIN authors a ON a.author_id = ba.author_id
		WHERE ba.book_id = ANY($1)
		ORDER BY ba.book_id, ba.author_id
	`

	rows, err := r.pool.Query(ctx, sql, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("linked authors query failed: %w", err)
	}

	links, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.LinkedAuthor])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}

	return links, nil
}

// ========================================
// LOOKUPS
// ========================================

func (r *postgresRepository) ListAuthorOptions(ctx context.Context) ([]model.AuthorOption, error) {
	sql := `
		SELECT author_id, TRIM(first_name || ' ' || last_name) AS name
		FROM authors
		ORDER BY last_name, first_name, author_id
	`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("author options query failed: %w", err)
	}
	defer rows.Close()

	options := []model.AuthorOption{}
	for rows.Next() {
		var opt model.AuthorOption
		if err := rows.Scan(&opt.AuthorID, &opt.Name); err != nil {
			return nil, fmt.Errorf("scan author option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return options, nil
}

func (r *postgresRepository) ListBookHistory(ctx context.Context, bookID int) ([]model.BookHistory, error) {
	sql := `
		SELECT history_id, book_id, title, publisher, price, updated_date
		FROM book_history
		WHERE book_id = $1
		ORDER BY history_id DESC
	`

	rows, err := r.pool.Query(ctx, sql, bookID)
	if err != nil {
		return nil, fmt.Errorf("book history query failed: %w", err)
	}

	history, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.BookHistory])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}

	return history, nil
}

func (r *postgresRepository) ListExportRows(ctx context.Context, limit int) ([]model.RawBookAuthorRow, error) {
	sql := `
		SELECT b.book_id, b.title, b.publisher, b.price,
		       a.author_id, a.first_name, a.last_name, a.pen_name
		FROM book_authors ba
		JOIN books b ON b.book_id = ba.book_id
		JOIN authors a ON a.author_id = ba.author_id
		ORDER BY ba.book_id, ba.author_id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("export query failed: %w", err)
	}
	defer rows.Close()

	result := []model.RawBookAuthorRow{}
	for rows.Next() {
		var row model.RawBookAuthorRow
		if err := rows.Scan(
			&row.BookID, &row.Title, &row.Publisher, &row.Price,
			&row.AuthorID, &row.FirstName, &row.LastName, &row.PenName,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// ========================================
// RECONCILIATION
// ========================================

// Reconcile wraps fn in a single transaction. A storage failure or an
// error from fn rolls back every mutation and history row of the batch.
func (r *postgresRepository) Reconcile(ctx context.Context, fn func(tx ReconcileTx) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&reconcileTx{tx: tx})
	})
}
