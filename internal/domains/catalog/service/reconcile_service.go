package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/repository"
	pkgcache "library-api/pkg/cache"
)

// Policy decides how a batch treats references to unknown entity ids.
type Policy string

const (
	// PolicyStrict aborts the whole batch when any referenced id is
	// missing, naming every missing book and author id.
	PolicyStrict Policy = "strict"

	// PolicyAutoCreate treats a missing id as a creation signal.
	PolicyAutoCreate Policy = "auto-create"
)

// ParsePolicy validates a caller-supplied policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyAutoCreate:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown reconcile policy %q: must be %q or %q", s, PolicyStrict, PolicyAutoCreate)
	}
}

// ReconcileService ingests batches of raw book-author tuples: it
// validates referential existence, diffs against current store state,
// snapshots pre-mutation values into history and applies all changes in
// one transaction.
type ReconcileService struct {
	repo  repository.Interface
	cache pkgcache.Cache
	now   func() time.Time
}

func NewReconcileService(repo repository.Interface, cache pkgcache.Cache) *ReconcileService {
	return &ReconcileService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Reconcile applies one batch under the given policy. Tuples with a
// zero book or author id are discarded up front. Rows are processed in
// order; every mutation and history snapshot commits atomically or not
// at all.
func (s *ReconcileService) Reconcile(ctx context.Context, rows []model.RawBookAuthorRow, policy Policy) (model.ReconcileSummary, error) {
	usable := make([]model.RawBookAuthorRow, 0, len(rows))
	for _, row := range rows {
		if row.BookID == 0 || row.AuthorID == 0 {
			continue
		}
		usable = append(usable, row)
	}
	if len(usable) == 0 {
		return model.ReconcileSummary{}, model.ErrEmptyBatch
	}

	bookIDs, authorIDs := distinctIDs(usable)

	var summary model.ReconcileSummary

	err := s.repo.Reconcile(ctx, func(tx repository.ReconcileTx) error {
		// Current state is re-read inside the transaction on every
		// batch; nothing is carried over from previous requests.
		books, err := tx.GetBooks(ctx, bookIDs)
		if err != nil {
			return err
		}
		authors, err := tx.GetAuthors(ctx, authorIDs)
		if err != nil {
			return err
		}

		if policy == PolicyStrict {
			if refErr := missingReferences(bookIDs, authorIDs, books, authors); refErr != nil {
				return refErr
			}
		}

		// Working set of link pairs, seeded from the store and updated
		// in memory as the batch creates links.
		links, err := tx.GetLinks(ctx, bookIDs)
		if err != nil {
			return err
		}

		for _, row := range usable {
			if err := s.applyBook(ctx, tx, row, books, &summary); err != nil {
				return err
			}
			if err := s.applyAuthor(ctx, tx, row, authors, &summary); err != nil {
				return err
			}

			key := model.LinkKey{BookID: row.BookID, AuthorID: row.AuthorID}
			if _, exists := links[key]; !exists {
				if err := tx.InsertLink(ctx, model.BookAuthor(key)); err != nil {
					return err
				}
				links[key] = struct{}{}
				summary.CreatedLinks++
			}
		}

		return nil
	})
	if err != nil {
		return model.ReconcileSummary{}, err
	}

	s.invalidateAuthorOptions(ctx)

	log.Info().
		Int("created_books", summary.CreatedBooks).
		Int("updated_books", summary.UpdatedBooks).
		Int("created_authors", summary.CreatedAuthors).
		Int("updated_authors", summary.UpdatedAuthors).
		Int("created_links", summary.CreatedLinks).
		Msg("reconciliation batch committed")

	return summary, nil
}

// applyBook creates or diffs-then-updates the book referenced by one
// tuple, writing a history snapshot of the current values before any
// mutation. The in-memory map is kept current so later tuples in the
// same batch diff against what the batch already wrote.
func (s *ReconcileService) applyBook(ctx context.Context, tx repository.ReconcileTx, row model.RawBookAuthorRow, books map[int]model.Book, summary *model.ReconcileSummary) error {
	incoming := normalizeBook(row)

	current, exists := books[row.BookID]
	if !exists {
		now := s.now()
		incoming.UpdatedDate = &now
		if err := tx.InsertBook(ctx, incoming); err != nil {
			return err
		}
		books[row.BookID] = incoming
		summary.CreatedBooks++
		return nil
	}

	if !bookChanged(current, incoming) {
		return nil
	}

	// History holds the pre-change values and the prior stamp, and is
	// written before the live row moves.
	if err := tx.InsertBookHistory(ctx, model.BookHistory{
		BookID:      current.BookID,
		Title:       current.Title,
		Publisher:   current.Publisher,
		Price:       current.Price,
		UpdatedDate: current.UpdatedDate,
	}); err != nil {
		return err
	}

	now := s.now()
	incoming.UpdatedDate = &now
	if err := tx.UpdateBook(ctx, incoming); err != nil {
		return err
	}
	books[row.BookID] = incoming
	summary.UpdatedBooks++
	return nil
}

func (s *ReconcileService) applyAuthor(ctx context.Context, tx repository.ReconcileTx, row model.RawBookAuthorRow, authors map[int]model.Author, summary *model.ReconcileSummary) error {
	incoming := normalizeAuthor(row)

	current, exists := authors[row.AuthorID]
	if !exists {
		now := s.now()
		incoming.UpdatedDate = &now
		if err := tx.InsertAuthor(ctx, incoming); err != nil {
			return err
		}
		authors[row.AuthorID] = incoming
		summary.CreatedAuthors++
		return nil
	}

	if !authorChanged(current, incoming) {
		return nil
	}

	if err := tx.InsertAuthorHistory(ctx, model.AuthorHistory{
		AuthorID:    current.AuthorID,
		FirstName:   current.FirstName,
		LastName:    current.LastName,
		PenName:     current.PenName,
		UpdatedDate: current.UpdatedDate,
	}); err != nil {
		return err
	}

	now := s.now()
	incoming.UpdatedDate = &now
	if err := tx.UpdateAuthor(ctx, incoming); err != nil {
		return err
	}
	authors[row.AuthorID] = incoming
	summary.UpdatedAuthors++
	return nil
}

func (s *ReconcileService) invalidateAuthorOptions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, authorOptionsCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate author options cache")
	}
}

// ========================================
// NORMALIZATION & DIFFING
// ========================================

// normalizeBook trims free text and rounds the price to two fractional
// digits. Required fields coerce to empty string; optional fields stay
// nil when absent.
func normalizeBook(row model.RawBookAuthorRow) model.Book {
	return model.Book{
		BookID:    row.BookID,
		Title:     strings.TrimSpace(row.Title),
		Publisher: trimOptional(row.Publisher),
		Price:     roundPrice(row.Price),
	}
}

func normalizeAuthor(row model.RawBookAuthorRow) model.Author {
	return model.Author{
		AuthorID:  row.AuthorID,
		FirstName: strings.TrimSpace(row.FirstName),
		LastName:  strings.TrimSpace(row.LastName),
		PenName:   trimOptional(row.PenName),
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func roundPrice(p decimal.NullDecimal) decimal.NullDecimal {
	if !p.Valid {
		return p
	}
	return decimal.NullDecimal{Decimal: p.Decimal.Round(2), Valid: true}
}

func bookChanged(current, incoming model.Book) bool {
	if current.Title != incoming.Title {
		return true
	}
	if !equalOptionalText(current.Publisher, incoming.Publisher) {
		return true
	}
	return !equalPrice(current.Price, incoming.Price)
}

func authorChanged(current, incoming model.Author) bool {
	if current.FirstName != incoming.FirstName || current.LastName != incoming.LastName {
		return true
	}
	return !equalOptionalText(current.PenName, incoming.PenName)
}

func equalOptionalText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalPrice(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return a.Decimal.Equal(b.Decimal)
}

// ========================================
// REFERENCE CHECKS
// ========================================

func distinctIDs(rows []model.RawBookAuthorRow) (bookIDs, authorIDs []int) {
	seenBooks := make(map[int]struct{})
	seenAuthors := make(map[int]struct{})

	for _, row := range rows {
		if _, ok := seenBooks[row.BookID]; !ok {
			seenBooks[row.BookID] = struct{}{}
			bookIDs = append(bookIDs, row.BookID)
		}
		if _, ok := seenAuthors[row.AuthorID]; !ok {
			seenAuthors[row.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, row.AuthorID)
		}
	}
	return bookIDs, authorIDs
}

// missingReferences returns a MissingReferencesError naming every
// referenced id absent from the store, or nil when all exist.
func missingReferences(bookIDs, authorIDs []int, books map[int]model.Book, authors map[int]model.Author) error {
	var missing model.MissingReferencesError

	for _, id := range bookIDs {
		if _, ok := books[id]; !ok {
			missing.BookIDs = append(missing.BookIDs, id)
		}
	}
	for _, id := range authorIDs {
		if _, ok := authors[id]; !ok {
			missing.AuthorIDs = append(missing.AuthorIDs, id)
		}
	}

	if len(missing.BookIDs) == 0 && len(missing.AuthorIDs) == 0 {
		return nil
	}

	sort.Ints(missing.BookIDs)
	sort.Ints(missing.AuthorIDs)
	return &missing
}
