package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/query"
	"library-api/internal/domains/catalog/repository"
	pkgcache "library-api/pkg/cache"
)

const (
	authorOptionsCacheKey = "catalog:authors:dropdown"
	authorOptionsCacheTTL = 5 * time.Minute
)

// CatalogService serves the read side of the catalog: paged book
// listings with embedded author projections, per-book change history
// and the author dropdown.
type CatalogService struct {
	repo      repository.Interface
	cache     pkgcache.Cache
	validator *query.Validator
}

func NewCatalogService(repo repository.Interface, cache pkgcache.Cache, validator *query.Validator) *CatalogService {
	return &CatalogService{
		repo:      repo,
		cache:     cache,
		validator: validator,
	}
}

// ListBooks validates the raw request, fetches one page of books with
// an exact total count and projects linked authors onto each item.
func (s *CatalogService) ListBooks(ctx context.Context, req model.PagedBooksRequest) (model.PagedBooks, error) {
	params, err := s.validator.Validate(req)
	if err != nil {
		return model.PagedBooks{}, err
	}

	books, totalCount, err := s.repo.ListBooksPaged(ctx, params)
	if err != nil {
		return model.PagedBooks{}, err
	}

	items, err := s.projectAuthors(ctx, books)
	if err != nil {
		return model.PagedBooks{}, err
	}

	return model.PagedBooks{
		Items:      items,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}, nil
}

// projectAuthors fetches the linked authors for the given page of books
// in a single query and assembles the outward DTOs. Optional text
// fields coerce to empty strings on the way out.
func (s *CatalogService) projectAuthors(ctx context.Context, books []model.Book) ([]model.BookWithAuthorsDTO, error) {
	items := make([]model.BookWithAuthorsDTO, 0, len(books))
	if len(books) == 0 {
		return items, nil
	}

	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.BookID)
	}

	linked, err := s.repo.ListAuthorsForBooks(ctx, ids)
	if err != nil {
		return nil, err
	}

	byBook := make(map[int][]model.AuthorDTO, len(books))
	for _, la := range linked {
		byBook[la.BookID] = append(byBook[la.BookID], model.AuthorDTO{
			AuthorID:  la.AuthorID,
			FirstName: la.FirstName,
			LastName:  la.LastName,
		})
	}

	for _, b := range books {
		authors := byBook[b.BookID]
		if authors == nil {
			authors = []model.AuthorDTO{}
		}
		item := model.BookWithAuthorsDTO{
			BookID:      b.BookID,
			Title:       b.Title,
			Authors:     authors,
			AuthorCount: len(authors),
		}
		if b.Publisher != nil {
			item.Publisher = *b.Publisher
		}
		if b.Price.Valid {
			price := b.Price.Decimal.StringFixed(2)
			item.Price = &price
		}
		items = append(items, item)
	}
	return items, nil
}

// AuthorOptions returns the id/display-name pairs backing client-side
// author pickers. Results are cached briefly; reconciliation batches
// invalidate the entry on commit.
func (s *CatalogService) AuthorOptions(ctx context.Context) ([]model.AuthorOption, error) {
	if s.cache != nil {
		var cached []model.AuthorOption
		hit, err := s.cache.Get(ctx, authorOptionsCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("author options cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	options, err := s.repo.ListAuthorOptions(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, authorOptionsCacheKey, options, authorOptionsCacheTTL); err != nil {
			log.Warn().Err(err).Msg("author options cache write failed")
		}
	}
	return options, nil
}

// BookHistory returns the archived snapshots for one book, most recent
// first. A book that never changed has an empty history.
func (s *CatalogService) BookHistory(ctx context.Context, bookID int) ([]model.BookHistoryDTO, error) {
	history, err := s.repo.ListBookHistory(ctx, bookID)
	if err != nil {
		return nil, err
	}

	dtos := make([]model.BookHistoryDTO, 0, len(history))
	for _, h := range history {
		dto := model.BookHistoryDTO{
			HistoryID:   h.HistoryID,
			BookID:      h.BookID,
			Title:       h.Title,
			UpdatedDate: h.UpdatedDate,
		}
		if h.Publisher != nil {
			dto.Publisher = *h.Publisher
		}
		if h.Price.Valid {
			price := h.Price.Decimal.StringFixed(2)
			dto.Price = &price
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
