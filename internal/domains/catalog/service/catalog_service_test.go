package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/query"
)

func newCatalogService(store *fakeStore) *CatalogService {
	registry := query.NewSortRegistry()
	return NewCatalogService(store, nil, query.NewValidator(registry))
}

func Test_ListBooks_ProjectsLinkedAuthors(t *testing.T) {
	store := newFakeStore()
	store.pagedBooks = []model.Book{
		{BookID: 1, Title: "Dune", Publisher: strPtr("Chilton"), Price: price("9.99")},
		{BookID: 2, Title: "Orphan"},
	}
	store.pagedTotal = 25
	store.linkedAuthors = []model.LinkedAuthor{
		{BookID: 1, AuthorID: 10, FirstName: "Frank", LastName: "Herbert"},
		{BookID: 1, AuthorID: 11, FirstName: "Kevin", LastName: "Anderson"},
	}

	svc := newCatalogService(store)

	page, err := svc.ListBooks(context.Background(), model.PagedBooksRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 25, page.TotalCount)
	require.Len(t, page.Items, 2)

	dune := page.Items[0]
	assert.Equal(t, 2, dune.AuthorCount)
	require.Len(t, dune.Authors, 2)
	assert.Equal(t, "Frank", dune.Authors[0].FirstName)
	assert.Equal(t, "Chilton", dune.Publisher)
	require.NotNil(t, dune.Price)
	assert.Equal(t, "9.99", *dune.Price)

	// A book without links renders an empty list, never null, and
	// absent optional columns coerce the same way history does.
	orphan := page.Items[1]
	assert.Equal(t, 0, orphan.AuthorCount)
	assert.NotNil(t, orphan.Authors)
	assert.Empty(t, orphan.Authors)
	assert.Equal(t, "", orphan.Publisher)
	assert.Nil(t, orphan.Price)
}

func Test_ListBooks_ValidationFailsBeforeStoreAccess(t *testing.T) {
	tests := []struct {
		name  string
		req   model.PagedBooksRequest
		field string
	}{
		{
			name:  "zero_page",
			req:   model.PagedBooksRequest{Page: 0, PageSize: 10},
			field: "page",
		},
		{
			name:  "negative_page_size",
			req:   model.PagedBooksRequest{Page: 1, PageSize: -5},
			field: "pageSize",
		},
		{
			name:  "unknown_sort_key",
			req:   model.PagedBooksRequest{Page: 1, PageSize: 10, SortBy: "isbn"},
			field: "sortBy",
		},
		{
			name:  "bad_direction",
			req:   model.PagedBooksRequest{Page: 1, PageSize: 10, SortDirection: "sideways"},
			field: "sortDirection",
		},
		{
			name:  "negative_author_filter",
			req:   model.PagedBooksRequest{Page: 1, PageSize: 10, AuthorID: -1},
			field: "authorId",
		},
	}

	svc := newCatalogService(newFakeStore())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ListBooks(context.Background(), tc.req)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func Test_BookHistory_CoercesOptionalFields(t *testing.T) {
	store := newFakeStore()
	store.history = []model.BookHistory{
		{HistoryID: 2, BookID: 1, Title: "Dune Messiah", Publisher: strPtr("Ace"), Price: price("12.50")},
		{HistoryID: 1, BookID: 1, Title: "Dune"},
	}

	svc := newCatalogService(store)

	history, err := svc.BookHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "Ace", history[0].Publisher)
	require.NotNil(t, history[0].Price)
	assert.Equal(t, "12.50", *history[0].Price)

	assert.Equal(t, "", history[1].Publisher)
	assert.Nil(t, history[1].Price)
}

func Test_AuthorOptions_FallsBackToStoreWithoutCache(t *testing.T) {
	store := newFakeStore()
	store.options = []model.AuthorOption{
		{AuthorID: 10, Name: "Frank Herbert"},
	}

	svc := newCatalogService(store)

	options, err := svc.AuthorOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Frank Herbert", options[0].Name)
}
