package service

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"library-api/internal/domains/catalog/model"
	"library-api/internal/domains/catalog/query"
	"library-api/internal/domains/catalog/repository"
)

// fakeStore is an in-memory repository.Interface for service tests.
// Reconcile hands the service a transaction view over the same maps, so
// assertions can inspect the committed state directly.
type fakeStore struct {
	books   map[int]model.Book
	authors map[int]model.Author
	links   map[model.LinkKey]struct{}

	bookHistory   []model.BookHistory
	authorHistory []model.AuthorHistory

	pagedBooks    []model.Book
	pagedTotal    int
	linkedAuthors []model.LinkedAuthor
	options       []model.AuthorOption
	history       []model.BookHistory
	exportRows    []model.RawBookAuthorRow

	reconcileErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:   make(map[int]model.Book),
		authors: make(map[int]model.Author),
		links:   make(map[model.LinkKey]struct{}),
	}
}

func (s *fakeStore) ListBooksPaged(ctx context.Context, p query.Params) ([]model.Book, int, error) {
	return s.pagedBooks, s.pagedTotal, nil
}

func (s *fakeStore) ListAuthorsForBooks(ctx context.Context, bookIDs []int) ([]model.LinkedAuthor, error) {
	return s.linkedAuthors, nil
}

func (s *fakeStore) ListAuthorOptions(ctx context.Context) ([]model.AuthorOption, error) {
	return s.options, nil
}

func (s *fakeStore) ListBookHistory(ctx context.Context, bookID int) ([]model.BookHistory, error) {
	return s.history, nil
}

func (s *fakeStore) ListExportRows(ctx context.Context, limit int) ([]model.RawBookAuthorRow, error) {
	if limit < len(s.exportRows) {
		return s.exportRows[:limit], nil
	}
	return s.exportRows, nil
}

func (s *fakeStore) Reconcile(ctx context.Context, fn func(tx repository.ReconcileTx) error) error {
	if s.reconcileErr != nil {
		return s.reconcileErr
	}
	return fn(&fakeTx{store: s})
}

// fakeTx implements repository.ReconcileTx over the fakeStore maps.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetBooks(ctx context.Context, ids []int) (map[int]model.Book, error) {
	result := make(map[int]model.Book)
	for _, id := range ids {
		if b, ok := t.store.books[id]; ok {
			result[id] = b
		}
	}
	return result, nil
}

func (t *fakeTx) GetAuthors(ctx context.Context, ids []int) (map[int]model.Author, error) {
	result := make(map[int]model.Author)
	for _, id := range ids {
		if a, ok := t.store.authors[id]; ok {
			result[id] = a
		}
	}
	return result, nil
}

func (t *fakeTx) GetLinks(ctx context.Context, bookIDs []int) (map[model.LinkKey]struct{}, error) {
	result := make(map[model.LinkKey]struct{})
	for _, id := range bookIDs {
		for key := range t.store.links {
			if key.BookID == id {
				result[key] = struct{}{}
			}
		}
	}
	return result, nil
}

func (t *fakeTx) InsertBook(ctx context.Context, b model.Book) error {
	t.store.books[b.BookID] = b
	return nil
}

func (t *fakeTx) UpdateBook(ctx context.Context, b model.Book) error {
	if _, ok := t.store.books[b.BookID]; !ok {
		return model.ErrBookNotFound
	}
	t.store.books[b.BookID] = b
	return nil
}

func (t *fakeTx) InsertBookHistory(ctx context.Context, h model.BookHistory) error {
	t.store.bookHistory = append(t.store.bookHistory, h)
	return nil
}

func (t *fakeTx) InsertAuthor(ctx context.Context, a model.Author) error {
	t.store.authors[a.AuthorID] = a
	return nil
}

func (t *fakeTx) UpdateAuthor(ctx context.Context, a model.Author) error {
	t.store.authors[a.AuthorID] = a
	return nil
}

func (t *fakeTx) InsertAuthorHistory(ctx context.Context, h model.AuthorHistory) error {
	t.store.authorHistory = append(t.store.authorHistory, h)
	return nil
}

func (t *fakeTx) InsertLink(ctx context.Context, l model.BookAuthor) error {
	t.store.links[model.LinkKey(l)] = struct{}{}
	return nil
}

// fixedClock pins service timestamps for assertions.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeEnqueuer records enqueued tasks.
type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (e *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

// fakeUploader records uploaded objects.
type fakeUploader struct {
	objects map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	u.objects[key] = data
	return nil
}
