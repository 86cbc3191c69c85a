package query

import (
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// SortKey is one entry of the sort allow-list.
type SortKey string

const (
	SortByTitle       SortKey = "title"
	SortByPublisher   SortKey = "publisher"
	SortByPrice       SortKey = "price"
	SortByAuthorCount SortKey = "authorCount"
	SortByFirstName   SortKey = "firstName"
	SortByLastName    SortKey = "lastName"

	// DefaultSortKey applies when the caller sends no sortBy at all.
	DefaultSortKey = SortByTitle
)

// OrderFunc produces the ordering expression for one sort key.
// Nullable keys sort NULLS LAST ascending and NULLS FIRST descending,
// so books without authors always trail in the natural direction.
type OrderFunc func(descending bool) exp.OrderedExpression

// SortRegistry maps sort keys to ordering expressions. New keys are
// added by registration; the registry is frozen after construction and
// shared read-only between the validator and the query builder.
type SortRegistry struct {
	entries map[SortKey]OrderFunc
}

func NewSortRegistry() *SortRegistry {
	r := &SortRegistry{entries: make(map[SortKey]OrderFunc)}

	r.Register(SortByTitle, columnOrder(goqu.I("b.title")))
	r.Register(SortByPublisher, columnOrder(goqu.I("b.publisher")))
	r.Register(SortByPrice, columnOrder(goqu.I("b.price")))
	r.Register(SortByAuthorCount, literalOrder(goqu.L(
		`(SELECT COUNT(*) FROM book_authors ba WHERE ba.book_id = b.book_id)`,
	)))
	// For name keys the comparison value is the name of the linked
	// author with the lowest author id, NULL when the book has no links.
	r.Register(SortByFirstName, literalOrder(goqu.L(
		`(SELECT a.first_name FROM book_authors ba JOIN authors a ON a.author_id = ba.author_id WHERE ba.book_id = b.book_id ORDER BY ba.author_id LIMIT 1)`,
	)))
	r.Register(SortByLastName, literalOrder(goqu.L(
		`(SELECT a.last_name FROM book_authors ba JOIN authors a ON a.author_id = ba.author_id WHERE ba.book_id = b.book_id ORDER BY ba.author_id LIMIT 1)`,
	)))

	return r
}

func (r *SortRegistry) Register(key SortKey, fn OrderFunc) {
	r.entries[key] = fn
}

// Lookup returns the ordering factory for a key.
func (r *SortRegistry) Lookup(key SortKey) (OrderFunc, bool) {
	fn, ok := r.entries[key]
	return fn, ok
}

// Keys lists the registered sort keys in stable order, for error messages.
func (r *SortRegistry) Keys() []SortKey {
	keys := make([]SortKey, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func columnOrder(col exp.IdentifierExpression) OrderFunc {
	return func(descending bool) exp.OrderedExpression {
		if descending {
			return col.Desc().NullsFirst()
		}
		return col.Asc().NullsLast()
	}
}

func literalOrder(lit exp.LiteralExpression) OrderFunc {
	return func(descending bool) exp.OrderedExpression {
		if descending {
			return lit.Desc().NullsFirst()
		}
		return lit.Asc().NullsLast()
	}
}
