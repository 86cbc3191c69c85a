package query

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-api/internal/domains/catalog/model"
)

// Params is a validated, normalized parameter set. The query builder
// only ever sees values that passed through the validator.
type Params struct {
	Page       int
	PageSize   int
	Sort       SortKey
	Descending bool
	AuthorID   int
}

// Offset is the window start for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Validator normalizes and rejects illegal paging parameters. Its
// allow-lists are fixed at construction.
type Validator struct {
	registry *SortRegistry
}

func NewValidator(registry *SortRegistry) *Validator {
	return &Validator{registry: registry}
}

// Validate applies the parameter rules:
//   - page and pageSize must be strictly positive
//   - empty sortBy defaults to title; any other value must be registered
//   - sortDirection is matched case-insensitively against ASC/DESC,
//     empty defaults to ASC
//   - authorId must not be negative; zero means no filter
func (v *Validator) Validate(req model.PagedBooksRequest) (Params, error) {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Page,
			validation.Required.Error("must be greater than 0"),
			validation.Min(1).Error("must be greater than 0"),
		),
		validation.Field(&req.PageSize,
			validation.Required.Error("must be greater than 0"),
			validation.Min(1).Error("must be greater than 0"),
		),
		validation.Field(&req.AuthorID,
			validation.Min(0).Error("must not be negative"),
		),
	)
	if err != nil {
		return Params{}, firstFieldError(err)
	}

	sortKey := SortKey(strings.TrimSpace(req.SortBy))
	if sortKey == "" {
		sortKey = DefaultSortKey
	}
	if _, ok := v.registry.Lookup(sortKey); !ok {
		return Params{}, &model.ValidationError{
			Field:   "sortBy",
			Message: fmt.Sprintf("must be one of: %s", joinKeys(v.registry.Keys())),
		}
	}

	direction := strings.ToUpper(strings.TrimSpace(req.SortDirection))
	var descending bool
	switch direction {
	case "", "ASC":
		descending = false
	case "DESC":
		descending = true
	default:
		return Params{}, &model.ValidationError{
			Field:   "sortDirection",
			Message: "must be 'ASC' or 'DESC'",
		}
	}

	return Params{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Sort:       sortKey,
		Descending: descending,
		AuthorID:   req.AuthorID,
	}, nil
}

// firstFieldError converts an ozzo error map into a ValidationError
// naming one offending field.
func firstFieldError(err error) error {
	errs, ok := err.(validation.Errors)
	if !ok {
		return &model.ValidationError{Field: "request", Message: err.Error()}
	}

	// Deterministic pick: lowest field name first.
	var field string
	for name := range errs {
		if field == "" || name < field {
			field = name
		}
	}
	return &model.ValidationError{Field: field, Message: errs[field].Error()}
}

func joinKeys(keys []SortKey) string {
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = string(k)
	}
	return strings.Join(strs, ", ")
}
