package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrEmptyBatch   = errors.New("batch contains no usable rows")
)

// ValidationError identifies the paging parameter that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MissingReferencesError aborts a strict-policy batch. It names every
// referenced id that does not exist in the store.
type MissingReferencesError struct {
	BookIDs   []int `json:"missingBookIds,omitempty"`
	AuthorIDs []int `json:"missingAuthorIds,omitempty"`
}

func (e *MissingReferencesError) Error() string {
	var parts []string
	if len(e.BookIDs) > 0 {
		parts = append(parts, fmt.Sprintf("unknown book ids: %s", joinInts(e.BookIDs)))
	}
	if len(e.AuthorIDs) > 0 {
		parts = append(parts, fmt.Sprintf("unknown author ids: %s", joinInts(e.AuthorIDs)))
	}
	if len(parts) == 0 {
		return "unknown references"
	}
	return strings.Join(parts, "; ")
}

func joinInts(ids []int) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(strs, ", ")
}
