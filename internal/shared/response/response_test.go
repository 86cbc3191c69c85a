package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-api/internal/shared/response"
)

func Test_TotalPages(t *testing.T) {
	tests := []struct {
		name       string
		totalCount int
		pageSize   int
		want       int
	}{
		{name: "empty_result", totalCount: 0, pageSize: 10, want: 0},
		{name: "exact_multiple", totalCount: 100, pageSize: 10, want: 10},
		{name: "partial_last_page", totalCount: 101, pageSize: 10, want: 11},
		{name: "single_item", totalCount: 1, pageSize: 10, want: 1},
		{name: "page_size_one", totalCount: 7, pageSize: 1, want: 7},
		{name: "guards_zero_page_size", totalCount: 50, pageSize: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, response.TotalPages(tc.totalCount, tc.pageSize))
		})
	}
}
