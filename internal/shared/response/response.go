package response

import (
	"math"

	"github.com/gin-gonic/gin"
)

// Result is the fixed response envelope.
type Result struct {
	Data         interface{} `json:"data"`
	Desc         *string     `json:"desc"`
	IsError      bool        `json:"isError"`
	StatusCode   int         `json:"statusCode"`
	ErrorMessage *string     `json:"errorMessage"`
}

// PagedResult extends Result with server-side paging metadata.
type PagedResult struct {
	Data         interface{} `json:"data"`
	Desc         *string     `json:"desc"`
	IsError      bool        `json:"isError"`
	StatusCode   int         `json:"statusCode"`
	ErrorMessage *string     `json:"errorMessage"`
	TotalCount   int         `json:"totalCount"`
	Page         int         `json:"page"`
	PageSize     int         `json:"pageSize"`
	TotalPages   int         `json:"totalPages"`
}

// TotalPages computes ceil(totalCount/pageSize), 0 for an empty result.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(pageSize)))
}

// OK writes a 200 envelope.
func OK(c *gin.Context, data interface{}, desc string) {
	var d *string
	if desc != "" {
		d = &desc
	}
	c.JSON(200, Result{
		Data:       data,
		Desc:       d,
		StatusCode: 200,
	})
}

// Paged writes a 200 envelope with paging metadata.
func Paged(c *gin.Context, data interface{}, totalCount, page, pageSize int) {
	c.JSON(200, PagedResult{
		Data:       data,
		StatusCode: 200,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(totalCount, pageSize),
	})
}

// Fail writes an error envelope with the given HTTP status.
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Result{
		IsError:      true,
		StatusCode:   statusCode,
		ErrorMessage: &message,
	})
}

// FailWithDetails writes an error envelope carrying structured detail
// (per-row parse errors, missing reference ids) in the data field.
func FailWithDetails(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, Result{
		Data:         details,
		IsError:      true,
		StatusCode:   statusCode,
		ErrorMessage: &message,
	})
}
