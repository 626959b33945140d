package utils

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chronotrack/time-tracking-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses.
// NextPageURL is nil on the last page so clients know when to stop
// loading more.
type PaginationResponse struct {
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	Total       int64   `json:"total"`
	NextPageURL *string `json:"next_page_url"`
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}

// NextPageURL rebuilds the request URL with the page query parameter
// advanced by one, or returns nil when the current page is the last.
func NextPageURL(requestURL *url.URL, page, limit int, total int64) *string {
	if int64(page*limit) >= total {
		return nil
	}

	query := requestURL.Query()
	query.Set("page", strconv.Itoa(page+1))

	next := fmt.Sprintf("%s?%s", requestURL.Path, query.Encode())
	return &next
}
