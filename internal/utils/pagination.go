package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/constants"
)

// PaginationParams is the page window extracted from the query string.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse echoes the window back alongside the total row count.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams reads ?page= and ?limit=, clamping both into their
// allowed ranges. Missing or malformed values fall back to the defaults
// rather than erroring.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < constants.MinPageSize {
		page = constants.MinPageSize
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
