package utils

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page      int
	PageSize  int
	Offset    int
	SortBy    string
	SortOrder string
}

// GetPaginationParams extracts pagination parameters from request
func GetPaginationParams(c echo.Context, defaultSortBy string) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20 // Default page size
	}

	sortBy := c.QueryParam("sortBy")
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	sortOrder := strings.ToLower(c.QueryParam("sortOrder"))
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	offset := (page - 1) * pageSize

	return PaginationParams{
		Page:      page,
		PageSize:  pageSize,
		Offset:    offset,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}
