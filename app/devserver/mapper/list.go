package mapper

import (
	"adminctl/app/dto"
)

// Page is one page of rows plus the envelope list metadata.
type Page[T any] struct {
	Items       []T
	Total       int
	PerPage     int
	CurrentPage int
	LastPage    int
}

// Paginate cuts items to the requested page. Out of range pages are empty.
func Paginate[T any](items []T, page, limit int) Page[T] {
	if page < 1 {
		page = dto.DefaultPage
	}
	if limit < 1 {
		limit = dto.DefaultLimit
	}

	lastPage := (len(items) + limit - 1) / limit
	if lastPage < 1 {
		lastPage = 1
	}

	result := Page[T]{
		Items:       []T{},
		Total:       len(items),
		PerPage:     limit,
		CurrentPage: page,
		LastPage:    lastPage,
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return result
	}

	end := min(start+limit, len(items))
	result.Items = items[start:end]

	return result
}
