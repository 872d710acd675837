package dto

import (
	"net/url"
	"sort"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var PageSizes = []int{10, 20, 30, 40, 50}

// ColumnConfig is a server-provided column description. Value, when set,
// names the row field and takes precedence over Key.
type ColumnConfig struct {
	Key      string `json:"key"`
	Value    string `json:"value,omitempty"`
	Label    string `json:"label"`
	Show     bool   `json:"show"`
	Sortable bool   `json:"sortable"`
}

func (c ColumnConfig) EffectiveKey() string {
	if c.Value != "" {
		return c.Value
	}

	return c.Key
}

type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

func NewListParams() ListParams {
	return ListParams{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Filters: map[string]string{},
	}
}

// HasFilters reports whether a search term or any filter is active.
func (p ListParams) HasFilters() bool {
	if p.Search != "" {
		return true
	}
	for _, value := range p.Filters {
		if value != "" {
			return true
		}
	}

	return false
}

// Values encodes the params as a query string, dropping empty values.
func (p ListParams) Values() url.Values {
	values := url.Values{}

	page, limit := p.Page, p.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))

	if p.Search != "" {
		values.Set("search", p.Search)
	}

	keys := make([]string, 0, len(p.Filters))
	for key := range p.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if value := p.Filters[key]; value != "" {
			values.Set(key, value)
		}
	}

	return values
}

type ListResponse[T any] struct {
	Items           []T
	Total           int
	PerPage         int
	CurrentPage     int
	LastPage        int
	Column          []ColumnConfig
	DatatableColumn []ColumnConfig
}

// Columns returns the server column configs, datatable_column first.
func (r *ListResponse[T]) Columns() []ColumnConfig {
	if len(r.DatatableColumn) > 0 {
		return r.DatatableColumn
	}

	return r.Column
}
