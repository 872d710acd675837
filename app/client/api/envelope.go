package api

import (
	"adminctl/app/dto"
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/oops"
)

type ListMeta struct {
	Total           int                `json:"total,omitempty"`
	PerPage         int                `json:"per_page,omitempty"`
	CurrentPage     int                `json:"current_page,omitempty"`
	LastPage        int                `json:"last_page,omitempty"`
	Column          []dto.ColumnConfig `json:"column,omitempty"`
	DatatableColumn []dto.ColumnConfig `json:"datatable_column,omitempty"`
}

// Envelope is the backend response wrapper. List endpoints put paging and
// column metadata next to data.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors,omitempty"`
	ListMeta
}

func (e *Envelope) Success() bool {
	return e.StatusCode == 200 || e.StatusCode == 201
}

// FieldErrors decodes the validation errors map, tolerating both
// {"field": ["msg"]} and {"field": "msg"} shapes.
func (e *Envelope) FieldErrors() map[string][]string {
	if len(e.Errors) == 0 {
		return nil
	}

	var many map[string][]string
	if err := json.Unmarshal(e.Errors, &many); err == nil {
		return many
	}

	var single map[string]string
	if err := json.Unmarshal(e.Errors, &single); err == nil {
		result := make(map[string][]string, len(single))
		for field, msg := range single {
			result[field] = []string{msg}
		}

		return result
	}

	return nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unwraps the envelope payload into T. A missing payload yields the
// zero value.
func Decode[T any](env *Envelope) (T, error) {
	var result T
	if env == nil || isNull(env.Data) {
		return result, nil
	}

	if err := json.Unmarshal(env.Data, &result); err != nil {
		return result, oops.
			Public(MsgErrorInResponse).
			Errorf("%w: failed to decode payload: %w", ErrAPI, err)
	}

	return result, nil
}

type nestedPage[T any] struct {
	Data []T `json:"data"`
	ListMeta
}

// DecodeList unwraps a paginated payload. Rows are either the data array
// itself, with metadata on the envelope, or a nested paginator object.
func DecodeList[T any](env *Envelope) (*dto.ListResponse[T], error) {
	result := &dto.ListResponse[T]{}
	if env == nil {
		return result, nil
	}

	meta := env.ListMeta

	trimmed := bytes.TrimSpace(env.Data)
	switch {
	case isNull(trimmed):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &result.Items); err != nil {
			return nil, oops.
				Public(MsgErrorInResponse).
				Errorf("%w: failed to decode rows: %w", ErrAPI, err)
		}
	default:
		var page nestedPage[T]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, oops.
				Public(MsgErrorInResponse).
				Errorf("%w: failed to decode page: %w", ErrAPI, err)
		}

		result.Items = page.Data
		meta = mergeMeta(meta, page.ListMeta)
	}

	result.Total = meta.Total
	result.PerPage = meta.PerPage
	result.CurrentPage = meta.CurrentPage
	result.LastPage = meta.LastPage
	result.Column = meta.Column
	result.DatatableColumn = meta.DatatableColumn

	return result, nil
}

func mergeMeta(outer, inner ListMeta) ListMeta {
	if outer.Total == 0 {
		outer.Total = inner.Total
	}
	if outer.PerPage == 0 {
		outer.PerPage = inner.PerPage
	}
	if outer.CurrentPage == 0 {
		outer.CurrentPage = inner.CurrentPage
	}
	if outer.LastPage == 0 {
		outer.LastPage = inner.LastPage
	}
	if len(outer.Column) == 0 {
		outer.Column = inner.Column
	}
	if len(outer.DatatableColumn) == 0 {
		outer.DatatableColumn = inner.DatatableColumn
	}

	return outer
}

// JoinIDs formats ids for batch endpoints: "1,2,3".
func JoinIDs(ids []int64) string {
	return strings.Join(pie.Map(ids, func(id int64) string {
		return strconv.FormatInt(id, 10)
	}), ",")
}
