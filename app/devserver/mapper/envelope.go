package mapper

import "adminctl/app/dto"

// Envelope is the response wrapper of every JSON endpoint.
type Envelope struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Data       any                 `json:"data"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

type ListEnvelope struct {
	Envelope
	Total           int                `json:"total"`
	PerPage         int                `json:"per_page"`
	CurrentPage     int                `json:"current_page"`
	LastPage        int                `json:"last_page"`
	DatatableColumn []dto.ColumnConfig `json:"datatable_column,omitempty"`
}

func NewListEnvelope[T any](statusCode int, message string, page Page[T], columns []dto.ColumnConfig) ListEnvelope {
	return ListEnvelope{
		Envelope: Envelope{
			StatusCode: statusCode,
			Message:    message,
			Data:       page.Items,
		},
		Total:           page.Total,
		PerPage:         page.PerPage,
		CurrentPage:     page.CurrentPage,
		LastPage:        page.LastPage,
		DatatableColumn: columns,
	}
}
