package controller

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

const timestampLayout = time.RFC3339

func parseDate(value string) (*openapi_types.Date, error) {
	t, err := time.Parse(openapi_types.DateFormat, value)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &openapi_types.Date{Time: t}, nil
}
