package export

import (
	"adminctl/app/client/api"
	"adminctl/app/util/telemetry"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/natefinch/atomic"
	"github.com/samber/do"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

var serviceName = "export"

const DefaultFormat = "xlsx"

var mimeTypes = map[string]string{
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xls":  "application/vnd.ms-excel",
	"csv":  "text/csv",
}

func Formats() []string {
	formats := pie.Keys(mimeTypes)
	sort.Strings(formats)

	return formats
}

type Request struct {
	// Endpoint of the resource, "users" exports from "users/export"
	Resource string
	// Base of the written file name, defaults to Resource
	Filename string
	Format   string
	Params   map[string]string
	// Directory the file is written to, defaults to the working directory
	Dir string
}

type Service struct {
	client  *api.Client
	tracing *telemetry.Tracing
	now     func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		client:  do.MustInvoke[*api.Client](di),
		tracing: do.MustInvoke[*telemetry.Tracing](di),
		now:     time.Now,
	}, nil
}

// Export downloads a report and writes it as {filename}_{YYYY-MM-DD}.{format}.
// It returns the written path.
func (s *Service) Export(ctx context.Context, req Request) (string, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "export")
	defer span.End()

	format := strings.ToLower(req.Format)
	if format == "" {
		format = DefaultFormat
	}

	accept, ok := mimeTypes[format]
	if !ok {
		return "", s.tracing.Error(span, oops.
			With("status_code", http.StatusUnprocessableEntity).
			Public(fmt.Sprintf("Unsupported export format '%s', use one of %s", req.Format, strings.Join(Formats(), ", "))).
			Errorf("unsupported export format %q", req.Format))
	}

	span.SetAttributes(
		attribute.String("resource", req.Resource),
		attribute.String("format", format),
	)

	query := CleanParams(req.Params)
	query.Set("format", format)

	buf := &bytes.Buffer{}
	if _, err := s.client.Download(ctx, strings.Trim(req.Resource, "/")+"/export", query, accept, buf); err != nil {
		return "", s.tracing.Error(span, oops.Errorf("client.Download: %w", err))
	}

	filename := req.Filename
	if filename == "" {
		filename = strings.ReplaceAll(strings.Trim(req.Resource, "/"), "/", "_")
	}

	dir := req.Dir
	if dir == "" {
		dir = "."
	}

	target := filepath.Join(dir, FileName(filename, format, s.now()))
	if err := atomic.WriteFile(target, buf); err != nil {
		return "", s.tracing.Error(span, oops.Errorf("failed to write export: %w", err))
	}

	s.tracing.Success(span)

	return target, nil
}

func FileName(base, format string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.UTC().Format(time.DateOnly), format)
}

// CleanParams drops params with empty values.
func CleanParams(params map[string]string) url.Values {
	values := url.Values{}
	for key, value := range params {
		if strings.TrimSpace(value) != "" {
			values.Set(key, value)
		}
	}

	return values
}
