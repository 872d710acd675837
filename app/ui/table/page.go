package table

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
)

const (
	DefaultLoadingText      = "Loading..."
	DefaultErrorTitle       = "Error loading data"
	DefaultEmptyTitle       = "No data found"
	DefaultEmptyDescription = "Start by adding your first item"
	FilteredEmptyHint       = "Try adjusting your filters"
)

type State[T any] struct {
	Loading bool
	Err     error
	List    *dto.ListResponse[T]
	Params  dto.ListParams
}

// Page renders a list screen: header, table and pagination footer.
type Page[T any] struct {
	Title       string
	Description string

	CreateLabel string
	CreateGate  gate.Gate
	Checker     gate.Checker

	LoadingText      string
	EmptyTitle       string
	EmptyDescription string

	Registry *Registry[T]
}

func (p *Page[T]) Render(w io.Writer, state State[T]) error {
	out := &writer{w: w}

	if state.Loading && state.List == nil {
		out.line(orDefault(p.LoadingText, DefaultLoadingText))
		return out.err
	}

	if state.Err != nil {
		out.line(DefaultErrorTitle)
		out.line(api.Message(state.Err))
		return out.err
	}

	p.renderHeader(out)

	list := state.List
	// a zero total wins over stray rows, the footer could not page them
	if list == nil || list.Total == 0 || len(list.Items) == 0 {
		p.renderEmpty(out, state.Params)
		return out.err
	}

	if err := p.renderTable(out, list); err != nil {
		return err
	}

	out.line(fmt.Sprintf("Page %d of %d, %d total", currentPage(list, state.Params), PageCount(list.Total, perPage(list, state.Params)), list.Total))

	return out.err
}

func (p *Page[T]) renderHeader(out *writer) {
	if p.Title != "" {
		out.line(p.Title)
	}
	if p.Description != "" {
		out.line(p.Description)
	}
	if p.CreateLabel != "" && (p.Checker == nil || p.CreateGate.Allows(p.Checker)) {
		out.line("[+ " + p.CreateLabel + "]")
	}
	out.line("")
}

func (p *Page[T]) renderEmpty(out *writer, params dto.ListParams) {
	out.line(orDefault(p.EmptyTitle, DefaultEmptyTitle))

	if params.HasFilters() {
		out.line(FilteredEmptyHint)
		return
	}

	out.line(orDefault(p.EmptyDescription, DefaultEmptyDescription))
}

func (p *Page[T]) renderTable(out *writer, list *dto.ListResponse[T]) error {
	columns := p.Registry.Generate(list.Columns())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	headers := make([]string, 0, len(columns))
	for _, column := range columns {
		header := strings.ToUpper(column.Header)
		if column.Sortable {
			header += " ↕"
		}
		headers = append(headers, header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for i := range list.Items {
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, cell(column.Render(&list.Items[i])))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return oops.Errorf("failed to flush table: %w", err)
	}

	return out.err
}

// PageCount is the number of pages for total rows, never less than one.
func PageCount(total, size int) int {
	if size < 1 {
		size = dto.DefaultLimit
	}

	count := (total + size - 1) / size
	if count < 1 {
		return 1
	}

	return count
}

func currentPage[T any](list *dto.ListResponse[T], params dto.ListParams) int {
	if list.CurrentPage > 0 {
		return list.CurrentPage
	}
	if params.Page > 0 {
		return params.Page
	}

	return dto.DefaultPage
}

func perPage[T any](list *dto.ListResponse[T], params dto.ListParams) int {
	if list.PerPage > 0 {
		return list.PerPage
	}

	return params.Limit
}

func cell(value string) string {
	value = strings.NewReplacer("\t", " ", "\n", " ").Replace(value)
	if value == "" {
		return Placeholder
	}

	return value
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// writer remembers the first write error so rendering code stays linear.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	n, err := w.w.Write(p)
	if err != nil {
		w.err = oops.Errorf("failed to write: %w", err)
	}

	return n, err
}

func (w *writer) line(s string) {
	_, _ = io.WriteString(w, s+"\n")
}
