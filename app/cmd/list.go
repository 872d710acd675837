package cmd

import (
	"adminctl/app/client/api"
	"adminctl/app/service/query"
	"adminctl/app/ui/dialog"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"adminctl/app/ui/views"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// ReportedError is an error the command already printed, main only sets the
// exit code for it.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

type listOptions struct {
	page    int
	limit   int
	search  string
	filters []string
}

func (o *listOptions) bind(cmd *cobra.Command, filterHelp string) {
	cmd.Flags().IntVar(&o.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&o.limit, "limit", 10, "Rows per page")
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "Search term")
	usage := "Filter as key=value"
	if filterHelp != "" {
		usage += ", keys: " + filterHelp
	}
	cmd.Flags().StringArrayVarP(&o.filters, "filter", "f", nil, usage)
}

func parseFilters(raw []string) (map[string]string, error) {
	result := make(map[string]string, len(raw))
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, oops.
				Public(fmt.Sprintf("Invalid filter '%s', expected key=value", item)).
				Errorf("invalid filter %q", item)
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return result, nil
}

// apply drives the screen's controller the way the interactive page would:
// filters and page size reset to page 1, so the page goes last.
func (o *listOptions) apply(ctrl *table.Controller) error {
	filters, err := parseFilters(o.filters)
	if err != nil {
		return err
	}

	for key, value := range filters {
		ctrl.SetFilter(key, value)
	}
	ctrl.SetPageSize(o.limit)
	ctrl.ApplySearch(o.search)
	ctrl.SetPage(o.page)

	return nil
}

func newScreen[T any](a *app, page *table.Page[T], path string) *views.Screen[T] {
	return views.NewScreen(page, do.MustInvoke[*query.Cache](a.di), do.MustInvoke[*api.Client](a.di), path)
}

// showList renders one page of a screen. A failed load is rendered as the
// page's error state and reported through the exit code.
func showList[T any](ctx context.Context, out io.Writer, screen *views.Screen[T], opts *listOptions) error {
	defer screen.Close()

	if err := opts.apply(screen.Controller); err != nil {
		return err
	}

	state := screen.Load(ctx)
	if err := screen.Page.Render(out, state); err != nil {
		return oops.Errorf("failed to render page: %w", err)
	}

	if state.Err != nil {
		return &ReportedError{Err: state.Err}
	}

	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, oops.
			Public(fmt.Sprintf("Invalid id '%s'", raw)).
			Errorf("invalid id %q", raw)
	}

	return id, nil
}

// parseIDs accepts ids as separate args or comma lists.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}

			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, oops.Public("No ids given").Errorf("no ids")
	}

	return ids, nil
}

// confirmDelete opens the delete dialog on row and confirms it. It is the
// single-row path of every delete command.
func confirmDelete[T any](ctx context.Context, flow *views.DeleteFlow[T], row *T) error {
	flow.Screen.Dialog.Show(dialog.ModeDelete, row)
	defer flow.Screen.Dialog.Close()

	return flow.Confirm(ctx)
}

// deleteRows deletes one row through its dialog flow or many in one batch.
func deleteRows[T any](
	ctx context.Context,
	out io.Writer,
	a *app,
	g gate.Gate,
	flow *views.DeleteFlow[T],
	load func(ctx context.Context, id int64) (*T, error),
	ids []int64,
) error {
	if err := gate.Require(a.session, g); err != nil {
		return err
	}

	if len(ids) == 1 {
		row, err := load(ctx, ids[0])
		if err != nil {
			return err
		}
		if err := confirmDelete(ctx, flow, row); err != nil {
			return err
		}
	} else if _, err := flow.Mutation.Mutate(ctx, ids, query.Callbacks[struct{}]{}); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted %d %s\n", len(ids), plural(len(ids), "record", "records"))

	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var reported *ReportedError

	return errors.As(err, &reported)
}
