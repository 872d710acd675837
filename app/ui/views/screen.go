package views

import (
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/ui/dialog"
	"adminctl/app/ui/table"
	"context"
	"io"
)

// Screen is one list screen: the page layout, the list query behind it,
// the params controller driving the query and the dialog state of the
// feature.
type Screen[T any] struct {
	Page       *table.Page[T]
	Dialog     *dialog.Store[T]
	Controller *table.Controller

	path  string
	query *query.Query[*dto.ListResponse[T]]
}

func NewScreen[T any](page *table.Page[T], cache *query.Cache, client query.Getter, path string) *Screen[T] {
	s := &Screen[T]{
		Page:   page,
		Dialog: dialog.NewStore[T](),
		path:   path,
	}

	s.Controller = table.NewController(func(params dto.ListParams) {
		s.query.SetKey(query.NewKey(path, params.Values()))
	})
	s.query = query.ListQuery[T](cache, client, path, s.Controller.Params().Values())

	return s
}

func (s *Screen[T]) Path() string {
	return s.path
}

// State is what the page would show right now without fetching.
func (s *Screen[T]) State() table.State[T] {
	result := s.query.State()

	return table.State[T]{
		Loading: result.IsFetching,
		Err:     result.Error,
		List:    result.Data,
		Params:  s.Controller.Params(),
	}
}

// Load fetches the current params, from cache when fresh.
func (s *Screen[T]) Load(ctx context.Context) table.State[T] {
	s.query.Fetch(ctx)

	return s.State()
}

func (s *Screen[T]) Refetch(ctx context.Context) table.State[T] {
	s.query.Refetch(ctx)

	return s.State()
}

func (s *Screen[T]) Render(ctx context.Context, w io.Writer) error {
	return s.Page.Render(w, s.Load(ctx))
}

// Close stops pending debounced input.
func (s *Screen[T]) Close() {
	s.Controller.Stop()
}
