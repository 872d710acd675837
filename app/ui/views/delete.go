package views

import (
	"adminctl/app/client/api"
	"adminctl/app/service/query"
	"adminctl/app/ui/dialog"
	"context"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

// DeleteFlow is the confirm step of a delete dialog: it deletes the current
// row, closes the dialog and reloads the screen.
type DeleteFlow[T any] struct {
	Screen   *Screen[T]
	Mutation *query.Mutation[[]int64, struct{}]
	ID       func(row *T) int64
}

func (f *DeleteFlow[T]) Confirm(ctx context.Context) error {
	store := f.Screen.Dialog

	row := store.CurrentRow()
	if store.Open() != dialog.ModeDelete || row == nil {
		return oops.
			With("status_code", http.StatusBadRequest).
			Public("Nothing selected").
			Errorf("delete dialog is not open")
	}

	id := f.ID(row)

	_, err := f.Mutation.Mutate(ctx, []int64{id}, query.Callbacks[struct{}]{
		OnSuccess: func(struct{}) {
			store.Close()
		},
		OnError: func(err error) {
			slog.WarnContext(ctx, "Delete failed",
				slog.String("path", f.Screen.Path()),
				slog.Int64("id", id),
				slog.String("message", api.Message(err)),
			)
		},
	})
	if err != nil {
		return err
	}

	f.Screen.Load(ctx)

	return nil
}
