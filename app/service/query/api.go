package query

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"context"
	"net/url"

	"github.com/samber/oops"
)

type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*api.Envelope, error)
}

// List fetches a paginated endpoint through the cache.
func List[T any](ctx context.Context, c *Cache, client Getter, path string, params url.Values) (*dto.ListResponse[T], error) {
	return Fetch(ctx, c, NewKey(path, params), func(ctx context.Context) (*dto.ListResponse[T], error) {
		env, err := client.Get(ctx, path, params)
		if err != nil {
			return nil, oops.Errorf("client.Get: %w", err)
		}

		return api.DecodeList[T](env)
	})
}

// One fetches a single resource through the cache.
func One[T any](ctx context.Context, c *Cache, client Getter, path string) (T, error) {
	return Fetch(ctx, c, NewKey(path, nil), func(ctx context.Context) (T, error) {
		env, err := client.Get(ctx, path, nil)
		if err != nil {
			var zero T
			return zero, oops.Errorf("client.Get: %w", err)
		}

		return api.Decode[T](env)
	})
}

// ListQuery observes a paginated endpoint. Switching pages or filters is a
// SetKey with the new params.
func ListQuery[T any](c *Cache, client Getter, path string, params url.Values) *Query[*dto.ListResponse[T]] {
	return NewQuery(c, NewKey(path, params), func(ctx context.Context, key Key) (*dto.ListResponse[T], error) {
		values, err := url.ParseQuery(key.Params)
		if err != nil {
			return nil, oops.Errorf("url.ParseQuery: %w", err)
		}

		env, err := client.Get(ctx, key.Path, values)
		if err != nil {
			return nil, oops.Errorf("client.Get: %w", err)
		}

		return api.DecodeList[T](env)
	})
}
