package query

import (
	"context"
	"sync"
	"sync/atomic"
)

type Result[T any] struct {
	Data       T
	IsFetching bool
	Error      error
}

// Query tracks the state of one cached fetch, the way a list screen
// observes its data.
type Query[T any] struct {
	cache *Cache
	fn    func(ctx context.Context, key Key) (T, error)

	mu    sync.Mutex
	key   Key
	state Result[T]
}

func NewQuery[T any](cache *Cache, key Key, fn func(ctx context.Context, key Key) (T, error)) *Query[T] {
	return &Query[T]{
		cache: cache,
		fn:    fn,
		key:   key,
	}
}

func (q *Query[T]) Key() Key {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.key
}

// SetKey switches the query to new params; the next Fetch uses them.
func (q *Query[T]) SetKey(key Key) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.key = key
}

func (q *Query[T]) State() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.state
}

// Fetch loads the data for the current key. On error the previous data is
// kept alongside the error.
func (q *Query[T]) Fetch(ctx context.Context) Result[T] {
	q.mu.Lock()
	key := q.key
	q.state.IsFetching = true
	q.mu.Unlock()

	data, err := Fetch(ctx, q.cache, key, func(ctx context.Context) (T, error) {
		return q.fn(ctx, key)
	})

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.key != key {
		// params changed mid flight, the newer fetch owns the state
		return q.state
	}

	q.state.IsFetching = false
	q.state.Error = err
	if err == nil {
		q.state.Data = data
	}

	return q.state
}

// Refetch bypasses the cache for the current key.
func (q *Query[T]) Refetch(ctx context.Context) Result[T] {
	key := q.Key()
	q.cache.cache.Delete(key)

	return q.Fetch(ctx)
}

type Callbacks[T any] struct {
	OnSuccess func(result T)
	OnError   func(err error)
}

// Mutation wraps a write operation. On success it invalidates the
// configured paths before running OnSuccess.
type Mutation[V, T any] struct {
	cache       *Cache
	fn          func(ctx context.Context, vars V) (T, error)
	invalidates []string
	pending     atomic.Int32
}

func NewMutation[V, T any](cache *Cache, fn func(ctx context.Context, vars V) (T, error), invalidates ...string) *Mutation[V, T] {
	return &Mutation[V, T]{
		cache:       cache,
		fn:          fn,
		invalidates: invalidates,
	}
}

func (m *Mutation[V, T]) Mutate(ctx context.Context, vars V, callbacks Callbacks[T]) (T, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	result, err := m.fn(ctx, vars)
	if err != nil {
		if callbacks.OnError != nil {
			callbacks.OnError(err)
		}

		return result, err
	}

	if len(m.invalidates) > 0 {
		m.cache.Invalidate(m.invalidates...)
	}

	if callbacks.OnSuccess != nil {
		callbacks.OnSuccess(result)
	}

	return result, nil
}

func (m *Mutation[V, T]) IsPending() bool {
	return m.pending.Load() > 0
}
