package query

import (
	"adminctl/app/client/api"
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, staleTime time.Duration) *Cache {
	t.Helper()

	c := NewCache(staleTime)
	t.Cleanup(func() { _ = c.Shutdown() })

	return c
}

func TestKey(t *testing.T) {
	key := NewKey("/roles/", url.Values{"page": {"1"}, "limit": {"10"}})
	assert.Equal(t, "roles?limit=10&page=1", key.String())

	assert.True(t, key.matches("roles"))
	assert.True(t, NewKey("roles/7", nil).matches("roles"))
	assert.False(t, NewKey("roles-archive", nil).matches("roles"))
	assert.False(t, NewKey("users", nil).matches("roles"))
}

func TestFetch_CachesWithinStaleTime(t *testing.T) {
	c := newTestCache(t, time.Minute)
	key := NewKey("roles", nil)

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	first, err := Fetch(context.Background(), c, key, fn)
	require.NoError(t, err)
	second, err := Fetch(context.Background(), c, key, fn)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_ZeroStaleTimeDisablesCache(t *testing.T) {
	c := newTestCache(t, 0)
	key := NewKey("roles", nil)

	var calls atomic.Int32
	fn := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	_, _ = Fetch(context.Background(), c, key, fn)
	_, _ = Fetch(context.Background(), c, key, fn)

	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	c := newTestCache(t, time.Minute)
	key := NewKey("users", url.Values{"page": {"1"}})

	release := make(chan struct{})
	var calls atomic.Int32
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "rows", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, key, fn)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, result := range results {
		assert.Equal(t, "rows", result)
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := newTestCache(t, time.Minute)
	key := NewKey("roles", nil)

	_, err := Fetch(context.Background(), c, key, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.False(t, c.Has(key))
}

func TestInvalidate(t *testing.T) {
	c := newTestCache(t, time.Minute)

	for _, key := range []Key{
		NewKey("roles", url.Values{"page": {"1"}}),
		NewKey("roles/7", nil),
		NewKey("users", nil),
	} {
		_, err := Fetch(context.Background(), c, key, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}

	c.Invalidate("roles")

	assert.False(t, c.Has(NewKey("roles", url.Values{"page": {"1"}})))
	assert.False(t, c.Has(NewKey("roles/7", nil)))
	assert.True(t, c.Has(NewKey("users", nil)))

	c.Clear()
	assert.False(t, c.Has(NewKey("users", nil)))
}

func TestInvalidate_DetachesInflightFetch(t *testing.T) {
	c := newTestCache(t, time.Minute)
	key := NewKey("roles", url.Values{"page": {"1"}})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "before", nil
		})
	}()
	<-started

	c.Invalidate("roles")

	after, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "after", nil
	})
	close(release)

	require.NoError(t, err)
	assert.Equal(t, "after", after)

	cached, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "refetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after", cached)
}

func TestQuery_State(t *testing.T) {
	c := newTestCache(t, time.Minute)

	fail := false
	q := NewQuery(c, NewKey("roles", nil), func(_ context.Context, key Key) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return key.String(), nil
	})

	result := q.Fetch(context.Background())
	require.NoError(t, result.Error)
	assert.False(t, result.IsFetching)
	assert.Equal(t, "roles", result.Data)

	fail = true
	q.SetKey(NewKey("roles", url.Values{"page": {"2"}}))
	result = q.Fetch(context.Background())
	require.Error(t, result.Error)
	assert.Equal(t, "roles", result.Data, "previous data kept on error")
}

func TestMutation(t *testing.T) {
	c := newTestCache(t, time.Minute)
	listKey := NewKey("roles", nil)

	var fetches atomic.Int32
	list := NewQuery(c, listKey, func(context.Context, Key) (int, error) {
		return int(fetches.Add(1)), nil
	})
	list.Fetch(context.Background())
	require.True(t, c.Has(listKey))

	release := make(chan struct{})
	mutation := NewMutation(c, func(_ context.Context, id int64) (int64, error) {
		<-release
		if id == 0 {
			return 0, errors.New("invalid id")
		}
		return id, nil
	}, "roles")

	var succeeded int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = mutation.Mutate(context.Background(), 7, Callbacks[int64]{
			OnSuccess: func(id int64) { succeeded = id },
		})
	}()

	assert.Eventually(t, mutation.IsPending, time.Second, 5*time.Millisecond)
	close(release)
	<-done

	assert.False(t, mutation.IsPending())
	assert.Equal(t, int64(7), succeeded)
	assert.False(t, c.Has(listKey))

	result := list.Fetch(context.Background())
	assert.Equal(t, 2, result.Data)

	var failed error
	_, err := mutation.Mutate(context.Background(), 0, Callbacks[int64]{
		OnError: func(err error) { failed = err },
	})
	require.Error(t, err)
	assert.Equal(t, err, failed)
	assert.True(t, c.Has(listKey), "failed mutation does not invalidate")
}

type fakeGetter struct {
	mu    sync.Mutex
	paths []string
}

func (g *fakeGetter) Get(_ context.Context, path string, query url.Values) (*api.Envelope, error) {
	g.mu.Lock()
	g.paths = append(g.paths, path+"?"+query.Encode())
	g.mu.Unlock()

	return &api.Envelope{
		StatusCode: 200,
		Data:       []byte(`[{"id":` + query.Get("page") + `}]`),
		ListMeta:   api.ListMeta{Total: 30, CurrentPage: 1},
	}, nil
}

func TestListQuery_SwitchesPages(t *testing.T) {
	c := newTestCache(t, time.Minute)
	getter := &fakeGetter{}

	type item struct {
		ID int `json:"id"`
	}

	q := ListQuery[item](c, getter, "roles", url.Values{"page": {"1"}})

	first := q.Fetch(context.Background())
	require.NoError(t, first.Error)
	require.Len(t, first.Data.Items, 1)
	assert.Equal(t, 1, first.Data.Items[0].ID)
	assert.Equal(t, 30, first.Data.Total)

	q.SetKey(NewKey("roles", url.Values{"page": {"2"}}))
	second := q.Fetch(context.Background())
	require.NoError(t, second.Error)
	assert.Equal(t, 2, second.Data.Items[0].ID)

	q.SetKey(NewKey("roles", url.Values{"page": {"1"}}))
	q.Fetch(context.Background())

	assert.Equal(t, []string{"roles?page=1", "roles?page=2"}, getter.paths)
}
