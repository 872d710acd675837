package query

import (
	"adminctl/app/config"
	"adminctl/app/dto"
	"adminctl/app/service/pubsub"
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/samber/do"
	ps "github.com/simonfxr/pubsub"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cached request: the endpoint path and its encoded params.
type Key struct {
	Path   string
	Params string
}

func NewKey(path string, params url.Values) Key {
	return Key{
		Path:   strings.Trim(path, "/"),
		Params: params.Encode(),
	}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Path
	}

	return k.Path + "?" + k.Params
}

// matches reports whether k lives under path: "roles" matches "roles",
// "roles/7" and "roles/all" but not "roles-archive".
func (k Key) matches(path string) bool {
	path = strings.Trim(path, "/")

	return k.Path == path || strings.HasPrefix(k.Path, path+"/")
}

// Cache holds fetched results for stale_time and collapses concurrent
// identical fetches into one request.
type Cache struct {
	cache      *ttlcache.Cache[Key, any]
	group      singleflight.Group
	generation atomic.Uint64
	staleTime  time.Duration

	mu       sync.Mutex
	inflight map[Key]int

	bus *pubsub.Service
	sub *ps.Subscription
}

func New(di *do.Injector) (*Cache, error) {
	cfg := do.MustInvoke[*config.Config](di)

	c := NewCache(time.Duration(cfg.Query.StaleTime) * time.Second)

	c.bus = do.MustInvoke[*pubsub.Service](di)
	c.sub = c.bus.SubscribeSession(func(event dto.SessionEvent) {
		if event.Kind == dto.SessionLoggedOut {
			c.Clear()
		}
	})

	return c, nil
}

func NewCache(staleTime time.Duration) *Cache {
	cache := ttlcache.New[Key, any](
		ttlcache.WithTTL[Key, any](staleTime),
		ttlcache.WithDisableTouchOnHit[Key, any](),
	)
	go cache.Start()

	return &Cache{
		cache:     cache,
		staleTime: staleTime,
		inflight:  make(map[Key]int),
	}
}

// Fetch returns the cached value for key or calls fn. Results fetched while
// an invalidation happened are returned but not cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	if item := c.cache.Get(key); item != nil {
		if value, ok := item.Value().(T); ok {
			return value, nil
		}
	}

	generation := c.generation.Load()

	value, err, _ := c.group.Do(key.String(), func() (any, error) {
		c.track(key, 1)
		defer c.track(key, -1)

		result, err := fn(ctx)
		if err != nil {
			return result, err
		}

		if c.staleTime > 0 && c.generation.Load() == generation {
			c.cache.Set(key, result, ttlcache.DefaultTTL)
		}

		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, _ := value.(T)

	return typed, nil
}

func (c *Cache) Has(key Key) bool {
	return c.cache.Has(key)
}

func (c *Cache) track(key Key, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight[key] += delta
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}

// forget detaches in-flight fetches for which match is true, so the next
// Fetch of the same key starts a new request instead of joining an old one.
func (c *Cache) forget(match func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.inflight {
		if match(key) {
			c.group.Forget(key.String())
		}
	}
}

// Invalidate drops every cached entry under the given paths.
func (c *Cache) Invalidate(paths ...string) {
	c.generation.Add(1)

	matches := func(key Key) bool {
		for _, path := range paths {
			if key.matches(path) {
				return true
			}
		}

		return false
	}

	for _, key := range c.cache.Keys() {
		if matches(key) {
			c.cache.Delete(key)
		}
	}
	c.forget(matches)
}

func (c *Cache) Clear() {
	c.generation.Add(1)
	c.cache.DeleteAll()
	c.forget(func(Key) bool { return true })
}

func (c *Cache) Shutdown() error {
	if c.sub != nil {
		c.bus.Unsubscribe(c.sub)
	}
	c.cache.Stop()

	return nil
}
