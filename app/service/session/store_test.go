package session

import (
	"adminctl/app/dto"
	"adminctl/app/service/pubsub"
	"adminctl/app/storage"
	"adminctl/app/util/testkit"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context) (*dto.User, error)

func (f fetcherFunc) FetchMe(ctx context.Context) (*dto.User, error) {
	return f(ctx)
}

func newTestStore(t *testing.T) (*Store, *do.Injector) {
	t.Helper()

	cfg := testkit.Config(t, "http://127.0.0.1:8000/api/v1/")
	di := testkit.NewInjector(t, cfg)
	do.Provide(di, storage.New)
	do.Provide(di, pubsub.New)
	do.Provide(di, New)

	return do.MustInvoke[*Store](di), di
}

func userWith(permissions []string, roles ...string) *dto.User {
	user := &dto.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	for i, name := range permissions {
		user.Permissions = append(user.Permissions, dto.Permission{ID: int64(i + 1), Name: name})
	}
	for i, name := range roles {
		user.Roles = append(user.Roles, dto.Role{ID: int64(i + 1), Name: name})
	}

	return user
}

func TestPredicates_WithoutUser(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.HasPermission("users.view"))
	assert.False(t, store.HasPermission())
	assert.False(t, store.HasAllPermissions())
	assert.False(t, store.HasAllPermissions("users.view"))
	assert.False(t, store.HasRole("Admin"))
	assert.Equal(t, Unknown, store.Evaluate("users.view"))
}

func TestPredicates_AnyAndAll(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view", "roles.view"}, "Manager")))

	tests := []struct {
		name  string
		names []string
		any   bool
		all   bool
	}{
		{"single granted", []string{"users.view"}, true, true},
		{"mixed", []string{"users.view", "users.delete"}, true, false},
		{"none granted", []string{"users.delete"}, false, false},
		{"all granted", []string{"users.view", "roles.view"}, true, true},
		{"empty list", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.any, store.HasPermission(tt.names...))
			assert.Equal(t, tt.all, store.HasAllPermissions(tt.names...))
		})
	}

	assert.True(t, store.HasRole("Viewer", "Manager"))
	assert.False(t, store.HasRole("Viewer"))
	assert.Equal(t, Granted, store.Evaluate("roles.view"))
	assert.Equal(t, Denied, store.Evaluate("roles.delete"))
}

func TestStore_SnapshotReplacedWholesale(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view", "users.delete"})))
	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))

	assert.True(t, store.HasPermission("users.view"))
	assert.False(t, store.HasPermission("users.delete"))
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	store, di := newTestStore(t)
	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))
	require.NoError(t, store.SetToken("tok-1"))

	reloaded, err := New(di)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", reloaded.Token())
	assert.True(t, reloaded.HasPermission("users.view"))
	require.NotNil(t, reloaded.UserInfo())
	assert.Equal(t, "Alice", reloaded.UserInfo().Name)
}

func TestStore_ExpiredTokenLoadsSignedOut(t *testing.T) {
	store, di := newTestStore(t)
	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))
	require.NoError(t, store.SetToken("tok-1"))

	st := do.MustInvoke[*storage.Store](di)
	require.NoError(t, st.Set(TokenKey, tokenRecord{Value: "tok-1", Expires: time.Now().Add(-time.Minute)}))

	reloaded, err := New(di)
	require.NoError(t, err)

	assert.False(t, reloaded.HasToken())
	assert.Nil(t, reloaded.UserInfo())
	assert.False(t, reloaded.HasPermission("users.view"))
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	store, di := newTestStore(t)
	st := do.MustInvoke[*storage.Store](di)
	bus := do.MustInvoke[*pubsub.Service](di)

	var mu sync.Mutex
	var events []dto.SessionEvent
	bus.SubscribeSession(func(event dto.SessionEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	})

	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))
	require.NoError(t, store.SetToken("tok-1"))
	require.NoError(t, store.Logout())

	assert.Equal(t, "", store.Token())
	assert.Nil(t, store.UserInfo())
	assert.False(t, store.HasPermission("users.view"))

	var record tokenRecord
	found, err := st.Get(TokenKey, &record)
	require.NoError(t, err)
	assert.False(t, found)

	var state persistedState
	found, err = st.Get(StateKey, &state)
	require.NoError(t, err)
	assert.False(t, found)

	// idempotent, and no second logged_out event
	require.NoError(t, store.Logout())

	want := []dto.SessionEventKind{dto.SessionUserUpdated, dto.SessionLoggedIn, dto.SessionLoggedOut}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		kinds := make([]dto.SessionEventKind, 0, len(events))
		for _, event := range events {
			kinds = append(kinds, event.Kind)
		}

		return assert.ObjectsAreEqual(want, kinds)
	}, time.Second, 10*time.Millisecond)
}

func TestStore_TokenExpiryOnlyMovesOnSetToken(t *testing.T) {
	store, di := newTestStore(t)
	st := do.MustInvoke[*storage.Store](di)

	now := time.Now().Truncate(time.Second)
	store.SetClock(func() time.Time { return now })
	require.NoError(t, store.SetToken("tok-1"))

	expires := func() time.Time {
		var record tokenRecord
		found, err := st.Get(TokenKey, &record)
		require.NoError(t, err)
		require.True(t, found)
		return record.Expires
	}
	issued := expires()
	assert.True(t, issued.Equal(now.Add(store.tokenTTL)))

	now = now.Add(6 * 24 * time.Hour)
	require.NoError(t, store.RefreshUserInfo(context.Background(), fetcherFunc(func(context.Context) (*dto.User, error) {
		return userWith([]string{"users.view"}), nil
	})))
	require.NoError(t, store.SetUserInfo(userWith([]string{"roles.view"})))
	assert.True(t, expires().Equal(issued))

	reloaded, err := New(di)
	require.NoError(t, err)
	reloaded.SetClock(func() time.Time { return now })
	require.NoError(t, reloaded.SetUserInfo(userWith([]string{"users.view"})))
	assert.True(t, expires().Equal(issued))

	require.NoError(t, store.SetToken("tok-2"))
	assert.True(t, expires().Equal(now.Add(store.tokenTTL)))
}

func TestStore_InvalidateClearsAllKeys(t *testing.T) {
	store, di := newTestStore(t)
	st := do.MustInvoke[*storage.Store](di)

	require.NoError(t, st.Set("permission_last_sync", 42))
	require.NoError(t, store.SetToken("tok-1"))
	require.NoError(t, store.Invalidate())

	keys, err := st.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.False(t, store.HasToken())
}

func TestStore_RefreshUserInfo(t *testing.T) {
	t.Run("no token is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t)
		called := false

		err := store.RefreshUserInfo(context.Background(), fetcherFunc(func(context.Context) (*dto.User, error) {
			called = true
			return nil, nil
		}))
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("success replaces snapshot", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))
		require.NoError(t, store.SetToken("tok-1"))

		err := store.RefreshUserInfo(context.Background(), fetcherFunc(func(context.Context) (*dto.User, error) {
			return userWith([]string{"roles.view"}), nil
		}))
		require.NoError(t, err)
		assert.False(t, store.HasPermission("users.view"))
		assert.True(t, store.HasPermission("roles.view"))
	})

	t.Run("failure keeps previous snapshot", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))
		require.NoError(t, store.SetToken("tok-1"))
		before := store.UserInfo()

		err := store.RefreshUserInfo(context.Background(), fetcherFunc(func(context.Context) (*dto.User, error) {
			return nil, errors.New("connection refused")
		}))
		require.Error(t, err)
		assert.Equal(t, before, store.UserInfo())
		assert.True(t, store.HasPermission("users.view"))
	})

	t.Run("session ended mid flight is not resurrected", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.SetToken("tok-1"))

		err := store.RefreshUserInfo(context.Background(), fetcherFunc(func(context.Context) (*dto.User, error) {
			require.NoError(t, store.Invalidate())
			return userWith([]string{"users.view"}), nil
		}))
		require.NoError(t, err)
		assert.Nil(t, store.UserInfo())
	})
}

func TestStore_EvaluateStaleness(t *testing.T) {
	store, _ := newTestStore(t)
	store.maxStaleness = time.Minute

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	require.NoError(t, store.SetUserInfo(userWith([]string{"users.view"})))

	assert.Equal(t, Granted, store.Evaluate("users.view"))
	assert.False(t, store.Stale())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, Unknown, store.Evaluate("users.view"))
	assert.True(t, store.Stale())
	// boolean predicates still answer from the snapshot
	assert.True(t, store.HasPermission("users.view"))
}
