package permsync

import (
	"adminctl/app/dto"
	"adminctl/app/service/pubsub"
	"adminctl/app/service/session"
	"adminctl/app/storage"
	"adminctl/app/util/testkit"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshUserInfo(context.Context) error {
	r.calls.Add(1)

	return r.err
}

func setup(t *testing.T, refresher Refresher, follow bool) (*Service, *session.Store, *storage.Store) {
	t.Helper()

	cfg := testkit.Config(t, "http://127.0.0.1:8000/api/v1/")
	di := testkit.NewInjector(t, cfg)
	do.Provide(di, storage.New)
	do.Provide(di, pubsub.New)
	do.Provide(di, session.New)

	svc, err := NewWithRefresher(di, refresher)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Shutdown() })

	if !follow {
		svc.Detach()
	}

	return svc, do.MustInvoke[*session.Store](di), do.MustInvoke[*storage.Store](di)
}

func signIn(t *testing.T, store *session.Store) {
	t.Helper()

	require.NoError(t, store.SetUserInfo(&dto.User{ID: 1, Name: "Alice"}))
	require.NoError(t, store.SetToken("tok"))
}

func TestSyncIfDue(t *testing.T) {
	refresher := &countingRefresher{}
	svc, store, _ := setup(t, refresher, false)

	synced, err := svc.SyncIfDue(context.Background())
	require.NoError(t, err)
	assert.False(t, synced, "no session, nothing to sync")

	require.NoError(t, store.SetToken("tok"))

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	synced, err = svc.SyncIfDue(context.Background())
	require.NoError(t, err)
	assert.True(t, synced)

	last, found := svc.LastSync()
	require.True(t, found)
	assert.Equal(t, now.UnixMilli(), last.UnixMilli())

	now = now.Add(30 * time.Second)
	synced, err = svc.SyncIfDue(context.Background())
	require.NoError(t, err)
	assert.False(t, synced)

	now = now.Add(31 * time.Second)
	synced, err = svc.SyncIfDue(context.Background())
	require.NoError(t, err)
	assert.True(t, synced)
}

func TestSyncNow_FailureStillStamps(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("backend down")}
	svc, store, _ := setup(t, refresher, false)
	require.NoError(t, store.SetToken("tok"))

	err := svc.SyncNow(context.Background())
	require.Error(t, err)

	_, found := svc.LastSync()
	assert.True(t, found)
}

func TestStart_SingleLoopPerSession(t *testing.T) {
	refresher := &countingRefresher{}
	svc, store, _ := setup(t, refresher, true)

	assert.False(t, svc.Start(context.Background()), "no session")
	assert.False(t, svc.Running())

	// logging in starts the loop through the session event
	signIn(t, store)
	assert.Eventually(t, svc.Running, time.Second, 5*time.Millisecond)
	assert.False(t, svc.Start(context.Background()), "already running")

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	// logging out stops it
	require.NoError(t, store.Logout())
	assert.Eventually(t, func() bool { return !svc.Running() }, time.Second, 5*time.Millisecond)
}

func TestLoop_TicksAtInterval(t *testing.T) {
	refresher := &countingRefresher{}
	svc, store, _ := setup(t, refresher, true)
	svc.interval = 20 * time.Millisecond

	require.NoError(t, store.SetToken("tok"))

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	svc.Stop()
	assert.Eventually(t, func() bool { return !svc.Running() }, time.Second, 5*time.Millisecond)
}

func TestRun_ReturnsWhenContextDone(t *testing.T) {
	refresher := &countingRefresher{}
	svc, store, _ := setup(t, refresher, false)
	require.NoError(t, store.SetToken("tok"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, svc.Run(ctx))
	assert.False(t, svc.Running())
}

func TestRun_WithoutSession(t *testing.T) {
	svc, _, _ := setup(t, &countingRefresher{}, false)

	assert.Error(t, svc.Run(context.Background()))
}
