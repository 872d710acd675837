package permsync

import (
	"adminctl/app/config"
	"adminctl/app/dto"
	"adminctl/app/service/auth"
	"adminctl/app/service/pubsub"
	"adminctl/app/service/session"
	"adminctl/app/storage"
	"adminctl/app/util/telemetry"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	ps "github.com/simonfxr/pubsub"
)

// LastSyncKey stores the unix millisecond timestamp of the last sync attempt.
const LastSyncKey = "permission_last_sync"

type Refresher interface {
	RefreshUserInfo(ctx context.Context) error
}

// Service keeps the session's permission snapshot fresh. At most one sync
// loop runs per process; it follows the session lifecycle events.
type Service struct {
	appCtx    context.Context
	store     *session.Store
	storage   *storage.Store
	refresher Refresher
	bus       *pubsub.Service
	metrics   *telemetry.Metrics
	interval  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	sub    *ps.Subscription
}

func New(di *do.Injector) (*Service, error) {
	return NewWithRefresher(di, do.MustInvoke[*auth.Service](di))
}

func NewWithRefresher(di *do.Injector, refresher Refresher) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		appCtx:    do.MustInvoke[context.Context](di),
		store:     do.MustInvoke[*session.Store](di),
		storage:   do.MustInvoke[*storage.Store](di),
		refresher: refresher,
		bus:       do.MustInvoke[*pubsub.Service](di),
		metrics:   do.MustInvoke[*telemetry.Metrics](di),
		interval:  time.Duration(cfg.Sync.Interval) * time.Second,
		now:       time.Now,
	}

	s.sub = s.bus.SubscribeSession(s.onSessionEvent)

	return s, nil
}

func (s *Service) onSessionEvent(event dto.SessionEvent) {
	switch event.Kind {
	case dto.SessionLoggedIn:
		s.Start(s.appCtx)
	case dto.SessionLoggedOut:
		s.Stop()
	}
}

// Start launches the sync loop. It is a no-op when a loop is already
// running or there is no session.
func (s *Service) Start(ctx context.Context) bool {
	if !s.store.HasToken() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(runCtx, done)

	return true
}

// Stop cancels the loop without waiting for it, so it is safe to call from
// inside a sync (a 401 ends the session from the loop goroutine).
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
}

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancel != nil
}

// Run starts the loop and blocks until ctx is done or the session ends.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return oops.Errorf("no session to sync")
	}

	select {
	case <-ctx.Done():
		s.Stop()
		<-done
	case <-done:
	}

	return nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.done == done {
			if s.cancel != nil {
				s.cancel()
			}
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()

		close(done)
	}()

	slog.DebugContext(ctx, "Permission sync started",
		slog.Duration("interval", s.interval),
	)

	_, _ = s.SyncIfDue(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "Permission sync stopped")
			return
		case <-ticker.C:
			_ = s.SyncNow(ctx)
		}
	}
}

// LastSync returns the time of the last recorded sync attempt.
func (s *Service) LastSync() (time.Time, bool) {
	var millis int64
	found, err := s.storage.Get(LastSyncKey, &millis)
	if err != nil || !found {
		return time.Time{}, false
	}

	return time.UnixMilli(millis), true
}

// SyncIfDue refreshes when no sync was recorded or the last one is older
// than the interval. It reports whether a refresh was attempted.
func (s *Service) SyncIfDue(ctx context.Context) (bool, error) {
	if !s.store.HasToken() {
		return false, nil
	}

	if last, found := s.LastSync(); found && s.now().Sub(last) < s.interval {
		return false, nil
	}

	return true, s.SyncNow(ctx)
}

// SyncNow refreshes the user snapshot and stamps the attempt time. A failed
// refresh keeps the previous snapshot.
func (s *Service) SyncNow(ctx context.Context) error {
	s.metrics.Syncs.Add(ctx, 1)

	err := s.refresher.RefreshUserInfo(ctx)
	if err != nil {
		s.metrics.SyncFailures.Add(ctx, 1)
	}

	// a 401 during refresh wiped the state dir, don't recreate it
	if s.store.HasToken() {
		if stampErr := s.storage.Set(LastSyncKey, s.now().UnixMilli()); stampErr != nil {
			slog.WarnContext(ctx, "Failed to record permission sync time",
				slog.Any("error", stampErr),
			)
		}
	}

	return err
}

// Detach stops following session events; Start must then be called
// explicitly.
func (s *Service) Detach() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		s.bus.Unsubscribe(sub)
	}
}

func (s *Service) Shutdown() error {
	s.Detach()

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	s.Stop()
	if done != nil {
		<-done
	}

	return nil
}
