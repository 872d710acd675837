package session

import (
	"adminctl/app/config"
	"adminctl/app/dto"
	"adminctl/app/service/pubsub"
	"adminctl/app/storage"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	// TokenKey holds the bearer token record, the equivalent of the auth cookie.
	TokenKey = "token"
	// StateKey holds the persisted session snapshot.
	StateKey = "auth-storage"
)

type tokenRecord struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

type persistedState struct {
	UserInfo *dto.User `json:"userInfo"`
	Token    string    `json:"token"`
	SyncedAt time.Time `json:"syncedAt"`
}

// UserFetcher loads the current user from the backend.
type UserFetcher interface {
	FetchMe(ctx context.Context) (*dto.User, error)
}

// Store is the process-wide session: bearer token plus the user snapshot
// with its flattened permissions. Every mutation is persisted immediately.
type Store struct {
	storage      *storage.Store
	bus          *pubsub.Service
	tokenTTL     time.Duration
	maxStaleness time.Duration
	now          func() time.Time

	mu           sync.RWMutex
	token        string
	tokenExpires time.Time
	user         *dto.User
	syncedAt    time.Time
	permissions map[string]struct{}
	roles       map[string]struct{}
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Store{
		storage:      do.MustInvoke[*storage.Store](di),
		bus:          do.MustInvoke[*pubsub.Service](di),
		tokenTTL:     time.Duration(cfg.Session.TokenTTL) * time.Hour,
		maxStaleness: time.Duration(cfg.Sync.MaxStaleness) * time.Second,
		now:          time.Now,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	var record tokenRecord
	found, err := s.storage.Get(TokenKey, &record)
	if err != nil {
		return oops.Errorf("failed to load token: %w", err)
	}
	if !found || record.Value == "" || !s.now().Before(record.Expires) {
		// expired or missing token means signed out, drop any leftover snapshot
		if err := s.clearPersisted(); err != nil {
			return err
		}

		return nil
	}

	var state persistedState
	if _, err := s.storage.Get(StateKey, &state); err != nil {
		slog.Warn("Ignoring unreadable session state",
			slog.Any("error", err),
		)
	}

	s.token = record.Value
	s.tokenExpires = record.Expires
	s.setUserLocked(state.UserInfo, state.SyncedAt)

	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// UserInfo returns a copy of the user snapshot, nil when none is loaded.
func (s *Store) UserInfo() *dto.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	user := *s.user

	return &user
}

func (s *Store) SyncedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.syncedAt
}

// SetToken stores the token with a fresh expiry. Only this call moves the
// expiry, snapshot writes keep it.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	wasSignedIn := s.token != ""
	s.token = token
	s.tokenExpires = s.now().Add(s.tokenTTL)

	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if !wasSignedIn && token != "" {
		s.bus.Publish(pubsub.SessionChannel, dto.SessionEvent{Kind: dto.SessionLoggedIn})
	}

	return nil
}

// SetUserInfo replaces the snapshot wholesale.
func (s *Store) SetUserInfo(user *dto.User) error {
	s.mu.Lock()
	s.setUserLocked(user, s.now())

	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.bus.Publish(pubsub.SessionChannel, dto.SessionEvent{Kind: dto.SessionUserUpdated})

	return nil
}

// RefreshUserInfo replaces the snapshot with the server's view of the current
// user. Without a token it does nothing. On failure the previous snapshot
// stays in place and the error is returned for the caller to log.
func (s *Store) RefreshUserInfo(ctx context.Context, fetcher UserFetcher) error {
	token := s.Token()
	if token == "" {
		return nil
	}

	user, err := fetcher.FetchMe(ctx)
	if err != nil {
		return oops.Errorf("FetchMe: %w", err)
	}

	s.mu.Lock()
	if s.token != token {
		// session ended or changed while the request was in flight
		s.mu.Unlock()
		return nil
	}

	s.setUserLocked(user, s.now())
	err = s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.bus.Publish(pubsub.SessionChannel, dto.SessionEvent{Kind: dto.SessionUserUpdated})

	return nil
}

// Logout clears the token, the persisted snapshot and memory. Calling it
// without a session is a no-op.
func (s *Store) Logout() error {
	return s.end(dto.LogoutReasonUser, s.clearPersisted)
}

// Invalidate ends the session after the backend rejected the token. Like a
// browser clearing local storage it wipes every persisted key.
func (s *Store) Invalidate() error {
	return s.end(dto.LogoutReasonUnauthorized, func() error {
		if err := s.storage.Clear(); err != nil {
			return oops.Errorf("failed to clear storage: %w", err)
		}

		return nil
	})
}

func (s *Store) end(reason string, clear func() error) error {
	s.mu.Lock()
	hadSession := s.token != "" || s.user != nil
	s.token = ""
	s.tokenExpires = time.Time{}
	s.setUserLocked(nil, time.Time{})

	err := clear()
	s.mu.Unlock()

	if hadSession {
		s.bus.Publish(pubsub.SessionChannel, dto.SessionEvent{
			Kind:   dto.SessionLoggedOut,
			Reason: reason,
		})
	}

	return err
}

func (s *Store) clearPersisted() error {
	if err := s.storage.Remove(TokenKey); err != nil {
		return oops.Errorf("failed to remove token: %w", err)
	}
	if err := s.storage.Remove(StateKey); err != nil {
		return oops.Errorf("failed to remove session state: %w", err)
	}

	return nil
}

func (s *Store) setUserLocked(user *dto.User, syncedAt time.Time) {
	s.user = user
	s.syncedAt = syncedAt
	s.permissions = make(map[string]struct{})
	s.roles = make(map[string]struct{})

	if user == nil {
		return
	}

	for _, name := range user.PermissionNames() {
		s.permissions[name] = struct{}{}
	}
	for _, name := range user.RoleNames() {
		s.roles[name] = struct{}{}
	}
}

func (s *Store) persistLocked() error {
	if s.token == "" {
		if err := s.storage.Remove(TokenKey); err != nil {
			return oops.Errorf("failed to remove token: %w", err)
		}
	} else if err := s.storage.Set(TokenKey, tokenRecord{
		Value:   s.token,
		Expires: s.tokenExpires,
	}); err != nil {
		return oops.Errorf("failed to persist token: %w", err)
	}

	if err := s.storage.Set(StateKey, persistedState{
		UserInfo: s.user,
		Token:    s.token,
		SyncedAt: s.syncedAt,
	}); err != nil {
		return oops.Errorf("failed to persist session state: %w", err)
	}

	return nil
}
