package session

import "time"

// Decision is the three-state result of Evaluate.
type Decision int

const (
	Unknown Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// HasPermission reports whether any of names is granted. Without a loaded
// user, or with no names, it is false.
func (s *Store) HasPermission(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}

	for _, name := range names {
		if _, ok := s.permissions[name]; ok {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether every one of names is granted. An empty
// list is vacuously true once a user is loaded.
func (s *Store) HasAllPermissions(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}

	for _, name := range names {
		if _, ok := s.permissions[name]; !ok {
			return false
		}
	}

	return true
}

func (s *Store) HasRole(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}

	for _, name := range names {
		if _, ok := s.roles[name]; ok {
			return true
		}
	}

	return false
}

// Evaluate distinguishes a denied permission from a snapshot that cannot be
// trusted: none loaded, or older than the configured max staleness.
func (s *Store) Evaluate(name string) Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return Unknown
	}
	if s.maxStaleness > 0 && s.now().Sub(s.syncedAt) > s.maxStaleness {
		return Unknown
	}

	if _, ok := s.permissions[name]; ok {
		return Granted
	}

	return Denied
}

func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxStaleness > 0 && s.now().Sub(s.syncedAt) > s.maxStaleness
}

// SetClock replaces the time source, tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}
