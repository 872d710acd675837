package store

import (
	"strings"
	"time"
)

// Revoke blocks the token id until it would have expired anyway.
func (s *Store) Revoke(jti string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}

	s.revoked[jti] = expires
}

func (s *Store) Revoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.revoked[jti]

	return ok
}

func (s *Store) SetResetToken(email, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetTokens[strings.ToLower(email)] = token
}

// ConsumeResetToken reports whether token is the pending reset token of
// email and drops it.
func (s *Store) ConsumeResetToken(email, token string) bool {
	return consume(s, s.resetTokens, email, token)
}

func (s *Store) SetVerifyToken(email, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verifyTokens[strings.ToLower(email)] = token
}

func (s *Store) ConsumeVerifyToken(email, token string) bool {
	return consume(s, s.verifyTokens, email, token)
}

func consume(s *Store, tokens map[string]string, email, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)

	expected, ok := tokens[key]
	if !ok || token == "" || expected != token {
		return false
	}

	delete(tokens, key)

	return true
}
