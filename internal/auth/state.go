package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// stateTTL bounds how long an OAuth round trip may take.
const stateTTL = 10 * time.Minute

// StateStore issues and consumes single-use OAuth state tokens. Tokens expire
// after stateTTL and are deleted on first use, so a replayed callback fails.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]time.Time)}
}

// Issue creates a new state token and records its expiry.
func (s *StateStore) Issue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Expired entries pile up when callbacks never arrive; sweep here since
	// issuance is the only growth point.
	now := time.Now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}

	s.states[state] = now.Add(stateTTL)
	return state, nil
}

// Consume validates a state token and removes it. Returns false for unknown,
// expired, or already-used tokens.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return time.Now().Before(exp)
}
