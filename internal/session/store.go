// Package session keeps the in-progress walk-in wizards, one per ticketer
// session, in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/wizard"
)

// ErrNotFound is returned for unknown sessions and for sessions owned by another user
var ErrNotFound = errors.New("walk-in session not found")

// AuthRefresher receives renewed credentials for the session owner
type AuthRefresher interface {
	SetAuth(auth models.AuthContext)
}

// Session is one ticketer's wizard plus the credentials it calls the booking service with
type Session struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Wizard    *wizard.Wizard
	Auth      models.AuthContext
	CreatedAt time.Time
	LastSeen  time.Time

	creds AuthRefresher
}

// Store is a concurrency-safe in-memory session map
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
	}
}

// Create registers a new session for auth. creds may be nil.
func (s *Store) Create(auth models.AuthContext, w *wizard.Wizard, creds AuthRefresher) *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		OwnerID:   auth.UserID,
		Wizard:    w,
		Auth:      auth,
		CreatedAt: now,
		LastSeen:  now,
		creds:     creds,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session if it exists and belongs to ownerID
func (s *Store) Get(id, ownerID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Touch refreshes the session's last activity time and credentials
func (s *Store) Touch(id uuid.UUID, auth models.AuthContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != auth.UserID {
		return
	}
	sess.LastSeen = s.now()
	sess.Auth = auth
	if sess.creds != nil {
		sess.creds.SetAuth(auth)
	}
}

// Delete removes a session owned by ownerID
func (s *Store) Delete(id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Sweep drops sessions idle for longer than idle and not mid-request.
// It returns the number removed.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) && !sess.Wizard.Busy() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
