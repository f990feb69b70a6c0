// Package storage keeps per-user conversational sessions in memory.
package storage

import (
	"errors"
	"sync"

	"github.com/drstein77/shopbot/internal/models"
	"go.uber.org/zap"
)

// ErrEmptyUserID is returned when a session is requested without a key.
var ErrEmptyUserID = errors.New("empty user id")

type Log interface {
	Debug(string, ...zap.Field)
}

// Metrics is notified when a new session is created.
type Metrics interface {
	ObserveSession()
}

// entry guards one user's session. Its mutex serializes mutations for that
// user only; other users never wait on it.
type entry struct {
	mu      sync.Mutex
	session models.Session
}

// MemoryStorage is a keyed session store. Sessions are created by the first
// Update for a user and live as long as the store.
type MemoryStorage struct {
	mx       sync.RWMutex
	sessions map[string]*entry

	log     Log
	metrics Metrics
}

// NewMemoryStorage creates an empty store. metrics may be nil.
func NewMemoryStorage(log Log, metrics Metrics) *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*entry),
		log:      log,
		metrics:  metrics,
	}
}

// Session returns a snapshot of the user's session. A user without a stored
// session gets an empty one; reading never creates a session.
// The snapshot shares no memory with the stored session.
func (s *MemoryStorage) Session(userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, ErrEmptyUserID
	}

	s.mx.RLock()
	e, ok := s.sessions[userID]
	s.mx.RUnlock()
	if !ok {
		return models.Session{UserID: userID}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update applies fn to a private copy of the user's session and commits the
// copy only when fn returns nil. A failing fn leaves the session untouched.
func (s *MemoryStorage) Update(userID string, fn func(*models.Session) error) error {
	e, err := s.entry(userID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.session.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	draft.UserID = userID
	e.session = draft.Clone()
	return nil
}

// Len returns the number of sessions created so far.
func (s *MemoryStorage) Len() int {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStorage) entry(userID string) (*entry, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mx.RLock()
	e, ok := s.sessions[userID]
	s.mx.RUnlock()
	if ok {
		return e, nil
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	if e, ok := s.sessions[userID]; ok {
		return e, nil
	}
	e = &entry{session: models.Session{UserID: userID}}
	s.sessions[userID] = e
	if s.log != nil {
		s.log.Debug("session created", zap.String("user_id", userID))
	}
	if s.metrics != nil {
		s.metrics.ObserveSession()
	}
	return e, nil
}
