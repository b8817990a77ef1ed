package fit

import (
	"errors"
	"reflect"
	"sync"
)

var (
	// ErrSessionBusy is returned when the engine already has an open session.
	ErrSessionBusy = errors.New("fit: engine already has an open session")
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("fit: session closed")
	// ErrEngineNotComparable is returned for engines that cannot be
	// tracked by identity; use a pointer type.
	ErrEngineNotComparable = errors.New("fit: engine must be a comparable type")
)

var (
	sessionsMu sync.Mutex
	sessions   = make(map[Engine]*Session)
)

// Session grants exclusive use of an Engine until Close.
type Session struct {
	mu     sync.Mutex
	engine Engine
	closed bool
}

// OpenSession opens the only session on e.
func OpenSession(e Engine) (*Session, error) {
	if e == nil {
		return nil, errors.New("fit: nil engine")
	}
	if !reflect.TypeOf(e).Comparable() {
		return nil, ErrEngineNotComparable
	}

	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	if _, busy := sessions[e]; busy {
		return nil, ErrSessionBusy
	}
	s := &Session{engine: e}
	sessions[e] = s
	return s, nil
}

// Engine returns the session's engine.
func (s *Session) Engine() Engine { return s.engine }

// Close ends the session. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	sessionsMu.Lock()
	delete(sessions, s.engine)
	sessionsMu.Unlock()
	return nil
}

// acquire holds the session for one run.
func (s *Session) acquire() (Engine, func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrSessionClosed
	}
	return s.engine, s.mu.Unlock, nil
}
