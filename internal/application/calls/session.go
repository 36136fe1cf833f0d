// Package calls tracks outbound supplier order calls from dispatch to the
// post-call webhook, so a confirmation can be reconciled against the order
// that triggered it.
package calls

import (
	"context"
	"sync"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// State is a call session's position in its lifecycle.
type State string

const (
	StateGreeting           State = "greeting"
	StateAwaitingResponse   State = "awaiting_response"
	StateConfirmingDelivery State = "confirming_delivery"
	StateTerminal           State = "terminal"
)

// transitions lists the legal moves; anything else is rejected.
var transitions = map[State][]State{
	StateGreeting:           {StateAwaitingResponse, StateTerminal},
	StateAwaitingResponse:   {StateConfirmingDelivery, StateTerminal},
	StateConfirmingDelivery: {StateTerminal},
}

// Session is one in-flight order call.
type Session struct {
	CallID       string
	ActorID      string
	SupplierName string
	Phone        string
	OrderDetails string
	Language     string
	State        State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store keeps sessions in memory with a TTL. Sessions that never receive a
// post-call webhook are purged instead of leaking.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *logger.Logger
}

func NewStore(ttl time.Duration, log *logger.Logger) *Store {
	return &Store{sessions: make(map[string]*Session), ttl: ttl, log: log}
}

// Put registers a new session in the greeting state.
func (s *Store) Put(session *Session) {
	now := time.Now().UTC()
	session.State = StateGreeting
	session.CreatedAt = now
	session.UpdatedAt = now
	s.mu.Lock()
	s.sessions[session.CallID] = session
	s.mu.Unlock()
}

// Get returns the session for a call id, or an error when it is unknown or
// past its TTL.
func (s *Store) Get(callID string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[callID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Advance moves a session to the next state, enforcing the transition table.
func (s *Store) Advance(callID string, to State) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[callID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, domain.ErrSessionExpired
	}

	for _, allowed := range transitions[session.State] {
		if allowed == to {
			session.State = to
			session.UpdatedAt = time.Now().UTC()
			return session, nil
		}
	}
	return nil, domain.ErrInvalidInput
}

// Remove deletes a session, terminal or not.
func (s *Store) Remove(callID string) {
	s.mu.Lock()
	delete(s.sessions, callID)
	s.mu.Unlock()
}

// RunJanitor purges expired and terminal sessions until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *Store) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.State == StateTerminal || time.Since(session.CreatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
	s.log.Debug().Int("active_sessions", len(s.sessions)).Msg("call session purge complete")
}
