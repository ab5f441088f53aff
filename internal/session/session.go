// Package session implements short-lived confirmation sessions keyed by
// (actor, conversation). The host opens a session when a command needs a
// follow-up decision (selecting orders to finish, confirming a withdrawal)
// and feeds later replies in as events; the engine only exposes the state
// transitions. Sessions time out instead of blocking on further input.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle of one confirmation session.
type State int

const (
	// AwaitingSelection means the session is open and waiting for a
	// confirm or cancel event.
	AwaitingSelection State = iota
	// Confirmed is terminal: the actor confirmed the pending action.
	Confirmed
	// Cancelled is terminal: the actor cancelled the pending action.
	Cancelled
	// TimedOut is terminal: no event arrived before the deadline.
	TimedOut
)

// String returns a log-friendly state name.
func (s State) String() string {
	switch s {
	case AwaitingSelection:
		return "awaiting_selection"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

var (
	// ErrNoSession is returned when no open session exists for the key.
	ErrNoSession = errors.New("no open session")
	// ErrSessionExpired is returned when an event arrives after the deadline.
	ErrSessionExpired = errors.New("session expired")
)

// Session is one pending confirmation. Payload is an opaque string the host
// stashed at Begin time (e.g. the tenant id to withdraw, or order ids to
// finish).
type Session struct {
	ID             string
	ActorID        string
	ConversationID string
	Payload        string
	State          State
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// DefaultTTL bounds how long a session waits for its follow-up event.
const DefaultTTL = 2 * time.Minute

// Manager owns every open session. State lives only in this component and
// only for the process lifetime; sessions are gone after a restart, which is
// the safe direction for a confirmation.
type Manager struct {
	mu    sync.Mutex
	ttl   time.Duration
	byKey map[string]*Session
	now   func() time.Time
}

// NewManager returns a Manager with the given TTL. Non-positive TTLs fall
// back to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:   ttl,
		byKey: make(map[string]*Session),
		now:   time.Now,
	}
}

func key(actorID, conversationID string) string {
	return actorID + "\x00" + conversationID
}

// Begin opens a session for (actor, conversation), replacing any session
// already open under the same key. The returned value is a snapshot.
func (m *Manager) Begin(actorID, conversationID, payload string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s := &Session{
		ID:             uuid.NewString(),
		ActorID:        actorID,
		ConversationID: conversationID,
		Payload:        payload,
		State:          AwaitingSelection,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
	}
	m.byKey[key(actorID, conversationID)] = s
	return *s
}

// Confirm resolves the open session for the key to Confirmed and returns its
// snapshot. After the deadline the session resolves to TimedOut and
// ErrSessionExpired is returned instead.
func (m *Manager) Confirm(actorID, conversationID string) (Session, error) {
	return m.resolve(actorID, conversationID, Confirmed)
}

// Cancel resolves the open session for the key to Cancelled.
func (m *Manager) Cancel(actorID, conversationID string) (Session, error) {
	return m.resolve(actorID, conversationID, Cancelled)
}

func (m *Manager) resolve(actorID, conversationID string, to State) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(actorID, conversationID)
	s, ok := m.byKey[k]
	if !ok || s.State != AwaitingSelection {
		return Session{}, ErrNoSession
	}
	delete(m.byKey, k)
	if m.now().After(s.ExpiresAt) {
		s.State = TimedOut
		return *s, ErrSessionExpired
	}
	s.State = to
	return *s, nil
}

// Expire removes every session whose deadline has passed and returns how
// many were dropped. Hosts call this from the same timer that triggers the
// retention sweep.
func (m *Manager) Expire(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, s := range m.byKey {
		if now.After(s.ExpiresAt) {
			delete(m.byKey, k)
			n++
		}
	}
	return n
}

// Open returns the number of currently open sessions.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}
