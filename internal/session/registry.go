// Package session implements C6: the client-id -> session state map, and the
// Idle/Streaming lifecycle spec §4.6 defines. Ported from
// states/{app_state,client_state}.rs.
package session

import (
	"errors"
	"sync"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a ClientId has no registered session.
var ErrNotFound = errors.New("session not found")

// ErrAlreadySubscribed is returned by Subscribe when the session already has a
// live upstream subscription.
var ErrAlreadySubscribed = errors.New("subscription already exists")

// Downstream is the per-session bounded channel of formatted stream messages. The
// capacity (10, per spec §5) is fixed at construction.
type Downstream chan string

// State is a session's mutable record: its immutable subscription input and
// derived token-account map, plus the upstream subscription handle and downstream
// channel that exist only while Streaming.
type State struct {
	Wallet         string
	Input          *domain.SubscriptionInput
	TokenAccounts  map[string]string // mint -> associated token account
	UpstreamSubID  uint64
	Streaming      bool
	Downstream     Downstream
	CancelUpstream func() // stops the reader/keepalive/writer tasks for UpstreamSubID
}

// Registry is the process-wide client-id -> session map. A single RWMutex
// serializes access, consistent with the original's single RwLock<HashMap<...>>;
// sessions are independent, so nothing prevents moving to per-session locks later
// if contention ever shows up (spec §4.6 permits it, but the teacher's own
// single-RWMutex sync.Map-of-clients pattern is adequate at this scale).
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*State
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*State)}
}

// Insert registers a brand-new session under a freshly generated ClientId.
func (r *Registry) Insert(state *State) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = state
	return id
}

// Get returns a shared view of a session's state for read-only operations
// (Holdings, GetTrade).
func (r *Registry) Get(id uuid.UUID) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Subscribe transitions a session Idle -> Streaming, attaching the upstream handle
// and downstream channel the caller has already opened. Illegal while already
// Streaming.
func (r *Registry) Subscribe(id uuid.UUID, subID uint64, downstream Downstream, cancel func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Streaming {
		return ErrAlreadySubscribed
	}
	s.UpstreamSubID = subID
	s.Downstream = downstream
	s.CancelUpstream = cancel
	s.Streaming = true
	return nil
}

// Unsubscribe transitions Streaming -> Idle, detaching and closing the upstream
// handle. Legal (and a no-op) from Idle, per spec §4.6.
func (r *Registry) Unsubscribe(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if !s.Streaming {
		return nil
	}
	if s.CancelUpstream != nil {
		s.CancelUpstream()
	}
	s.Streaming = false
	s.Downstream = nil
	s.CancelUpstream = nil
	return nil
}
