package view

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/couchcryptid/oil-spill-dashboard/internal/lru"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
)

// ErrSessionNotFound is returned for an unknown or evicted session id.
var ErrSessionNotFound = errors.New("session not found")

// Session is one user's dashboard: a State plus the view last rendered for it.
type Session struct {
	ID string

	renderer *Renderer
	mu       sync.Mutex
	state    State
	last     View
}

// Apply merges change into the session state and re-renders. On error the
// previous state and view are kept.
func (s *Session) Apply(ctx context.Context, change Change) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.renderer.Render(ctx, change.Apply(s.state))
	if err != nil {
		return View{}, err
	}
	s.state = v.State
	s.last = v
	return v, nil
}

// View returns the most recently rendered view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// State returns the current selections.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionStore keeps the most recently used sessions in memory.
type SessionStore struct {
	renderer *Renderer
	cache    *lru.Cache[string, *Session]
	metrics  *observability.Metrics
}

// NewSessionStore creates a store holding at most maxSessions sessions.
func NewSessionStore(renderer *Renderer, maxSessions int, metrics *observability.Metrics) *SessionStore {
	return &SessionStore{
		renderer: renderer,
		cache:    lru.New[string, *Session](maxSessions),
		metrics:  metrics,
	}
}

// Create renders initial and stores a new session for it.
func (st *SessionStore) Create(ctx context.Context, initial State) (*Session, error) {
	v, err := st.renderer.Render(ctx, initial)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		renderer: st.renderer,
		state:    v.State,
		last:     v,
	}
	st.cache.Put(s.ID, s)
	if st.metrics != nil {
		st.metrics.SessionsActive.Set(float64(st.cache.Len()))
	}
	return s, nil
}

// Get returns the session with the given id.
func (st *SessionStore) Get(id string) (*Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int { return st.cache.Len() }
