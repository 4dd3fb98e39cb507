package studio

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"photostudio/internal/domain"
	"photostudio/internal/editor"
	"photostudio/internal/infra"
)

// Store holds the live editing sessions in memory. Sessions are ephemeral UI
// state; a cron janitor evicts the ones idle past the TTL so abandoned camera
// streams never stay reserved.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	editor   editor.Editor
	logger   infra.Logger
	janitor  *cron.Cron
	now      func() time.Time
}

func NewStore(ed editor.Editor, ttl time.Duration, logger infra.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		editor:   ed,
		logger:   logger,
		now:      time.Now,
	}
}

// StartJanitor schedules periodic eviction of expired sessions.
func (st *Store) StartJanitor() error {
	c := cron.New()
	if _, err := c.AddFunc("@every 1m", st.evictExpired); err != nil {
		return fmt.Errorf("schedule session janitor: %w", err)
	}
	c.Start()
	st.mu.Lock()
	st.janitor = c
	st.mu.Unlock()
	return nil
}

// StopJanitor stops the eviction schedule and closes every session.
func (st *Store) StopJanitor() {
	st.mu.Lock()
	janitor := st.janitor
	st.janitor = nil
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	if janitor != nil {
		janitor.Stop()
	}
	for _, s := range sessions {
		s.Close()
	}
}

// Create registers a new session.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.editor, st.logger)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.logger.Debug().Str("session_id", s.ID).Msg("studio: session created")
	return s
}

// Get returns a live session and refreshes its idle deadline.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) evictExpired() {
	now := st.now()
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
		st.logger.Debug().Str("session_id", s.ID).Msg("studio: session evicted")
	}
}
