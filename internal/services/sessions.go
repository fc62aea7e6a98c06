package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-recipe-book/internal/observability"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("edit session not found")

// DefaultSessionTTL is how long an idle editor session survives.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	ctrl     *EditController
	lastSeen time.Time
}

// Sessions keeps the open editors of HTTP clients, keyed by an opaque id.
// Sessions idle for longer than the TTL are exited (persisting their draft)
// by Sweep.
type Sessions struct {
	ttl   time.Duration
	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	open map[string]*session
}

// NewSessions returns an empty registry. ttl <= 0 uses DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
		open:  make(map[string]*session),
	}
}

// Open registers c and returns its session id.
func (s *Sessions) Open(c *EditController) string {
	id := s.newID()
	s.mu.Lock()
	s.open[id] = &session{ctrl: c, lastSeen: s.now()}
	n := len(s.open)
	s.mu.Unlock()
	observability.EditSessionsActive.Set(float64(n))
	return id
}

// Get returns the session's controller and refreshes its idle timer.
func (s *Sessions) Get(id string) (*EditController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.open[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	ss.lastSeen = s.now()
	return ss.ctrl, nil
}

// Remove forgets the session without exiting it and returns its controller.
func (s *Sessions) Remove(id string) (*EditController, error) {
	s.mu.Lock()
	ss, ok := s.open[id]
	delete(s.open, id)
	n := len(s.open)
	s.mu.Unlock()
	observability.EditSessionsActive.Set(float64(n))
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ss.ctrl, nil
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Sweep exits and removes sessions idle for at least the TTL and returns how
// many were closed.
func (s *Sessions) Sweep(ctx context.Context) int {
	now := s.now()
	var stale []*EditController

	s.mu.Lock()
	for id, ss := range s.open {
		if now.Sub(ss.lastSeen) >= s.ttl {
			stale = append(stale, ss.ctrl)
			delete(s.open, id)
		}
	}
	n := len(s.open)
	s.mu.Unlock()
	observability.EditSessionsActive.Set(float64(n))

	for _, c := range stale {
		if err := c.Exit(ctx); err != nil {
			log.Warn().Err(err).Str("target", c.Target().String()).Msg("exit of idle edit session failed")
		}
	}
	return len(stale)
}

// CloseAll exits every open session; used on shutdown.
func (s *Sessions) CloseAll(ctx context.Context) {
	s.mu.Lock()
	all := make([]*EditController, 0, len(s.open))
	for id, ss := range s.open {
		all = append(all, ss.ctrl)
		delete(s.open, id)
	}
	s.mu.Unlock()
	observability.EditSessionsActive.Set(0)

	for _, c := range all {
		if err := c.Exit(ctx); err != nil {
			log.Warn().Err(err).Str("target", c.Target().String()).Msg("exit of edit session failed")
		}
	}
}
