// Package memory is the default session store. Sessions live for the
// lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

type Miss struct {
	UserName string
	Status   int
	Reason   string
	SeenAt   time.Time
}

type Repo struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	misses   map[string]Miss
}

func New() *Repo {
	return &Repo{sessions: map[string]domain.Session{}, misses: map[string]Miss{}}
}

func (r *Repo) Create(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	r.sessions[s.ID] = clone(s)
	return nil
}

func (r *Repo) Update(_ context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	next := clone(cur)
	if err := fn(&next); err != nil {
		return domain.Session{}, err
	}
	next.ID = id
	r.sessions[id] = clone(next)
	return next, nil
}

func (r *Repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// LogMiss keeps the latest failure per user, like the mysql status_misses table.
func (r *Repo) LogMiss(_ context.Context, userName string, status int, reason string) error {
	r.mu.Lock()
	r.misses[userName] = Miss{UserName: userName, Status: status, Reason: reason, SeenAt: time.Now().UTC()}
	r.mu.Unlock()
	log.Debug().Str("user", userName).Int("status", status).Str("reason", reason).Msg("status miss recorded")
	return nil
}

func (r *Repo) Misses() []Miss {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Miss, 0, len(r.misses))
	for _, m := range r.misses {
		out = append(out, m)
	}
	return out
}

func (r *Repo) Get(_ context.Context, id string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return clone(s), nil
}

func clone(s domain.Session) domain.Session {
	out := s
	if s.Preferences != nil {
		p := *s.Preferences
		p.Vibes = append([]string(nil), s.Preferences.Vibes...)
		p.FoodInterests = append([]string(nil), s.Preferences.FoodInterests...)
		p.ActivityTypes = append([]string(nil), s.Preferences.ActivityTypes...)
		out.Preferences = &p
	}
	if s.Trip != nil {
		t := *s.Trip
		out.Trip = &t
	}
	out.SavedPOIIDs = append(make([]string, 0, len(s.SavedPOIIDs)), s.SavedPOIIDs...)
	return out
}
