package server

import (
	"context"
	"sync"
	"time"

	"interview-practice/internal/session"
)

type entry struct {
	sess         *session.Session
	lastActivity time.Time
	archived     bool
}

// Registry сессии сервера по идентификатору
type Registry struct {
	sessions map[string]*entry
	mutex    sync.RWMutex
	ttl      time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
	}
}

func (r *Registry) Add(s *session.Session) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := s.ID()
	r.sessions[id] = &entry{sess: s, lastActivity: time.Now()}
	return id
}

// Get возвращает сессию и отмечает активность
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastActivity = time.Now()
	return e.sess, true
}

// Rekey переносит сессию под новый идентификатор после Reset
func (r *Registry) Rekey(oldID, newID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, ok := r.sessions[oldID]
	if !ok || oldID == newID {
		return
	}
	delete(r.sessions, oldID)
	e.archived = false
	e.lastActivity = time.Now()
	r.sessions[newID] = e
}

// MarkArchived true только при первом вызове для попытки
func (r *Registry) MarkArchived(id string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, ok := r.sessions[id]
	if !ok || e.archived {
		return false
	}
	e.archived = true
	return true
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}

// Cleanup удаляет сессии без активности дольше ttl и возвращает их количество
func (r *Registry) Cleanup(now time.Time) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	cutoff := now.Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastActivity.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup запускает периодическую очистку до отмены контекста
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed := r.Cleanup(now)
				if onSweep != nil {
					onSweep(removed)
				}
			}
		}
	}()
}
