package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter скользящее окно запросов на клиента
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) IsAllowed(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()

	if requests, exists := rl.requests[key]; exists {
		rl.requests[key] = rl.recent(requests, now)
	}

	if len(rl.requests[key]) >= rl.limit {
		return false
	}

	rl.requests[key] = append(rl.requests[key], now)
	return true
}

// Cleanup удаляет клиентов без запросов в текущем окне
func (rl *RateLimiter) Cleanup() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	removed := 0
	for key, requests := range rl.requests {
		valid := rl.recent(requests, now)
		if len(valid) == 0 {
			delete(rl.requests, key)
			removed++
			continue
		}
		rl.requests[key] = valid
	}
	return removed
}

// Len количество отслеживаемых клиентов
func (rl *RateLimiter) Len() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.requests)
}

func (rl *RateLimiter) recent(requests []time.Time, now time.Time) []time.Time {
	var valid []time.Time
	for _, t := range requests {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}
	return valid
}

// Middleware отвечает 429, когда клиент превысил лимит
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.IsAllowed(clientKey(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests, please wait a minute")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
