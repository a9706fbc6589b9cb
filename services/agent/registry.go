package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

// sessionEntry pairs a session with the mutex that serializes its turns.
// Two requests for the same session never interleave; the second waits for
// the first to finish and then sees its writes.
type sessionEntry struct {
	mu       sync.Mutex
	sess     *models.Session
	lastSeen time.Time
}

// registry holds live sessions in process memory, keyed by session ID.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
}

func newSession(id string, at time.Time) *models.Session {
	return &models.Session{
		ID:        id,
		Stage:     models.StageGreeting,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// acquire returns the entry for id, minting a session when the id is empty,
// unknown or expired. An expired id keeps its value but gets a fresh
// conversation. The caller must hold the entry mutex for the whole turn.
func (r *registry) acquire(id string, at time.Time) *sessionEntry {
	if id == "" {
		id = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok && at.Sub(e.lastSeen) <= r.ttl {
		e.lastSeen = at
		return e
	}
	e := &sessionEntry{sess: newSession(id, at), lastSeen: at}
	r.sessions[id] = e
	return e
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweep drops sessions idle past the TTL and reports how many were removed.
func (r *registry) sweep(at time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if at.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *registry) runJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			if removed := r.sweep(now); removed > 0 {
				utils.GetLogger().Debug("expired sessions removed",
					zap.Int("count", removed),
					zap.Int("remaining", r.len()))
			}
		}
	}
}

func (r *registry) stopJanitor() {
	r.stopOnce.Do(func() { close(r.stop) })
}
