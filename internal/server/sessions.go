package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/gcdtutor/internal/orchestration"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "gcdtutor_session"

type storedSession struct {
	session  *orchestration.Session
	lastSeen time.Time
}

// SessionStore maps browser session ids to lesson sessions. Idle sessions
// expire after ttl; when full, the least recently used one is evicted.
type SessionStore struct {
	newSession func() *orchestration.Session
	ttl        time.Duration
	max        int
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

// NewSessionStore creates a store. newSession builds the state of a new
// browser.
func NewSessionStore(newSession func() *orchestration.Session, ttl time.Duration, maxSessions int) *SessionStore {
	return &SessionStore{
		newSession: newSession,
		ttl:        ttl,
		max:        maxSessions,
		now:        time.Now,
		sessions:   make(map[string]*storedSession),
	}
}

// Get returns the session of the request, creating one and setting the
// cookie when the request has none or its session expired.
func (st *SessionStore) Get(w http.ResponseWriter, r *http.Request) *orchestration.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if c, err := r.Cookie(SessionCookie); err == nil {
		if e, ok := st.sessions[c.Value]; ok && now.Sub(e.lastSeen) < st.ttl {
			e.lastSeen = now
			return e.session
		}
	}

	if st.max > 0 && len(st.sessions) >= st.max {
		st.sweepLocked(now)
		if len(st.sessions) >= st.max {
			st.evictOldestLocked()
		}
	}
	id := uuid.NewString()
	e := &storedSession{session: st.newSession(), lastSeen: now}
	st.sessions[id] = e
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(st.ttl.Seconds()),
	})
	return e.session
}

// Lookup returns the session of the request without creating one.
func (st *SessionStore) Lookup(r *http.Request) (*orchestration.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[c.Value]
	if !ok || st.now().Sub(e.lastSeen) >= st.ttl {
		return nil, false
	}
	e.lastSeen = st.now()
	return e.session, true
}

// Len returns the number of stored sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many remain.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(st.now())
	return len(st.sessions)
}

func (st *SessionStore) sweepLocked(now time.Time) {
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) >= st.ttl {
			delete(st.sessions, id)
		}
	}
}

func (st *SessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range st.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	delete(st.sessions, oldestID)
}

// RunJanitor sweeps expired sessions every interval until ctx is done,
// reporting the remaining count to report.
func (st *SessionStore) RunJanitor(ctx context.Context, interval time.Duration, report func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := st.Sweep()
			if report != nil {
				report(n)
			}
		}
	}
}
