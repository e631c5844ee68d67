// Package storage holds the in-memory session store. Sessions are
// conversation state only; durable records (dialog log, viewing
// requests) live in the postgres dialog store of the delivery layer.
package storage

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

type sessionSlot struct {
	mu      sync.Mutex
	session *entity.Session
}

// SessionStore keeps one session per user and serializes turns: Acquire
// blocks while another turn for the same user is in flight, so the
// engine always sees consistent session state without its own locking.
type SessionStore struct {
	mu      sync.Mutex
	slots   map[int64]*sessionSlot
	idleTTL time.Duration
}

func NewSessionStore(idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		slots:   make(map[int64]*sessionSlot),
		idleTTL: idleTTL,
	}
}

// Acquire returns the user's session with its turn lock held. The
// caller must invoke release when the turn is done. A missing session
// is created in the greeting phase.
func (s *SessionStore) Acquire(userID, chatID int64, username string) (*entity.Session, func()) {
	s.mu.Lock()
	slot, ok := s.slots[userID]
	if !ok {
		slot = &sessionSlot{session: entity.NewSession(userID, chatID, username)}
		s.slots[userID] = slot
	}
	s.mu.Unlock()

	slot.mu.Lock()
	return slot.session, slot.mu.Unlock
}

// Peek returns a copy of the session without taking the turn lock, or
// false when the user has none. For monitoring only.
func (s *SessionStore) Peek(userID int64) (entity.Session, bool) {
	s.mu.Lock()
	slot, ok := s.slots[userID]
	s.mu.Unlock()
	if !ok {
		return entity.Session{}, false
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return *slot.session, true
}

// Drop removes a session entirely.
func (s *SessionStore) Drop(userID int64) {
	s.mu.Lock()
	delete(s.slots, userID)
	s.mu.Unlock()
}

// ForEach runs fn over every live session under its turn lock. Used by
// the silence monitor; fn must be quick.
func (s *SessionStore) ForEach(fn func(sess *entity.Session)) {
	s.mu.Lock()
	slots := make([]*sessionSlot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	s.mu.Unlock()

	for _, slot := range slots {
		slot.mu.Lock()
		fn(slot.session)
		slot.mu.Unlock()
	}
}

// StartCleanup evicts idle sessions in the background until the context
// is canceled.
func (s *SessionStore) StartCleanup(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.idleTTL / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle()
			}
		}
	}()
}

func (s *SessionStore) evictIdle() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	var stale []int64
	for id, slot := range s.slots {
		// TryLock: a session mid-turn is not idle
		if slot.mu.TryLock() {
			if slot.session.LastActivity.Before(cutoff) {
				stale = append(stale, id)
			}
			slot.mu.Unlock()
		}
	}
	for _, id := range stale {
		delete(s.slots, id)
	}
	s.mu.Unlock()

	if len(stale) > 0 {
		log.Printf("[SESSIONS] evicted %d idle sessions", len(stale))
	}
}
