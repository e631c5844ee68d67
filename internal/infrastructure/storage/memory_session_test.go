package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func TestAcquireCreatesAndReuses(t *testing.T) {
	store := NewSessionStore(time.Hour)

	sess, release := store.Acquire(1, 1, "vlad")
	if sess.State != entity.StateGreeting {
		t.Errorf("state = %v, want greeting", sess.State)
	}
	sess.Name = "Влад"
	release()

	again, release := store.Acquire(1, 1, "vlad")
	defer release()
	if again.Name != "Влад" {
		t.Errorf("name = %q, session not reused", again.Name)
	}
}

func TestAcquireSerializesTurns(t *testing.T) {
	store := NewSessionStore(time.Hour)

	sess, release := store.Acquire(1, 1, "vlad")
	sess.SearchOffset = 1

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s2, rel2 := store.Acquire(1, 1, "vlad")
		defer rel2()
		if s2.SearchOffset != 2 {
			t.Errorf("offset = %d, second turn ran before first finished", s2.SearchOffset)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second acquire returned while first turn held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	sess.SearchOffset = 2
	release()
	wg.Wait()
}

func TestEvictIdleKeepsActiveSessions(t *testing.T) {
	store := NewSessionStore(time.Minute)

	sess, release := store.Acquire(1, 1, "old")
	sess.LastActivity = time.Now().Add(-2 * time.Minute)
	release()

	active, release := store.Acquire(2, 2, "fresh")
	active.LastActivity = time.Now()
	release()

	store.evictIdle()

	if _, ok := store.Peek(1); ok {
		t.Error("idle session survived eviction")
	}
	if _, ok := store.Peek(2); !ok {
		t.Error("active session was evicted")
	}
}

func TestForEachVisitsAllSessions(t *testing.T) {
	store := NewSessionStore(time.Hour)
	for id := int64(1); id <= 3; id++ {
		_, release := store.Acquire(id, id, "u")
		release()
	}

	var seen int
	store.ForEach(func(sess *entity.Session) { seen++ })
	if seen != 3 {
		t.Errorf("visited %d sessions, want 3", seen)
	}
}
