package rulestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// ErrSourceUnavailable wraps fetch failures; the previously loaded
// snapshot stays active when a refresh fails.
var ErrSourceUnavailable = errors.New("rule source unavailable")

// ErrNotLoaded returned by Current before the first successful Load.
var ErrNotLoaded = errors.New("rules not loaded yet")

// Store holds the active rule snapshot and refreshes it from a Source.
// Readers always see a complete snapshot: the swap is a single pointer
// store, never an in-place mutation.
type Store struct {
	source  Source
	ttl     time.Duration
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

// NewStore builds a store over one configuration source. ttl <= 0
// disables background refresh.
func NewStore(source Source, ttl time.Duration) *Store {
	return &Store{source: source, ttl: ttl}
}

// Load fetches the tables and installs a fresh snapshot. The first call
// must succeed for the bot to start; later calls behave like Reload.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	tables, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, s.source.Name(), err)
	}

	snap := BuildSnapshot(tables, s.version.Add(1))
	s.current.Store(snap)
	log.Printf("[RULES] loaded snapshot v%d from %s: %d pattern keys, %d questions, %d objections",
		snap.Version, s.source.Name(), len(snap.patterns), len(snap.Questions), len(snap.Objections))
	return snap, nil
}

// Current returns the active snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Reload refreshes from the source, keeping the previous snapshot on
// failure. In-flight turns keep the snapshot they started with.
func (s *Store) Reload(ctx context.Context) error {
	prev := s.current.Load()
	if _, err := s.Load(ctx); err != nil {
		if prev != nil {
			log.Printf("[RULES] refresh failed, keeping snapshot v%d: %v", prev.Version, err)
		}
		return err
	}
	return nil
}

// StartRefresh runs the TTL refresh loop until the context is canceled.
func (s *Store) StartRefresh(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Reload(ctx); err != nil {
					log.Printf("[RULES] background refresh error: %v", err)
				}
			}
		}
	}()
}
