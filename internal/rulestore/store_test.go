package rulestore

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	tables *Tables
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (*Tables, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

func TestStoreLoadAndCurrent(t *testing.T) {
	src := &fakeSource{tables: testTables()}
	store := NewStore(src, time.Minute)

	if _, err := store.Current(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Current before Load = %v, want ErrNotLoaded", err)
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1", snap.Version)
	}

	got, err := store.Current()
	if err != nil || got != snap {
		t.Errorf("Current = (%p, %v), want loaded snapshot", got, err)
	}
}

func TestStoreReloadKeepsSnapshotOnFailure(t *testing.T) {
	src := &fakeSource{tables: testTables()}
	store := NewStore(src, time.Minute)

	first, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	src.err = errors.New("sheet gone")
	if err := store.Reload(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Reload = %v, want ErrSourceUnavailable", err)
	}

	got, err := store.Current()
	if err != nil || got != first {
		t.Errorf("snapshot changed after failed reload")
	}

	src.err = nil
	if err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got, _ = store.Current()
	if got == first {
		t.Error("expected a fresh snapshot after successful reload")
	}
	if got.Version != 2 {
		t.Errorf("version = %d, want 2 (failed reload consumes no version)", got.Version)
	}
}
