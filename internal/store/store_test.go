package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pandemic/internal/engine"
	"pandemic/internal/engine/eventcards"
	"pandemic/internal/lobby"
	"pandemic/internal/store"
)

func newDoc(t *testing.T, room string) *store.Document {
	t.Helper()
	l := lobby.New(room, "host", engine.DefaultSettings())
	if err := l.Join("p1", "Ana", ""); err != nil {
		t.Fatal(err)
	}
	if err := l.Join("p2", "Budi", ""); err != nil {
		t.Fatal(err)
	}
	return &store.Document{RoomID: room, Lobby: l}
}

func withGame(t *testing.T, doc *store.Document) {
	t.Helper()
	rules := engine.NewRules(engine.StandardWorld(), eventcards.Standard())
	gs, err := rules.InitializeGame(doc.Lobby.Roster(), doc.Lobby.Settings, 7)
	if err != nil {
		t.Fatal(err)
	}
	doc.Game = gs
}

func testStore(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.Create(ctx, newDoc(t, "ROOM01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("expected version 1, got %d", created.Version)
	}
	if _, err := s.Create(ctx, newDoc(t, "ROOM01")); !errors.Is(err, store.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := s.Get(ctx, "NOPE00"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	doc, err := s.Get(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(doc.Lobby.Players) != 2 || doc.Game != nil {
		t.Fatalf("unexpected document %+v", doc)
	}

	withGame(t, doc)
	stale := doc.Clone()
	saved, err := s.CompareAndSwap(ctx, doc)
	if err != nil {
		t.Fatalf("CompareAndSwap: %v", err)
	}
	if saved.Version != 2 {
		t.Errorf("expected version 2, got %d", saved.Version)
	}
	if _, err := s.CompareAndSwap(ctx, stale); !errors.Is(err, store.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for stale write, got %v", err)
	}

	got, err := s.Get(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Game == nil {
		t.Fatal("game was not persisted")
	}
	if got.Game.Seed != doc.Game.Seed || len(got.Game.PlayerDeck) != len(doc.Game.PlayerDeck) {
		t.Error("game did not round-trip")
	}
	for _, c := range engine.AllColors() {
		if got.Game.CubesLeft[c]+got.Game.CubesOnBoard(c) != engine.CubesPerColor {
			t.Errorf("cube invariant broken for %s after round trip", c)
		}
	}

	missing := newDoc(t, "GHOST0")
	missing.Version = 1
	if _, err := s.CompareAndSwap(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown room, got %v", err)
	}

	if err := s.Delete(ctx, "ROOM01"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "ROOM01"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "ROOM01"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, store.NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "rooms.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PANDEMIC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PANDEMIC_TEST_MONGO_URI not set")
	}
	db := "pandemic_test_" + time.Now().Format("150405")
	s, err := store.OpenMongo(uri, db, 3*time.Second, nil)
	if err != nil {
		t.Fatalf("OpenMongo: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := store.OpenSQLite("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestUpdateRetriesConflicts(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if _, err := s.Create(ctx, newDoc(t, "ROOM01")); err != nil {
		t.Fatal(err)
	}

	const writers = 8
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, s, "ROOM01", 100, func(d *store.Document) error {
				return d.Lobby.SetReady(d.Lobby.Players[i%2].ID, true)
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	doc, _ := s.Get(ctx, "ROOM01")
	if doc.Version != writers+1 {
		t.Errorf("expected every write to land once, version %d", doc.Version)
	}
}

func TestUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	_, _ = s.Create(ctx, newDoc(t, "ROOM01"))
	boom := errors.New("boom")
	if _, err := store.Update(ctx, s, "ROOM01", 3, func(*store.Document) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
	doc, _ := s.Get(ctx, "ROOM01")
	if doc.Version != 1 {
		t.Errorf("aborted update must not write, version %d", doc.Version)
	}
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	f := store.NewFeed(store.NewMemoryStore())
	ch, cancel := f.Subscribe("ROOM01")
	other, cancelOther := f.Subscribe("ROOM02")
	defer cancelOther()

	if _, err := f.Create(ctx, newDoc(t, "ROOM01")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, f, "ROOM01", 1, func(d *store.Document) error {
		return d.Lobby.SetReady("p1", true)
	}); err != nil {
		t.Fatal(err)
	}

	first := <-ch
	second := <-ch
	if first.Version != 1 || second.Version != 2 {
		t.Errorf("expected versions 1 and 2, got %d and %d", first.Version, second.Version)
	}
	if !second.Lobby.Players[0].Ready {
		t.Error("snapshot does not carry the write")
	}
	select {
	case d := <-other:
		t.Errorf("subscriber of another room received %s", d.RoomID)
	default:
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}

	ch2, cancel2 := f.Subscribe("ROOM01")
	defer cancel2()
	if err := f.Delete(ctx, "ROOM01"); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch2; ok {
		t.Error("channel should be closed after delete")
	}
}

func TestFeedSlowSubscriberKeepsNewest(t *testing.T) {
	ctx := context.Background()
	f := store.NewFeed(store.NewMemoryStore())
	ch, cancel := f.Subscribe("ROOM01")
	defer cancel()
	_, _ = f.Create(ctx, newDoc(t, "ROOM01"))
	for i := range 40 {
		_, err := store.Update(ctx, f, "ROOM01", 1, func(d *store.Document) error {
			return d.Lobby.SetReady("p1", i%2 == 0)
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	var last *store.Document
	for len(ch) > 0 {
		last = <-ch
	}
	if last == nil || last.Version != 41 {
		t.Errorf("expected newest snapshot version 41, got %+v", last)
	}
}
