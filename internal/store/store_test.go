package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivankudzin/muji/internal/domain/model"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "doc.json")
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s := New(tempStorePath(t))

	doc := s.Load()
	if doc == nil {
		t.Fatal("expected a document")
	}
	if len(doc.Profiles) != 0 || len(doc.Orders) != 0 {
		t.Fatalf("expected empty default document, got %+v", doc)
	}
	if doc.Settings.BonusPercentage != model.DefaultBonusPercentage {
		t.Fatalf("unexpected bonus percentage: %v", doc.Settings.BonusPercentage)
	}
}

func TestLoadCorruptFileReturnsDefault(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	doc := s.Load()
	if len(doc.Profiles) != 0 {
		t.Fatalf("expected default document from corrupt file, got %+v", doc)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice", Visible: true})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := New(path)
	loaded := fresh.Load()
	if len(loaded.Profiles) != 1 || loaded.Profiles[0].Name != "Alice" {
		t.Fatalf("unexpected profiles after reload: %+v", loaded.Profiles)
	}
	if loaded.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", loaded.Version)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice"})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLoadSurvivesPartialTempFile(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice"})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A crash between the temp write and the rename leaves a truncated
	// temp file next to the last good document.
	if err := os.WriteFile(path+".tmp", []byte(`{"version":9,"prof`), 0o600); err != nil {
		t.Fatal(err)
	}

	loaded := New(path).Load()
	if len(loaded.Profiles) != 1 || loaded.Profiles[0].Name != "Alice" {
		t.Fatalf("persisted document lost after crash: %+v", loaded.Profiles)
	}
	if loaded.Version != 1 {
		t.Fatalf("expected version 1, got %d", loaded.Version)
	}
}

func TestLoadServesCacheWithinTTL(t *testing.T) {
	path := tempStorePath(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := New(path, WithCacheTTL(5*time.Second), WithClock(func() time.Time { return now }))

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice"})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Another writer replaces the file behind the cache's back.
	other := New(path)
	otherDoc := other.Load()
	otherDoc.Profiles[0].Name = "Bob"
	if err := other.Save(otherDoc); err != nil {
		t.Fatalf("second writer save: %v", err)
	}

	if got := s.Load().Profiles[0].Name; got != "Alice" {
		t.Fatalf("expected cached read within TTL, got %q", got)
	}

	now = now.Add(6 * time.Second)
	if got := s.Load().Profiles[0].Name; got != "Bob" {
		t.Fatalf("expected fresh read after TTL, got %q", got)
	}
}

func TestLoadReturnsIndependentCopies(t *testing.T) {
	s := New(tempStorePath(t))

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice"})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	first := s.Load()
	first.Profiles[0].Name = "Mallory"

	second := s.Load()
	if second.Profiles[0].Name != "Alice" {
		t.Fatalf("mutation through one copy leaked into another: %q", second.Profiles[0].Name)
	}
}

func TestSaveStaleVersionConflicts(t *testing.T) {
	path := tempStorePath(t)
	a := New(path)
	b := New(path)

	docA := a.Load()
	docB := b.Load()

	docA.Profiles = append(docA.Profiles, model.Profile{ID: 1, Name: "A"})
	if err := a.Save(docA); err != nil {
		t.Fatalf("first save: %v", err)
	}

	docB.Profiles = append(docB.Profiles, model.Profile{ID: 1, Name: "B"})
	if err := b.Save(docB); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestUpdateRetriesOnceOnConflict(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)
	interferer := New(path)

	calls := 0
	_, err := s.Update(func(doc *model.Document) error {
		calls++
		if calls == 1 {
			// Simulate another process winning the race before our save.
			other := interferer.Load()
			other.Profiles = append(other.Profiles, model.Profile{ID: 99, Name: "other"})
			if err := interferer.Save(other); err != nil {
				t.Fatalf("interfering save: %v", err)
			}
		}
		doc.Chats = append(doc.Chats, model.Chat{ID: int64(calls), ProfileID: 1})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}

	final := New(path).Load()
	if len(final.Chats) != 1 {
		t.Fatalf("expected exactly one chat after retry, got %d", len(final.Chats))
	}
	if len(final.Profiles) != 1 {
		t.Fatalf("interfering write lost: %+v", final.Profiles)
	}
}

func TestUpdateNoChangesSkipsSave(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)

	if _, err := s.Update(func(doc *model.Document) error {
		return ErrNoChanges
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file written, got %v", err)
	}
}

func TestSavePersistsIndentedJSON(t *testing.T) {
	path := tempStorePath(t)
	s := New(path)

	doc := s.Load()
	doc.Profiles = append(doc.Profiles, model.Profile{ID: 1, Name: "Alice"})
	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("stored file is not valid json: %v", err)
	}
}
