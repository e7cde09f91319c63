package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/model"
)

var (
	// ErrVersionConflict is returned by Save when the document on disk has
	// moved past the version the caller loaded. Another writer (possibly in
	// another process) landed first.
	ErrVersionConflict = errors.New("document version conflict")

	// ErrNoChanges can be returned by an Update callback to finish the
	// cycle without writing anything.
	ErrNoChanges = errors.New("no document changes")
)

const defaultCacheTTL = 5 * time.Second

// Store owns the shared JSON document. Loads within the freshness window
// are served from an in-process cache; saves go through a temp file and an
// atomic rename, so a reader never observes a partially written document.
//
// The mutex only serializes access within one process. Writers in other
// processes are detected through the version check on Save, not prevented.
type Store struct {
	path     string
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.RWMutex
	cached   *model.Document
	cachedAt time.Time
}

type Option func(*Store)

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a deep copy of the current document, safe for the caller to
// mutate. A corrupt or unreadable backing file degrades to an empty default
// document rather than failing the request.
func (s *Store) Load() *model.Document {
	now := s.now()

	s.mu.RLock()
	if s.cached != nil && now.Sub(s.cachedAt) < s.cacheTTL {
		doc := s.cached.Clone()
		s.mu.RUnlock()
		return doc
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check: another goroutine may have refreshed the cache while we
	// waited for the write lock.
	if s.cached != nil && s.now().Sub(s.cachedAt) < s.cacheTTL {
		return s.cached.Clone()
	}

	return s.refreshLocked().Clone()
}

// Save persists the document via temp-file-then-rename and makes it the new
// cache entry. The caller's document must carry the version it was loaded
// with; a stale version fails with ErrVersionConflict and writes nothing.
func (s *Store) Save(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The disk, not the local cache, is the authority here: another process
	// sharing the file may have written since our last load.
	if current := s.diskVersion(); doc.Version != current {
		return fmt.Errorf("%w: loaded version %d, persisted version %d", ErrVersionConflict, doc.Version, current)
	}

	next := doc.Clone()
	next.Version++

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}

	s.cached = next
	s.cachedAt = s.now()
	return nil
}

// Update runs one Load/mutate/Save cycle. A version conflict is retried
// once against a fresh read; a second conflict surfaces to the caller. The
// callback may return ErrNoChanges to skip the save.
func (s *Store) Update(fn func(*model.Document) error) (*model.Document, error) {
	for attempt := 0; attempt < 2; attempt++ {
		doc := s.Load()
		if err := fn(doc); err != nil {
			if errors.Is(err, ErrNoChanges) {
				return doc, nil
			}
			return nil, err
		}

		err := s.Save(doc)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}

		s.logger.Warn("document save conflict, retrying", zap.Int("attempt", attempt+1))
		s.Invalidate()
	}

	return nil, ErrVersionConflict
}

// Invalidate drops the cache so the next Load reads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Store) refreshLocked() *model.Document {
	doc := s.readDisk()
	s.cached = doc
	s.cachedAt = s.now()
	return doc
}

func (s *Store) readDisk() *model.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("read document file", zap.Error(err), zap.String("path", s.path))
		}
		return model.DefaultDocument()
	}

	doc := &model.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		// Availability over strict durability: a corrupt file degrades to
		// an empty document. The next save overwrites it.
		s.logger.Error("document file is corrupt, falling back to defaults", zap.Error(err), zap.String("path", s.path))
		return model.DefaultDocument()
	}

	doc.Normalize()
	return doc
}

func (s *Store) diskVersion() int64 {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0
	}
	return head.Version
}
