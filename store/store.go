// Package store keeps an in-memory mirror of one remote collection together
// with a filtered view of it.
//
// Every write is two-phase: the remote call runs first, and only after it
// succeeds is the local collection changed. Nothing is applied optimistically
// and nothing is rolled back.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"GoodDental/search"

	"github.com/rs/zerolog"
)

// ErrNotLoaded is returned when an action needs a record that is not in the
// local collection.
var ErrNotLoaded = errors.New("record not present in store")

// Remote is the document service a Store mirrors.
type Remote[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}

// Config describes how a Store reads and stamps records of type T.
type Config[T any] struct {
	// Name identifies the collection in logs.
	Name string
	// ID returns the identifier of a record. Required.
	ID func(T) string
	// Fields are searched by SetSearchTerm.
	Fields []search.Field[T]
	// Touch stamps the update time before a record is sent to Update.
	Touch func(item *T, now time.Time)
	// SetActive flips the soft-delete flag.
	SetActive func(item *T, active bool)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Store is the single source of truth for one entity collection in the
// running process. Build one per entity at the application root and share it.
//
// The mutex only keeps readers memory-safe; remote calls run outside it, so
// two writers racing on the same id resolve as last local write wins.
type Store[T any] struct {
	remote Remote[T]
	cfg    Config[T]
	logger zerolog.Logger

	mu         sync.RWMutex
	items      []T
	filtered   []T
	term       string
	selectedID string
	loading    bool
}

// New builds an empty store over remote.
func New[T any](remote Remote[T], cfg Config[T], logger zerolog.Logger) *Store[T] {
	if cfg.ID == nil {
		panic("store: Config.ID is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store[T]{
		remote:   remote,
		cfg:      cfg,
		logger:   logger.With().Str("collection", cfg.Name).Logger(),
		items:    []T{},
		filtered: []T{},
	}
}

// LoadAll replaces the local collection with the remote one. A failed fetch
// is logged and the previous collection is kept.
func (s *Store[T]) LoadAll(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.remote.ListAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load collection, keeping previous state")
		return
	}
	if items == nil {
		items = []T{}
	}
	s.items = items
	if s.selectedID != "" && s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	s.refilter()
	s.logger.Debug().Int("count", len(items)).Msg("collection loaded")
}

// Create stores data remotely and appends the record the remote returns, with
// its assigned id and timestamps.
func (s *Store[T]) Create(ctx context.Context, data T) (T, error) {
	created, err := s.remote.Create(ctx, data)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, created)
	s.refilter()
	return created, nil
}

// Update writes the full record remotely, then replaces the local entry with
// the same id. The stamped record is returned.
func (s *Store[T]) Update(ctx context.Context, item T) (T, error) {
	if s.cfg.Touch != nil {
		s.cfg.Touch(&item, s.cfg.Now())
	}
	if err := s.remote.Update(ctx, item); err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.cfg.ID(item)); i >= 0 {
		s.items = replaceAt(s.items, i, item)
		s.refilter()
	}
	return item, nil
}

// Delete removes the record remotely, then locally. The selection is cleared
// if it pointed at the removed record.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = removeAt(s.items, i)
		s.refilter()
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
	return nil
}

// Deactivate soft-deletes a record by clearing its active flag.
func (s *Store[T]) Deactivate(ctx context.Context, id string) (T, error) {
	return s.setActive(ctx, id, false)
}

// Activate restores a soft-deleted record.
func (s *Store[T]) Activate(ctx context.Context, id string) (T, error) {
	return s.setActive(ctx, id, true)
}

func (s *Store[T]) setActive(ctx context.Context, id string, active bool) (T, error) {
	var zero T
	if s.cfg.SetActive == nil {
		return zero, errors.New("store: collection does not support activation")
	}
	item, ok := s.Get(id)
	if !ok {
		return zero, ErrNotLoaded
	}
	s.cfg.SetActive(&item, active)
	return s.Update(ctx, item)
}

// SetSearchTerm changes the term and recomputes the filtered view.
func (s *Store[T]) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.refilter()
}

// SearchTerm returns the current term.
func (s *Store[T]) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

// Filtered returns the records matching the current term.
func (s *Store[T]) Filtered() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, s.filtered...)
}

// Search filters the collection by term without changing the store's own
// term.
func (s *Store[T]) Search(term string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, search.Filter(s.items, term, s.cfg.Fields)...)
}

// Items returns the whole collection.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, s.items...)
}

// Len returns the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the record with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Select marks the record with id as selected.
func (s *Store[T]) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return ErrNotLoaded
	}
	s.selectedID = id
	return nil
}

// Selected returns the selected record, always the current version of it.
func (s *Store[T]) Selected() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID != "" {
		if i := s.indexOf(s.selectedID); i >= 0 {
			return s.items[i], true
		}
	}
	var zero T
	return zero, false
}

// ClearSelection drops the selection.
func (s *Store[T]) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
}

// Loading reports whether LoadAll is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// refilter must be called with mu held for writing.
func (s *Store[T]) refilter() {
	s.filtered = search.Filter(s.items, s.term, s.cfg.Fields)
}

func (s *Store[T]) indexOf(id string) int {
	for i, item := range s.items {
		if s.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

// replaceAt and removeAt build new slices so that slices handed out earlier
// are never written through.
func replaceAt[T any](items []T, i int, item T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = item
	return out
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
