// Package catalog keeps in-memory lists of entities for the dashboard pages:
// active and archived collections, the last load error and a search term.
package catalog

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Source lists entities from the backing services.
type Source[T any] interface {
	ListActive(ctx context.Context) ([]T, error)
	ListArchived(ctx context.Context) ([]T, error)
}

// ListFunc adapts a List(ctx, archived) method to a Source.
type ListFunc[T any] func(ctx context.Context, archived bool) ([]T, error)

func (f ListFunc[T]) ListActive(ctx context.Context) ([]T, error)   { return f(ctx, false) }
func (f ListFunc[T]) ListArchived(ctx context.Context) ([]T, error) { return f(ctx, true) }

// Snapshot is a copy of a store's state.
type Snapshot[T any] struct {
	Active    []T    `json:"active"`
	Archived  []T    `json:"archived"`
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
	Search    string `json:"search,omitempty"`
	Populated bool   `json:"populated"`
}

// Store caches one entity collection.
type Store[T any] struct {
	name   string
	source Source[T]
	idOf   func(T) uuid.UUID
	textOf func(T) string

	mu        sync.RWMutex
	active    []T
	archived  []T
	loading   bool
	err       error
	search    string
	populated bool
	// gen counts invalidations; a load only marks the store populated if
	// no invalidation happened while it was fetching.
	gen uint64
}

// NewStore creates an empty store. idOf identifies entities for local moves;
// textOf returns the text matched by the search term.
func NewStore[T any](name string, source Source[T], idOf func(T) uuid.UUID, textOf func(T) string) *Store[T] {
	return &Store[T]{
		name:   name,
		source: source,
		idOf:   idOf,
		textOf: textOf,
	}
}

func (s *Store[T]) Name() string {
	return s.name
}

// Load fetches both collections. On failure the previous lists are kept and
// the error is both stored and returned. A load that overlaps an Invalidate
// keeps its lists but leaves the store unpopulated.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	gen := s.gen
	s.mu.Unlock()

	var active, archived []T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = s.source.ListActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		archived, err = s.source.ListArchived(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.active = active
	s.archived = archived
	s.populated = s.gen == gen
	return nil
}

// Populated reports whether the store holds a current successful load.
func (s *Store[T]) Populated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.populated
}

// Invalidate marks the lists stale so the next route load refetches them.
func (s *Store[T]) Invalidate() {
	s.mu.Lock()
	s.populated = false
	s.gen++
	s.mu.Unlock()
}

func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store[T]) snapshot() Snapshot[T] {
	snap := Snapshot[T]{
		Active:    append([]T{}, s.active...),
		Archived:  append([]T{}, s.archived...),
		Loading:   s.loading,
		Search:    s.search,
		Populated: s.populated,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// View returns the snapshot as an untyped value for serialisation.
func (s *Store[T]) View() any {
	return s.Snapshot()
}

// SearchView is View with the active list narrowed to the entities matching
// term. The store's own search term is left as it is, so concurrent readers
// can search independently.
func (s *Store[T]) SearchView(term string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot()
	if strings.TrimSpace(term) != "" {
		snap.Active = s.match(term)
		snap.Search = term
	}
	return snap
}

func (s *Store[T]) SetSearch(term string) {
	s.mu.Lock()
	s.search = term
	s.mu.Unlock()
}

// Filtered returns the active entities matching the search term, ignoring
// case and diacritics. An empty term matches everything.
func (s *Store[T]) Filtered() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match(s.search)
}

func (s *Store[T]) match(term string) []T {
	needle := Fold(term)
	if needle == "" {
		return append([]T{}, s.active...)
	}

	out := []T{}
	for _, item := range s.active {
		if strings.Contains(Fold(s.textOf(item)), needle) {
			out = append(out, item)
		}
	}
	return out
}

// MarkArchived moves an entity from the active to the archived list.
func (s *Store[T]) MarkArchived(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		item  T
		found bool
	)
	s.active, item, found = s.take(s.active, id)
	if found {
		s.archived = append(s.archived, item)
	}
	return found
}

// MarkRestored moves an entity from the archived back to the active list.
func (s *Store[T]) MarkRestored(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		item  T
		found bool
	)
	s.archived, item, found = s.take(s.archived, id)
	if found {
		s.active = append(s.active, item)
	}
	return found
}

// Remove drops an entity from whichever list holds it.
func (s *Store[T]) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fromActive, fromArchived bool
	s.active, _, fromActive = s.take(s.active, id)
	s.archived, _, fromArchived = s.take(s.archived, id)
	return fromActive || fromArchived
}

func (s *Store[T]) take(list []T, id uuid.UUID) ([]T, T, bool) {
	for i, item := range list {
		if s.idOf(item) == id {
			return append(list[:i:i], list[i+1:]...), item, true
		}
	}
	var zero T
	return list, zero, false
}

// Fold lower-cases text and strips diacritics, so "Ștefan" and "stefan"
// compare equal.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
