// Package routeload loads the entity stores a dashboard page needs, at most
// once per path until the stores are invalidated.
package routeload

import (
	"context"
	"fmt"
	"time"

	"calcio-stop/internal/catalog"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Loader populates registry stores for a path under a Guard.
type Loader struct {
	routes   *Table
	guard    *Guard
	registry *catalog.Registry
	logger   zerolog.Logger
}

// NewLoader creates a loader. Every store named by the route table must be
// registered.
func NewLoader(routes *Table, guard *Guard, registry *catalog.Registry, logger zerolog.Logger) (*Loader, error) {
	for _, stores := range routes.exact {
		if err := checkRegistered(registry, stores); err != nil {
			return nil, err
		}
	}
	for _, rule := range routes.prefixes {
		if err := checkRegistered(registry, rule.stores); err != nil {
			return nil, err
		}
	}

	return &Loader{
		routes:   routes,
		guard:    guard,
		registry: registry,
		logger:   logger.With().Str("component", "route-loader").Logger(),
	}, nil
}

func checkRegistered(registry *catalog.Registry, stores []string) error {
	for _, name := range stores {
		if _, ok := registry.Get(name); !ok {
			return fmt.Errorf("store %q is not registered", name)
		}
	}
	return nil
}

// Stores returns the stores needed by path.
func (l *Loader) Stores(path string) []string {
	return l.routes.Stores(path)
}

// Load fetches the stores path needs. It returns false without loading when
// another caller holds or has completed the path. Stores that are already
// populated are skipped. Every store is given the chance to finish; the first
// failure is returned and the path stays unloaded.
func (l *Loader) Load(ctx context.Context, path string) (bool, error) {
	path = Normalize(path)
	stores := l.routes.Stores(path)
	if len(stores) == 0 {
		return false, nil
	}

	if !l.guard.TryAcquire(path) {
		l.logger.Debug().Str("path", path).Msg("Route already loading or loaded")
		return false, nil
	}

	start := time.Now()
	var g errgroup.Group
	fetched := 0
	for _, name := range stores {
		store, _ := l.registry.Get(name)
		if store.Populated() {
			continue
		}
		fetched++
		g.Go(func() error {
			if err := store.Load(ctx); err != nil {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	l.guard.Release(path, err == nil)
	if err != nil {
		l.logger.Error().Err(err).Str("path", path).Msg("Route load failed")
		return true, err
	}

	l.logger.Debug().
		Str("path", path).
		Int("stores_fetched", fetched).
		Dur("duration", time.Since(start)).
		Msg("Route loaded")
	return true, nil
}

// Invalidate marks the named stores stale and clears every path that needs
// them, so the next Load refetches.
func (l *Loader) Invalidate(names ...string) {
	if len(names) == 0 {
		return
	}
	l.registry.Invalidate(names...)
	l.guard.Forget(func(path string) bool {
		return l.routes.Needs(path, names)
	})
}

// Reset clears the guard.
func (l *Loader) Reset() {
	l.guard.Reset()
}

// Archived, Restored and Removed mirror a committed mutation in the cached
// store so snapshots are consistent before the next refetch.
func (l *Loader) Archived(store string, id uuid.UUID) { l.registry.Archived(store, id) }
func (l *Loader) Restored(store string, id uuid.UUID) { l.registry.Restored(store, id) }
func (l *Loader) Removed(store string, id uuid.UUID)  { l.registry.Removed(store, id) }

// Snapshots returns the store views needed by path, filtered by search.
func (l *Loader) Snapshots(path, search string) (map[string]any, error) {
	return l.registry.Views(l.routes.Stores(path), search)
}
