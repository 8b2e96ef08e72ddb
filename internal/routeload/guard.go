package routeload

import "sync"

// pathSet is a set of normalised paths.
type pathSet map[string]struct{}

func (s pathSet) contains(path string) bool {
	_, ok := s[path]
	return ok
}

// Guard is the single-flight state shared by every loader in the process:
// which paths are being loaded and which are already satisfied.
type Guard struct {
	mu      sync.Mutex
	loading pathSet
	loaded  pathSet
	// stale holds loading paths whose stores were invalidated mid-flight.
	stale pathSet
}

func NewGuard() *Guard {
	return &Guard{
		loading: make(pathSet),
		loaded:  make(pathSet),
		stale:   make(pathSet),
	}
}

// TryAcquire marks path as loading. It returns false when the path is
// already loading or loaded, in which case the caller must not load.
func (g *Guard) TryAcquire(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loading.contains(path) || g.loaded.contains(path) {
		return false
	}
	g.loading[path] = struct{}{}
	return true
}

// Release ends a load started by TryAcquire. A failed load leaves the path
// unmarked so the next caller retries.
func (g *Guard) Release(path string, success bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.loading, path)
	if g.stale.contains(path) {
		delete(g.stale, path)
		return
	}
	if success {
		g.loaded[path] = struct{}{}
	} else {
		delete(g.loaded, path)
	}
}

// Loaded reports whether path has been satisfied.
func (g *Guard) Loaded(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loaded.contains(path)
}

// Forget clears the loaded mark of every path matching fn. A matching path
// that is loading will not be marked loaded when it is released.
func (g *Guard) Forget(fn func(path string) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for path := range g.loaded {
		if fn(path) {
			delete(g.loaded, path)
		}
	}
	for path := range g.loading {
		if fn(path) {
			g.stale[path] = struct{}{}
		}
	}
}

// Reset forgets all state.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.loading = make(pathSet)
	g.loaded = make(pathSet)
	g.stale = make(pathSet)
}
