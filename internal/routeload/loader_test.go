package routeload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"/badges":              "/badges",
		"/badges/":             "/badges",
		"/badges?tab=archived": "/badges",
		"/orders/42#items":     "/orders/42",
		"badges":               "/badges",
		"/":                    "/",
		"":                     "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	tests := []struct {
		path   string
		stores []string
	}{
		{path: "/products", stores: []string{catalog.Products, catalog.Teams, catalog.Namesets, catalog.KitTypes, catalog.Badges, catalog.Leagues}},
		{path: "/sales/", stores: []string{catalog.Products, catalog.Teams, catalog.Namesets, catalog.KitTypes, catalog.Badges}},
		{path: "/badges?q=serie", stores: []string{catalog.Badges}},
		{path: "/orders/123", stores: []string{catalog.Orders, catalog.Products}},
		{path: "/orders", stores: []string{catalog.Orders, catalog.Products, catalog.Teams, catalog.Namesets, catalog.KitTypes, catalog.Badges}},
		{path: "/settings", stores: nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.stores, table.Stores(tt.path))
		})
	}
}

func TestParseTable_UnknownStore(t *testing.T) {
	_, err := ParseTable([]byte("routes:\n  /scarves: [scarves]\n"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("routes: [oops"))
	assert.Error(t, err)
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	require.True(t, g.TryAcquire("/badges"))
	assert.False(t, g.TryAcquire("/badges"), "loading path")

	g.Release("/badges", false)
	assert.False(t, g.Loaded("/badges"))
	require.True(t, g.TryAcquire("/badges"), "failed load retries")

	g.Release("/badges", true)
	assert.True(t, g.Loaded("/badges"))
	assert.False(t, g.TryAcquire("/badges"), "loaded path")

	g.Forget(func(p string) bool { return p == "/badges" })
	assert.False(t, g.Loaded("/badges"))

	require.True(t, g.TryAcquire("/teams"))
	g.Forget(func(string) bool { return true })
	g.Release("/teams", true)
	assert.False(t, g.Loaded("/teams"), "invalidated while loading")

	require.True(t, g.TryAcquire("/sellers"))
	g.Reset()
	assert.True(t, g.TryAcquire("/sellers"))
}

// countingSource counts active-list fetches and can block the first one until
// released.
type countingSource struct {
	fetches atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (s *countingSource) list(_ context.Context, archived bool) ([]model.StockItem, error) {
	if !archived && s.fetches.Add(1) == 1 && s.started != nil {
		close(s.started)
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return []model.StockItem{{ID: uuid.New(), Name: "Serie A"}}, nil
}

func newBadgeLoader(t *testing.T, badges *countingSource) *Loader {
	t.Helper()
	table, err := ParseTable([]byte("routes:\n  /badges: [badges]\n"))
	require.NoError(t, err)

	reg := catalog.NewRegistry(catalog.Sources{Badges: badges.list}, zerolog.Nop())
	loader, err := NewLoader(table, NewGuard(), reg, zerolog.Nop())
	require.NoError(t, err)
	return loader
}

func TestLoader_ConcurrentLoadsFetchOnce(t *testing.T) {
	ctx := context.Background()
	badges := &countingSource{started: make(chan struct{}), release: make(chan struct{})}
	loader := newBadgeLoader(t, badges)

	var (
		wg    sync.WaitGroup
		first bool
		err   error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, err = loader.Load(ctx, "/badges")
	}()

	<-badges.started
	second, secondErr := loader.Load(ctx, "/badges/")
	close(badges.release)
	wg.Wait()

	require.NoError(t, err)
	require.NoError(t, secondErr)
	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, int32(1), badges.fetches.Load())

	again, err := loader.Load(ctx, "/badges")
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, int32(1), badges.fetches.Load())
}

func TestLoader_FailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	badges := &countingSource{err: errors.New("network down")}
	loader := newBadgeLoader(t, badges)

	ran, err := loader.Load(ctx, "/badges")
	assert.True(t, ran)
	assert.Error(t, err)

	badges.err = nil
	ran, err = loader.Load(ctx, "/badges")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(2), badges.fetches.Load())
}

func TestLoader_InvalidateRefetches(t *testing.T) {
	ctx := context.Background()
	badges := &countingSource{}
	loader := newBadgeLoader(t, badges)

	_, err := loader.Load(ctx, "/badges")
	require.NoError(t, err)

	loader.Invalidate(catalog.Teams)
	ran, _ := loader.Load(ctx, "/badges")
	assert.False(t, ran, "unrelated store")

	loader.Invalidate(catalog.Badges)
	ran, err = loader.Load(ctx, "/badges")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(2), badges.fetches.Load())
}

func TestLoader_InvalidateDuringLoadRefetches(t *testing.T) {
	ctx := context.Background()
	badges := &countingSource{started: make(chan struct{}), release: make(chan struct{})}
	loader := newBadgeLoader(t, badges)

	done := make(chan error, 1)
	go func() {
		_, err := loader.Load(ctx, "/badges")
		done <- err
	}()

	<-badges.started
	loader.Invalidate(catalog.Badges)
	close(badges.release)
	require.NoError(t, <-done)

	ran, err := loader.Load(ctx, "/badges")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(2), badges.fetches.Load())

	ran, err = loader.Load(ctx, "/badges")
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, int32(2), badges.fetches.Load())
}

func TestLoader_SnapshotsSearch(t *testing.T) {
	ctx := context.Background()
	loader := newBadgeLoader(t, &countingSource{})
	_, err := loader.Load(ctx, "/badges")
	require.NoError(t, err)

	views, err := loader.Snapshots("/badges", "serie")
	require.NoError(t, err)
	assert.Len(t, views[catalog.Badges].(catalog.Snapshot[model.StockItem]).Active, 1)

	views, err = loader.Snapshots("/badges", "coppa")
	require.NoError(t, err)
	assert.Empty(t, views[catalog.Badges].(catalog.Snapshot[model.StockItem]).Active)
}

func TestLoader_UnknownPathAndUnregisteredStore(t *testing.T) {
	loader := newBadgeLoader(t, &countingSource{})
	ran, err := loader.Load(context.Background(), "/nowhere")
	require.NoError(t, err)
	assert.False(t, ran)

	table, err := ParseTable([]byte("routes:\n  /teams: [teams]\n"))
	require.NoError(t, err)
	_, err = NewLoader(table, NewGuard(), catalog.NewRegistry(catalog.Sources{}, zerolog.Nop()), zerolog.Nop())
	assert.Error(t, err)
}
