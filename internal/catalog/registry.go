package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Loadable is the type-erased view of a Store used by the registry and the
// route loader.
type Loadable interface {
	Name() string
	Load(ctx context.Context) error
	Populated() bool
	Invalidate()
	View() any
	SearchView(term string) any
}

// Sources provides the list functions backing each named store.
type Sources struct {
	Products ListFunc[model.Product]
	Namesets ListFunc[model.StockItem]
	Badges   ListFunc[model.StockItem]
	Teams    ListFunc[model.CatalogEntity]
	KitTypes ListFunc[model.CatalogEntity]
	Leagues  ListFunc[model.CatalogEntity]
	Sellers  ListFunc[model.CatalogEntity]
	Orders   ListFunc[model.Order]
	Sales    ListFunc[model.Sale]
}

// Registry holds the named stores.
type Registry struct {
	stores map[string]Loadable
	logger zerolog.Logger
}

// NewRegistry builds a store for every non-nil source.
func NewRegistry(src Sources, logger zerolog.Logger) *Registry {
	r := &Registry{
		stores: make(map[string]Loadable),
		logger: logger.With().Str("component", "catalog").Logger(),
	}

	if src.Products != nil {
		r.Register(NewStore[model.Product](Products, src.Products,
			func(p model.Product) uuid.UUID { return p.ID },
			func(p model.Product) string { return p.Name + " " + p.Season }))
	}
	if src.Namesets != nil {
		r.Register(NewStore[model.StockItem](Namesets, src.Namesets, stockItemID, namesetText))
	}
	if src.Badges != nil {
		r.Register(NewStore[model.StockItem](Badges, src.Badges, stockItemID, badgeText))
	}
	for name, list := range map[string]ListFunc[model.CatalogEntity]{
		Teams:    src.Teams,
		KitTypes: src.KitTypes,
		Leagues:  src.Leagues,
		Sellers:  src.Sellers,
	} {
		if list != nil {
			r.Register(NewStore[model.CatalogEntity](name, list,
				func(e model.CatalogEntity) uuid.UUID { return e.ID },
				func(e model.CatalogEntity) string { return e.Name }))
		}
	}
	if src.Orders != nil {
		r.Register(NewStore[model.Order](Orders, src.Orders,
			func(o model.Order) uuid.UUID { return o.ID },
			func(o model.Order) string { return o.CustomerName + " " + o.PhoneNumber }))
	}
	if src.Sales != nil {
		r.Register(NewStore[model.Sale](Sales, src.Sales,
			func(s model.Sale) uuid.UUID { return s.ID },
			func(s model.Sale) string { return s.CustomerName + " " + s.PhoneNumber }))
	}

	return r
}

func stockItemID(i model.StockItem) uuid.UUID { return i.ID }

func namesetText(i model.StockItem) string {
	if i.Number == nil {
		return i.Name
	}
	return i.Name + " " + strconv.Itoa(*i.Number)
}

func badgeText(i model.StockItem) string {
	return i.Name + " " + i.Season
}

// Register adds or replaces a store under its name.
func (r *Registry) Register(store Loadable) {
	r.stores[store.Name()] = store
}

// Get returns the named store.
func (r *Registry) Get(name string) (Loadable, bool) {
	s, ok := r.stores[name]
	return s, ok
}

// Names returns the registered store names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invalidate marks the named stores stale. Unknown names are ignored.
func (r *Registry) Invalidate(names ...string) {
	for _, name := range names {
		if s, ok := r.stores[name]; ok {
			s.Invalidate()
			r.logger.Debug().Str("store", name).Msg("Store invalidated")
		}
	}
}

// Views returns the snapshots of the named stores keyed by name. A non-empty
// search narrows every active list to the matching entities.
func (r *Registry) Views(names []string, search string) (map[string]any, error) {
	views := make(map[string]any, len(names))
	for _, name := range names {
		s, ok := r.stores[name]
		if !ok {
			return nil, fmt.Errorf("unknown store %q", name)
		}
		views[name] = s.SearchView(search)
	}
	return views, nil
}

// mover is the local-move half of a Store.
type mover interface {
	MarkArchived(id uuid.UUID) bool
	MarkRestored(id uuid.UUID) bool
	Remove(id uuid.UUID) bool
}

func (r *Registry) moverFor(name string) (mover, bool) {
	s, ok := r.stores[name]
	if !ok {
		return nil, false
	}
	m, ok := s.(mover)
	return m, ok
}

// Archived moves an entity to the archived list of the named store.
func (r *Registry) Archived(name string, id uuid.UUID) {
	if m, ok := r.moverFor(name); ok {
		m.MarkArchived(id)
	}
}

// Restored moves an entity back to the active list of the named store.
func (r *Registry) Restored(name string, id uuid.UUID) {
	if m, ok := r.moverFor(name); ok {
		m.MarkRestored(id)
	}
}

// Removed drops a deleted entity from the named store.
func (r *Registry) Removed(name string, id uuid.UUID) {
	if m, ok := r.moverFor(name); ok {
		m.Remove(id)
	}
}
