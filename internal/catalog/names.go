package catalog

// Store names as used by the route table and by cache invalidation.
const (
	Products = "products"
	Namesets = "namesets"
	Teams    = "teams"
	Badges   = "badges"
	KitTypes = "kitTypes"
	Leagues  = "leagues"
	Sellers  = "sellers"
	Orders   = "orders"
	Sales    = "sales"
)

// StoreFor returns the store holding entities of the given repository kind
// (entity type or catalogue table name).
func StoreFor(kind string) string {
	switch kind {
	case "product":
		return Products
	case "nameset":
		return Namesets
	case "badge":
		return Badges
	case "teams":
		return Teams
	case "kit_types":
		return KitTypes
	case "leagues":
		return Leagues
	case "sellers":
		return Sellers
	}
	return kind
}

var known = map[string]struct{}{
	Products: {}, Namesets: {}, Teams: {}, Badges: {}, KitTypes: {},
	Leagues: {}, Sellers: {}, Orders: {}, Sales: {},
}

// Known reports whether name is one of the store names above.
func Known(name string) bool {
	_, ok := known[name]
	return ok
}
