package cache

import "time"

const (
	// KeyProductList caches the default storefront listing only; filtered or
	// paginated queries always hit the store.
	KeyProductList = "products:list"

	// KeyProductSlug prefixes the per-product detail entry.
	KeyProductSlug = "products:slug:"

	// TTL bounds staleness when an invalidation is missed.
	TTL = 60 * time.Second
)
