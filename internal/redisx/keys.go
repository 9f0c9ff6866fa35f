package redisx

import "time"

const (
	// Cart per identity: cart:{uid} -> JSON array of cart items
	KeyCart = "cart:%s"

	// Checkout idempotency: idem:checkout:{uid}:{key} -> "pending" | order_id
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Role cache: role:{uid} -> "admin" | "user"
	KeyRole = "role:%s"
	// Bumped on every grant change: role:gen:{uid}
	KeyRoleGen = "role:gen:%s"

	// Whole catalog as served by GET /products
	KeyCatalogSnapshot = "catalog:snapshot"
	// Bumped on every catalog write
	KeyCatalogGen = "catalog:gen"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLIdemClaim   = time.Minute
	TTLRole        = 5 * time.Minute
	TTLSnapshot    = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)
