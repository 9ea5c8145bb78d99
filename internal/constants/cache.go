package constants

import "time"

// Render cache defaults
const (
	RenderCacheTTL        = 30 * time.Minute
	RenderCacheMaxEntries = 1000
	// RenderCacheKeyPrefix namespaces render cache keys in shared stores.
	RenderCacheKeyPrefix = "learnify:diagram:svg:"
	CacheSweepInterval   = 5 * time.Minute
)
