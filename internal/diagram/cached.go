package diagram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"learnify-go/internal/cache"
	"learnify-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// CachedRenderer memoises successful renders. Failures are never cached so a
// fixed renderer is retried on the next request.
type CachedRenderer struct {
	Next   Renderer
	Cache  cache.Cache
	TTL    time.Duration
	Prefix string
}

// CacheKey is the hex sha256 of the diagram source.
func CacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

func (c *CachedRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	key := c.Prefix + CacheKey(source)
	if svg, err := c.Cache.Get(ctx, key); err == nil {
		monitoring.RenderCacheLookups.WithLabelValues("hit").Inc()
		return svg, nil
	} else if !cache.IsMiss(err) {
		log.WithError(err).Warn("render cache lookup failed")
	}
	monitoring.RenderCacheLookups.WithLabelValues("miss").Inc()

	svg, err := c.Next.Render(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, svg, c.TTL); err != nil {
		log.WithError(err).Warn("render cache store failed")
	}
	return svg, nil
}
