package scanner

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// detectionResult is what the result cache stores per (addr, protocol) —
// including negative outcomes, so a target with no detectable service
// doesn't get re-probed on every call within the TTL either.
type detectionResult struct {
	service *Service
	banner  string
	found   bool
}

var resultCache = gocache.New(30*time.Second, time.Minute)

func cacheKey(addr string, protocol Protocol) string {
	return fmt.Sprintf("%s|%s", protocol, addr)
}

func cacheLookup(addr string, protocol Protocol) (detectionResult, bool) {
	v, ok := resultCache.Get(cacheKey(addr, protocol))
	if !ok {
		return detectionResult{}, false
	}
	return v.(detectionResult), true
}

func cacheStore(addr string, protocol Protocol, result detectionResult) {
	resultCache.Set(cacheKey(addr, protocol), result, gocache.DefaultExpiration)
}

// SetResultCacheTTL reconfigures the detection result cache's expiration
// window. Intended to be called once, during process configuration.
func SetResultCacheTTL(ttl time.Duration) {
	resultCache = gocache.New(ttl, ttl*2)
}
