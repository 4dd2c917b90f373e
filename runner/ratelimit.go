package runner

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/harvest"
	"golang.org/x/time/rate"
)

// DefaultDomainRPS is the per-domain request rate used when a caller
// passes a non-positive rate. One request per second is conservative
// enough for the small, hand-picked URL lists tasks typically carry.
const DefaultDomainRPS = 1.0

var _ harvest.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests per target domain. Each domain gets
// its own token bucket with no burst, so within a domain requests are
// strictly serialized at the configured rate while different domains
// proceed independently. Domain keys are case-insensitive.
type DomainLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per
// second per domain. Non-positive rates fall back to DefaultDomainRPS.
func NewDomainLimiter(rps float64) *DomainLimiter {
	if rps <= 0 {
		rps = DefaultDomainRPS
	}
	return &DomainLimiter{
		buckets: make(map[string]*rate.Limiter),
		rps:     rps,
	}
}

// Wait blocks until the domain's bucket permits another request, or the
// context is canceled.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := strings.ToLower(domain)

	d.mu.Lock()
	bucket, ok := d.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.buckets[key] = bucket
	}
	d.mu.Unlock()

	return bucket.Wait(ctx)
}
