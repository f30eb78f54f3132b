package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Revocations remembers logged out sessions until their tokens would have
// expired anyway.
type Revocations struct {
	c *cache.Cache
}

func NewRevocations(ttl time.Duration) *Revocations {
	return &Revocations{c: cache.New(ttl, 2*ttl)}
}

func (r *Revocations) Revoke(claims *Claims) {
	ttl := cache.DefaultExpiration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			return
		}
	}
	r.c.Set(claims.ID, struct{}{}, ttl)
}

func (r *Revocations) IsRevoked(claims *Claims) bool {
	_, found := r.c.Get(claims.ID)
	return found
}
