package redirect

import (
	"sync"
	"time"

	"upiqr/internal/engine/links"
)

// CachedLink is the part of a payment link the public redirect needs.
type CachedLink struct {
	ID           string
	ShortCode    string
	Intent       links.PaymentIntent
	Status       string
	ExpiresAt    *int64
	PasswordHash string
	CachedAt     time.Time
}

func (c *CachedLink) Link() *links.PaymentLink {
	return &links.PaymentLink{
		ID:           c.ID,
		ShortCode:    c.ShortCode,
		Intent:       c.Intent,
		Status:       c.Status,
		ExpiresAt:    c.ExpiresAt,
		PasswordHash: c.PasswordHash,
	}
}

type LinkCache struct {
	store sync.Map // map[short_code]*CachedLink
	ttl   time.Duration
	now   func() time.Time
}

func NewLinkCache(ttl time.Duration) *LinkCache {
	return &LinkCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *LinkCache) Get(shortCode string) (*CachedLink, bool) {
	val, ok := c.store.Load(shortCode)
	if !ok {
		return nil, false
	}

	link := val.(*CachedLink)
	if c.now().Sub(link.CachedAt) > c.ttl {
		c.store.Delete(shortCode)
		return nil, false
	}

	return link, true
}

func (c *LinkCache) Set(link *links.PaymentLink) {
	cached := &CachedLink{
		ID:           link.ID,
		ShortCode:    link.ShortCode,
		Intent:       link.Intent,
		Status:       link.Status,
		ExpiresAt:    link.ExpiresAt,
		PasswordHash: link.PasswordHash,
		CachedAt:     c.now(),
	}
	c.store.Store(link.ShortCode, cached)
}

// Invalidate drops a short code after its link was edited or archived.
func (c *LinkCache) Invalidate(shortCode string) {
	c.store.Delete(shortCode)
}
