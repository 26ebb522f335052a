package health

import (
	"context"
	"sync"
	"time"

	"github.com/benefits-network/benefits-bpp/log"
)

const contentCacheTTL = 30 * time.Second

// Checker reports on the dependencies the API needs to answer requests.
type Checker interface {
	IsDatabaseOK(ctx context.Context) (result string, ok bool)
	IsContentOK(ctx context.Context) (result string, ok bool)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type contentPinger interface {
	Ping(ctx context.Context) error
}

type contentCache struct {
	result    string
	ok        bool
	timestamp time.Time
	mu        sync.RWMutex
}

type HealthChecker struct {
	db           pinger
	content      contentPinger
	contentCache *contentCache
	now          func() time.Time
}

// Ensure HealthChecker satisfies the interface
var _ Checker = HealthChecker{}

// NewHealthChecker returns a checker for db and content. db is nil when no application
// store is configured.
func NewHealthChecker(db pinger, content contentPinger) HealthChecker {
	return HealthChecker{
		db:           db,
		content:      content,
		contentCache: &contentCache{},
		now:          time.Now,
	}
}

func (h HealthChecker) IsDatabaseOK(ctx context.Context) (result string, ok bool) {
	if h.db == nil {
		return "not configured", true
	}
	if err := h.db.PingContext(ctx); err != nil {
		log.API.Error("Health check: database ping error: ", err.Error())
		return "database ping error", false
	}

	return "ok", true
}

// IsContentOK pings the content repository. Results are cached so that frequent
// health probes do not translate into repository traffic.
func (h HealthChecker) IsContentOK(ctx context.Context) (result string, ok bool) {
	h.contentCache.mu.RLock()
	if h.contentCache.timestamp.Add(contentCacheTTL).After(h.now()) {
		result, ok := h.contentCache.result, h.contentCache.ok
		h.contentCache.mu.RUnlock()
		return result, ok
	}
	h.contentCache.mu.RUnlock()

	h.contentCache.mu.Lock()
	defer h.contentCache.mu.Unlock()

	// Double-check after acquiring write lock
	if h.contentCache.timestamp.Add(contentCacheTTL).After(h.now()) {
		return h.contentCache.result, h.contentCache.ok
	}

	result, ok = "ok", true
	if err := h.content.Ping(ctx); err != nil {
		log.API.Error("Health check: content repository ping error: ", err.Error())
		result, ok = "Cannot connect to content repository", false
	}

	h.contentCache.result = result
	h.contentCache.ok = ok
	h.contentCache.timestamp = h.now()
	return result, ok
}
