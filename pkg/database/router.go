package database

import (
	"fmt"
	"regexp"
	"sync"

	"polling-service/pkg/config"

	"gorm.io/gorm"
)

// Tenant keys double as schema names; anything else is rejected before it can
// reach a DDL statement. Uppercase is rejected too: the key rides in the DSN's
// unquoted search_path parameter, which Postgres downcases, so a mixed-case
// schema would be unreachable from its own connection.
var tenantKeyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Router maps tenant keys to lazily-created, process-lifetime storage handles.
// Each handle is a connection pool whose search_path is pinned to the tenant's
// schema, so partitions are physically separate rather than filtered by a
// tenant column. Handles are never evicted; tenant count is assumed low.
type Router struct {
	cfg *config.DBConfig

	mu    sync.Mutex
	conns map[string]*gorm.DB

	// open is swapped out in tests.
	open func(tenantKey string) (*gorm.DB, error)
}

// NewRouter creates an empty router over the given database configuration.
func NewRouter(cfg *config.DBConfig) *Router {
	r := &Router{
		cfg:   cfg,
		conns: make(map[string]*gorm.DB),
	}
	r.open = r.openTenant
	return r
}

// Tenant returns the storage handle for a tenant key, creating it on first
// use. The lock is held across the check-then-create sequence, so concurrent
// first access from any number of callers yields exactly one handle. A failed
// open is not cached; the next caller retries.
func (r *Router) Tenant(tenantKey string) (*gorm.DB, error) {
	if !tenantKeyPattern.MatchString(tenantKey) {
		return nil, fmt.Errorf("invalid tenant key %q", tenantKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.conns[tenantKey]; ok {
		return db, nil
	}

	db, err := r.open(tenantKey)
	if err != nil {
		return nil, fmt.Errorf("open tenant partition %s: %w", tenantKey, err)
	}

	r.conns[tenantKey] = db
	return db, nil
}

func (r *Router) openTenant(tenantKey string) (*gorm.DB, error) {
	db, err := open(r.cfg.TenantDSN(tenantKey), r.cfg)
	if err != nil {
		return nil, err
	}

	// The schema must exist before the first migration runs against it.
	if err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, tenantKey)).Error; err != nil {
		return nil, err
	}

	return db, nil
}
