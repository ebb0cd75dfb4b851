package database

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"polling-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

func newTestRouter(open func(string) (*gorm.DB, error)) *Router {
	r := NewRouter(&config.DBConfig{})
	r.open = open
	return r
}

func TestTenantOpensOncePerKey(t *testing.T) {
	var opens int32
	r := newTestRouter(func(tenantKey string) (*gorm.DB, error) {
		atomic.AddInt32(&opens, 1)
		return &gorm.DB{}, nil
	})

	first, err := r.Tenant("acme_io")
	require.NoError(t, err)
	second, err := r.Tenant("acme_io")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, opens)
}

func TestTenantConcurrentFirstAccess(t *testing.T) {
	var opens int32
	r := newTestRouter(func(tenantKey string) (*gorm.DB, error) {
		atomic.AddInt32(&opens, 1)
		return &gorm.DB{}, nil
	})

	const callers = 32
	handles := make([]*gorm.DB, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := r.Tenant("acme_io")
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, opens, "concurrent first access opens exactly one handle")
	for i := 1; i < callers; i++ {
		assert.Same(t, handles[0], handles[i])
	}
}

func TestTenantKeysGetDistinctHandles(t *testing.T) {
	opened := make(map[string]*gorm.DB)
	r := newTestRouter(func(tenantKey string) (*gorm.DB, error) {
		db := &gorm.DB{}
		opened[tenantKey] = db
		return db, nil
	})

	acme, err := r.Tenant("acme_io")
	require.NoError(t, err)
	globex, err := r.Tenant("globex_com")
	require.NoError(t, err)

	assert.NotSame(t, acme, globex)
	assert.Same(t, opened["acme_io"], acme)
	assert.Same(t, opened["globex_com"], globex)
}

func TestTenantFailedOpenIsNotCached(t *testing.T) {
	var opens int32
	r := newTestRouter(func(tenantKey string) (*gorm.DB, error) {
		if atomic.AddInt32(&opens, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &gorm.DB{}, nil
	})

	_, err := r.Tenant("acme_io")
	require.Error(t, err)

	db, err := r.Tenant("acme_io")
	require.NoError(t, err, "next caller retries the open")
	assert.NotNil(t, db)
	assert.EqualValues(t, 2, opens)
}

func TestTenantRejectsUnsafeKeys(t *testing.T) {
	r := newTestRouter(func(tenantKey string) (*gorm.DB, error) {
		t.Fatalf("open called for unsafe key %q", tenantKey)
		return nil, nil
	})

	for _, key := range []string{"", "acme.io", `acme";DROP SCHEMA public`, "acme io", "Acme_IO"} {
		_, err := r.Tenant(key)
		assert.Error(t, err, key)
	}
}
