package store

import (
	"sync"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/pkg/database"

	"gorm.io/gorm"
)

// Manager implements Opener over the connection router. It also owns schema
// registration: each record kind is migrated at most once per handle, however
// many times the partition is opened.
type Manager struct {
	router *database.Router

	mu       sync.Mutex
	migrated map[migrationKey]struct{}
}

type migrationKey struct {
	handle *gorm.DB
	kind   string
}

func NewManager(router *database.Router) *Manager {
	return &Manager{
		router:   router,
		migrated: make(map[migrationKey]struct{}),
	}
}

// Open resolves the tenant's storage handle. Router failures surface as
// Unavailable so the boundary answers 503 rather than a generic 500.
func (m *Manager) Open(tenantKey string) (Partition, error) {
	db, err := m.router.Tenant(tenantKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "tenant storage unavailable", err)
	}
	return &gormPartition{db: db, mgr: m}, nil
}

func (m *Manager) ensure(handle *gorm.DB, kind string, models ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := migrationKey{handle: handle, kind: kind}
	if _, done := m.migrated[key]; done {
		return nil
	}

	if err := handle.AutoMigrate(models...); err != nil {
		return apperr.Wrap(apperr.Unavailable, "tenant storage unavailable", err)
	}

	m.migrated[key] = struct{}{}
	return nil
}

type gormPartition struct {
	db  *gorm.DB
	mgr *Manager
}

func (p *gormPartition) Users() (UserStore, error) {
	if err := p.mgr.ensure(p.db, "users", &model.User{}); err != nil {
		return nil, err
	}
	return &userStore{db: p.db}, nil
}

func (p *gormPartition) Questions() (QuestionStore, error) {
	if err := p.mgr.ensure(p.db, "questions", &model.Question{}); err != nil {
		return nil, err
	}
	return &questionStore{db: p.db}, nil
}

func (p *gormPartition) Responses() (ResponseStore, error) {
	if err := p.mgr.ensure(p.db, "responses", &model.Response{}); err != nil {
		return nil, err
	}
	return &responseStore{db: p.db}, nil
}

func (p *gormPartition) Tokens() (TokenStore, error) {
	if err := p.mgr.ensure(p.db, "tokens", &model.TokenRecord{}); err != nil {
		return nil, err
	}
	return &tokenStore{db: p.db}, nil
}
