package service

import (
	"context"
	"sync"

	"polling-service/internal/model"
	"polling-service/internal/store"

	"github.com/google/uuid"
)

// In-memory store implementations standing in for the gorm-backed ones.

type memTenantStore struct {
	mu      sync.Mutex
	tenants map[string]*model.Tenant // by id
}

func newMemTenantStore() *memTenantStore {
	return &memTenantStore{tenants: make(map[string]*model.Tenant)}
}

func (s *memTenantStore) Create(ctx context.Context, t *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tenants {
		if existing.AdminEmail == t.AdminEmail || existing.TenantKey == t.TenantKey || existing.DomainName == t.DomainName {
			return store.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *memTenantStore) ByKey(ctx context.Context, tenantKey string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.TenantKey == tenantKey {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memTenantStore) ByAdminEmail(ctx context.Context, email string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.AdminEmail == email {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (s *memUserStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) ByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) List(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.User
	for _, u := range s.users {
		list = append(list, *u)
	}
	return list, nil
}

func (s *memUserStore) Update(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type memQuestionStore struct {
	mu        sync.Mutex
	questions map[string]*model.Question
}

func newMemQuestionStore() *memQuestionStore {
	return &memQuestionStore{questions: make(map[string]*model.Question)}
}

func (s *memQuestionStore) Create(ctx context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *memQuestionStore) ByID(ctx context.Context, id string) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *memQuestionStore) List(ctx context.Context) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Question
	for _, q := range s.questions {
		list = append(list, *q)
	}
	return list, nil
}

func (s *memQuestionStore) Update(ctx context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *memQuestionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.questions, id)
	return nil
}

type memResponseStore struct {
	mu        sync.Mutex
	responses map[string]*model.Response
}

func newMemResponseStore() *memResponseStore {
	return &memResponseStore{responses: make(map[string]*model.Response)}
}

func (s *memResponseStore) Create(ctx context.Context, r *model.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.responses {
		if existing.QuestionID == r.QuestionID && existing.UserID == r.UserID {
			return store.ErrDuplicate
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	cp := *r
	s.responses[r.ID] = &cp
	return nil
}

func (s *memResponseStore) ByQuestionAndUser(ctx context.Context, questionID, userID string) (*model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.responses {
		if r.QuestionID == questionID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memResponseStore) ListByQuestion(ctx context.Context, questionID string) ([]model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Response
	for _, r := range s.responses {
		if r.QuestionID == questionID {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (s *memResponseStore) List(ctx context.Context) ([]model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Response
	for _, r := range s.responses {
		list = append(list, *r)
	}
	return list, nil
}

type memTokenStore struct {
	mu      sync.Mutex
	records map[string]*model.TokenRecord // by token value
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{records: make(map[string]*model.TokenRecord)}
}

func (s *memTokenStore) Create(ctx context.Context, t *model.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	s.records[t.Token] = &cp
	return nil
}

func (s *memTokenStore) Find(ctx context.Context, token, userID string) (*model.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[token]
	if !ok || rec.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memTokenStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// memPartition bundles the in-memory stores of one tenant.
type memPartition struct {
	users     *memUserStore
	questions *memQuestionStore
	responses *memResponseStore
	tokens    *memTokenStore
}

func newMemPartition() *memPartition {
	return &memPartition{
		users:     newMemUserStore(),
		questions: newMemQuestionStore(),
		responses: newMemResponseStore(),
		tokens:    newMemTokenStore(),
	}
}

func (p *memPartition) Users() (store.UserStore, error)         { return p.users, nil }
func (p *memPartition) Questions() (store.QuestionStore, error) { return p.questions, nil }
func (p *memPartition) Responses() (store.ResponseStore, error) { return p.responses, nil }
func (p *memPartition) Tokens() (store.TokenStore, error)       { return p.tokens, nil }

// memOpener hands out one partition per tenant key, created on demand.
type memOpener struct {
	mu         sync.Mutex
	partitions map[string]*memPartition
}

func newMemOpener() *memOpener {
	return &memOpener{partitions: make(map[string]*memPartition)}
}

func (o *memOpener) Open(tenantKey string) (store.Partition, error) {
	return o.partition(tenantKey), nil
}

func (o *memOpener) partition(tenantKey string) *memPartition {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.partitions[tenantKey]
	if !ok {
		p = newMemPartition()
		o.partitions[tenantKey] = p
	}
	return p
}

// recordingBroadcaster captures in-process broadcasts synchronously.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastCall
}

type broadcastCall struct {
	room    string
	event   string
	payload interface{}
}

func (b *recordingBroadcaster) Broadcast(room, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastCall{room: room, event: event, payload: payload})
}

func (b *recordingBroadcaster) calls() []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastCall(nil), b.events...)
}

// silentPush satisfies the push sink without doing anything.
type silentPush struct{}

func (silentPush) Trigger(channels []string, event string, data interface{}) error { return nil }
