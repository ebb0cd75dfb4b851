package session

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/internal/store"
	"polling-service/pkg/config"
	"polling-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey: "session-test-key",
		ExpiresIn:  time.Hour,
	})
	os.Exit(m.Run())
}

type fakeTokenStore struct {
	mu      sync.Mutex
	records map[string]*model.TokenRecord
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{records: make(map[string]*model.TokenRecord)}
}

func (s *fakeTokenStore) Create(ctx context.Context, t *model.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	s.records[t.Token] = &cp
	return nil
}

func (s *fakeTokenStore) Find(ctx context.Context, token, userID string) (*model.TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[token]
	if !ok || rec.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeTokenStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func (s *fakeTokenStore) has(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[token]
	return ok
}

func (s *fakeTokenStore) expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[token]; ok {
		rec.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

type fakePartition struct {
	tokens *fakeTokenStore
}

func (p *fakePartition) Users() (store.UserStore, error)         { return nil, nil }
func (p *fakePartition) Questions() (store.QuestionStore, error) { return nil, nil }
func (p *fakePartition) Responses() (store.ResponseStore, error) { return nil, nil }
func (p *fakePartition) Tokens() (store.TokenStore, error)       { return p.tokens, nil }

type fakeOpener struct {
	mu         sync.Mutex
	partitions map[string]*fakePartition
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{partitions: make(map[string]*fakePartition)}
}

func (o *fakeOpener) Open(tenantKey string) (store.Partition, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.partitions[tenantKey]
	if !ok {
		p = &fakePartition{tokens: newFakeTokenStore()}
		o.partitions[tenantKey] = p
	}
	return p, nil
}

func (o *fakeOpener) tokens(tenantKey string) *fakeTokenStore {
	part, _ := o.Open(tenantKey)
	return part.(*fakePartition).tokens
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.Unauthorized, ae.Code)
	assert.Equal(t, "invalid or expired token", ae.Message)
}

func TestIssueAndValidate(t *testing.T) {
	opener := newFakeOpener()
	authority := NewAuthority(opener)
	ctx := context.Background()

	token, err := authority.Issue(ctx, "acme_io", "user-1", "ann@acme.io", model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, opener.tokens("acme_io").has(token))

	claims, err := authority.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ann@acme.io", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "acme_io", claims.TenantKey)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	authority := NewAuthority(newFakeOpener())
	ctx := context.Background()

	token, err := authority.Issue(ctx, "acme_io", "user-1", "ann@acme.io", model.RoleUser)
	require.NoError(t, err)

	_, err = authority.Validate(ctx, token+"x")
	assertUnauthorized(t, err)

	_, err = authority.Validate(ctx, "not-a-token")
	assertUnauthorized(t, err)
}

func TestValidateRejectsRevokedToken(t *testing.T) {
	opener := newFakeOpener()
	authority := NewAuthority(opener)
	ctx := context.Background()

	first, err := authority.Issue(ctx, "acme_io", "user-1", "ann@acme.io", model.RoleUser)
	require.NoError(t, err)
	second, err := authority.Issue(ctx, "acme_io", "user-1", "ann@acme.io", model.RoleUser)
	require.NoError(t, err)

	require.NoError(t, authority.Revoke(ctx, "acme_io", first))

	// The revoked token fails on the very next use; its sibling survives.
	_, err = authority.Validate(ctx, first)
	assertUnauthorized(t, err)
	_, err = authority.Validate(ctx, second)
	assert.NoError(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	authority := NewAuthority(newFakeOpener())
	ctx := context.Background()

	assert.NoError(t, authority.Revoke(ctx, "acme_io", "never-issued"))
}

func TestValidatePurgesExpiredRecord(t *testing.T) {
	opener := newFakeOpener()
	authority := NewAuthority(opener)
	ctx := context.Background()

	token, err := authority.Issue(ctx, "acme_io", "user-1", "ann@acme.io", model.RoleUser)
	require.NoError(t, err)

	tokens := opener.tokens("acme_io")
	tokens.expire(token)

	_, err = authority.Validate(ctx, token)
	assertUnauthorized(t, err)
	assert.False(t, tokens.has(token), "expired record is removed as a side effect")
}
