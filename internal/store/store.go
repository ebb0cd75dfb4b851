// Package store provides typed, tenant-partitioned access to persisted
// records. A Partition bundles the four record kinds of one tenant; opening a
// kind registers its schema against the underlying handle exactly once.
package store

import (
	"context"
	"errors"

	"polling-service/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

// TenantStore is the shared registry of organizations. It lives in the main
// database, outside any tenant partition.
type TenantStore interface {
	Create(ctx context.Context, t *model.Tenant) error
	ByKey(ctx context.Context, tenantKey string) (*model.Tenant, error)
	ByAdminEmail(ctx context.Context, email string) (*model.Tenant, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	ByID(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context) ([]model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id string) error
}

type ResponseStore interface {
	Create(ctx context.Context, r *model.Response) error
	ByQuestionAndUser(ctx context.Context, questionID, userID string) (*model.Response, error)
	ListByQuestion(ctx context.Context, questionID string) ([]model.Response, error)
	List(ctx context.Context) ([]model.Response, error)
}

type TokenStore interface {
	Create(ctx context.Context, t *model.TokenRecord) error
	Find(ctx context.Context, token, userID string) (*model.TokenRecord, error)
	// DeleteByToken removes the record for an exact token value. Deleting a
	// token that does not exist is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

// Partition exposes the record kinds of one tenant. Accessors may fail when
// the kind's schema cannot be registered against the handle.
type Partition interface {
	Users() (UserStore, error)
	Questions() (QuestionStore, error)
	Responses() (ResponseStore, error)
	Tokens() (TokenStore, error)
}

// Opener resolves a tenant key to its partition.
type Opener interface {
	Open(tenantKey string) (Partition, error)
}
