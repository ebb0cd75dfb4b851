package store

import (
	"context"
	"errors"

	"polling-service/internal/model"

	"gorm.io/gorm"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// tenantRegistry implements TenantStore over the main database.
type tenantRegistry struct {
	db *gorm.DB
}

// NewTenantStore wraps the registry database handle.
func NewTenantStore(db *gorm.DB) TenantStore {
	return &tenantRegistry{db: db}
}

func (s *tenantRegistry) Create(ctx context.Context, t *model.Tenant) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *tenantRegistry) ByKey(ctx context.Context, tenantKey string) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("tenant_key = ?", tenantKey).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *tenantRegistry) ByAdminEmail(ctx context.Context, email string) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("admin_email = ?", email).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

type userStore struct {
	db *gorm.DB
}

func (s *userStore) Create(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *userStore) ByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *userStore) Update(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error)
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error)
}

type questionStore struct {
	db *gorm.DB
}

func (s *questionStore) Create(ctx context.Context, q *model.Question) error {
	return translate(s.db.WithContext(ctx).Create(q).Error)
}

func (s *questionStore) ByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (s *questionStore) List(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&questions).Error; err != nil {
		return nil, translate(err)
	}
	return questions, nil
}

func (s *questionStore) Update(ctx context.Context, q *model.Question) error {
	return translate(s.db.WithContext(ctx).Save(q).Error)
}

func (s *questionStore) Delete(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Question{}).Error)
}

type responseStore struct {
	db *gorm.DB
}

func (s *responseStore) Create(ctx context.Context, r *model.Response) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *responseStore) ByQuestionAndUser(ctx context.Context, questionID, userID string) (*model.Response, error) {
	var r model.Response
	err := s.db.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *responseStore) ListByQuestion(ctx context.Context, questionID string) ([]model.Response, error) {
	var responses []model.Response
	err := s.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, translate(err)
	}
	return responses, nil
}

func (s *responseStore) List(ctx context.Context) ([]model.Response, error) {
	var responses []model.Response
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&responses).Error; err != nil {
		return nil, translate(err)
	}
	return responses, nil
}

type tokenStore struct {
	db *gorm.DB
}

func (s *tokenStore) Create(ctx context.Context, t *model.TokenRecord) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *tokenStore) Find(ctx context.Context, token, userID string) (*model.TokenRecord, error) {
	var rec model.TokenRecord
	err := s.db.WithContext(ctx).
		Where("token = ? AND user_id = ?", token, userID).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *tokenStore) DeleteByToken(ctx context.Context, token string) error {
	return translate(s.db.WithContext(ctx).Where("token = ?", token).Delete(&model.TokenRecord{}).Error)
}
