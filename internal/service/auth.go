package service

import (
	"context"
	"errors"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/internal/session"
	"polling-service/internal/store"
	"polling-service/pkg/tenantkey"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthService handles signup, login, logout and profile lookup. Signup is the
// only operation that writes to the shared tenant registry.
type AuthService struct {
	tenants  store.TenantStore
	parts    store.Opener
	sessions *session.Authority
}

func NewAuthService(tenants store.TenantStore, parts store.Opener, sessions *session.Authority) *AuthService {
	return &AuthService{tenants: tenants, parts: parts, sessions: sessions}
}

type SignupInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name"`
}

type AuthResult struct {
	Token            string
	User             *model.User
	TenantKey        string
	OrganizationName string
}

// Signup registers a new organization keyed by the admin's email domain,
// creates the admin account in the new tenant partition and issues the first
// session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.OrganizationName == "" {
		return nil, apperr.New(apperr.Validation, "All fields are required")
	}

	key, err := tenantkey.FromIdentity(in.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "A valid email address is required", err)
	}
	domain, _ := tenantkey.DomainOf(in.Email)

	if _, err := s.tenants.ByAdminEmail(ctx, in.Email); err == nil {
		return nil, apperr.New(apperr.Conflict, "Organization already registered with this email")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	tenant := &model.Tenant{
		OrganizationName: in.OrganizationName,
		DomainName:       domain,
		TenantKey:        key,
		AdminEmail:       in.Email,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "Organization already registered with this email")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	part, err := s.parts.Open(key)
	if err != nil {
		return nil, err
	}
	users, err := part.Users()
	if err != nil {
		return nil, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	admin := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(digest),
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	token, err := s.sessions.Issue(ctx, key, admin.ID, admin.Email, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:            token,
		User:             admin,
		TenantKey:        key,
		OrganizationName: tenant.OrganizationName,
	}, nil
}

// Login authenticates an identity against its tenant partition and issues a
// fresh session token. Every login gets its own token; earlier tokens stay
// valid until individually revoked or expired.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "Email and password required")
	}

	key, err := tenantkey.FromIdentity(email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "A valid email address is required", err)
	}

	tenant, err := s.tenants.ByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Organization not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	part, err := s.parts.Open(key)
	if err != nil {
		return nil, err
	}
	users, err := part.Users()
	if err != nil {
		return nil, err
	}

	user, err := users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	token, err := s.sessions.Issue(ctx, key, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:            token,
		User:             user,
		TenantKey:        key,
		OrganizationName: tenant.OrganizationName,
	}, nil
}

// Logout revokes the presented token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, tenantKey, token string) error {
	return s.sessions.Revoke(ctx, tenantKey, token)
}

// Me returns the caller's profile together with the organization name.
func (s *AuthService) Me(ctx context.Context, tenantKey, userID string) (*model.User, string, error) {
	part, err := s.parts.Open(tenantKey)
	if err != nil {
		return nil, "", err
	}
	users, err := part.Users()
	if err != nil {
		return nil, "", err
	}

	user, err := users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.New(apperr.NotFound, "User not found")
		}
		return nil, "", apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	orgName := ""
	if tenant, err := s.tenants.ByKey(ctx, tenantKey); err == nil {
		orgName = tenant.OrganizationName
	}

	return user, orgName, nil
}
