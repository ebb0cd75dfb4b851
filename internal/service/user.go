package service

import (
	"context"
	"errors"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts inside one tenant partition.
type UserService struct {
	parts store.Opener
}

func NewUserService(parts store.Opener) *UserService {
	return &UserService{parts: parts}
}

type AddUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

func (s *UserService) List(ctx context.Context, tenantKey string) ([]model.User, error) {
	users, err := s.users(tenantKey)
	if err != nil {
		return nil, err
	}
	list, err := users.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return list, nil
}

// Add creates an account in the caller's tenant. Any role other than admin is
// normalized to user.
func (s *UserService) Add(ctx context.Context, tenantKey string, in AddUserInput) (*model.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.New(apperr.Validation, "Name, email and password required")
	}

	users, err := s.users(tenantKey)
	if err != nil {
		return nil, err
	}

	if _, err := users.ByEmail(ctx, in.Email); err == nil {
		return nil, apperr.New(apperr.Conflict, "User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	role := model.RoleUser
	if in.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(digest),
		Role:     role,
		IsActive: true,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "User already exists")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	return user, nil
}

func (s *UserService) Update(ctx context.Context, tenantKey, id string, in UpdateUserInput) (*model.User, error) {
	users, err := s.users(tenantKey)
	if err != nil {
		return nil, err
	}

	user, err := users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Role != nil {
		role := model.RoleUser
		if *in.Role == model.RoleAdmin {
			role = model.RoleAdmin
		}
		user.Role = role
	}

	if err := users.Update(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return user, nil
}

// Delete removes another account. Self-deletion is forbidden.
func (s *UserService) Delete(ctx context.Context, tenantKey, callerID, id string) error {
	if id == callerID {
		return apperr.New(apperr.Validation, "Cannot delete your own account")
	}

	users, err := s.users(tenantKey)
	if err != nil {
		return err
	}
	if err := users.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return nil
}

func (s *UserService) users(tenantKey string) (store.UserStore, error) {
	part, err := s.parts.Open(tenantKey)
	if err != nil {
		return nil, err
	}
	return part.Users()
}
