// Package session issues and validates revocable session tokens. A token is
// two things at once: a signed, time-bounded credential and a persisted record
// in the owning tenant's partition. The signature proves who minted it; the
// record is the single source of truth for whether the session is still live,
// which is what makes logout-time revocation possible.
package session

import (
	"context"
	"errors"
	"time"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/internal/store"
	"polling-service/pkg/jwtutil"
)

// The client-visible message never distinguishes a bad signature from a
// revoked or expired record.
const invalidTokenMessage = "invalid or expired token"

type Authority struct {
	parts store.Opener
}

func NewAuthority(parts store.Opener) *Authority {
	return &Authority{parts: parts}
}

// Issue mints a signed token for the subject and persists its revocation
// record in the tenant partition. Each call issues an independent token;
// concurrent sessions for one subject are allowed.
func (a *Authority) Issue(ctx context.Context, tenantKey, userID, email, role string) (string, error) {
	token, expiresAt, err := jwtutil.GenerateToken(userID, email, role, tenantKey)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "token error", err)
	}

	tokens, err := a.tokens(tenantKey)
	if err != nil {
		return "", err
	}

	rec := &model.TokenRecord{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := tokens.Create(ctx, rec); err != nil {
		return "", apperr.Wrap(apperr.Internal, "token error", err)
	}

	return token, nil
}

// Validate checks the signature first, then the persisted record in the
// partition named by the claims. A record past its expiry is deleted as a side
// effect of the failed validation.
func (a *Authority) Validate(ctx context.Context, token string) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, invalidTokenMessage, err)
	}

	tokens, err := a.tokens(claims.TenantKey)
	if err != nil {
		return nil, err
	}

	rec, err := tokens.Find(ctx, token, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.Unauthorized, invalidTokenMessage)
		}
		return nil, apperr.Wrap(apperr.Internal, invalidTokenMessage, err)
	}

	if rec.ExpiresAt.Before(time.Now()) {
		if err := tokens.DeleteByToken(ctx, token); err != nil {
			return nil, apperr.Wrap(apperr.Internal, invalidTokenMessage, err)
		}
		return nil, apperr.New(apperr.Unauthorized, invalidTokenMessage)
	}

	return claims, nil
}

// Revoke deletes the record for an exact token value. Other tokens issued to
// the same subject stay valid. Revoking an unknown token is a no-op.
func (a *Authority) Revoke(ctx context.Context, tenantKey, token string) error {
	tokens, err := a.tokens(tenantKey)
	if err != nil {
		return err
	}
	if err := tokens.DeleteByToken(ctx, token); err != nil {
		return apperr.Wrap(apperr.Internal, "logout failed", err)
	}
	return nil
}

func (a *Authority) tokens(tenantKey string) (store.TokenStore, error) {
	part, err := a.parts.Open(tenantKey)
	if err != nil {
		return nil, err
	}
	return part.Tokens()
}
