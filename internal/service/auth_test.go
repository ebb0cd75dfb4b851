package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"polling-service/internal/apperr"
	"polling-service/internal/model"
	"polling-service/internal/session"
	"polling-service/pkg/config"
	"polling-service/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey: "test-signing-key",
		ExpiresIn:  time.Hour,
	})
	os.Exit(m.Run())
}

func newAuthFixture() (*AuthService, *memTenantStore, *memOpener, *session.Authority) {
	tenants := newMemTenantStore()
	opener := newMemOpener()
	sessions := session.NewAuthority(opener)
	return NewAuthService(tenants, opener, sessions), tenants, opener, sessions
}

func errCode(t *testing.T, err error) apperr.Code {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	return ae.Code
}

func TestSignupCreatesTenantAndAdmin(t *testing.T) {
	svc, tenants, opener, sessions := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Signup(ctx, SignupInput{
		Name:             "Ann",
		Email:            "ann@acme.io",
		Password:         "p@ss",
		OrganizationName: "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme_io", result.TenantKey)
	assert.Equal(t, "Acme", result.OrganizationName)
	assert.Equal(t, model.RoleAdmin, result.User.Role)
	assert.NotEmpty(t, result.Token)

	tenant, err := tenants.ByKey(ctx, "acme_io")
	require.NoError(t, err)
	assert.Equal(t, "acme.io", tenant.DomainName)
	assert.Equal(t, "ann@acme.io", tenant.AdminEmail)

	// The signup token is immediately usable.
	claims, err := sessions.Validate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "acme_io", claims.TenantKey)

	// The stored secret is a digest, never the plaintext.
	user, err := opener.partition("acme_io").users.ByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "p@ss", user.Password)
}

func TestSignupMixedCaseDomainSharesLowercasePartition(t *testing.T) {
	svc, tenants, opener, sessions := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Signup(ctx, SignupInput{
		Name:             "Ann",
		Email:            "Ann@Acme.IO",
		Password:         "p@ss",
		OrganizationName: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme_io", result.TenantKey)

	_, err = tenants.ByKey(ctx, "acme_io")
	require.NoError(t, err)

	// The admin account landed in the lowercase partition, and the token
	// claims route back to it.
	_, err = opener.partition("acme_io").users.ByID(ctx, result.User.ID)
	require.NoError(t, err)
	claims, err := sessions.Validate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme_io", claims.TenantKey)

	// A lowercase login on the same domain resolves to the same partition.
	login, err := svc.Login(ctx, "Ann@Acme.IO", "p@ss")
	require.NoError(t, err)
	assert.Equal(t, "acme_io", login.TenantKey)
}

func TestSignupDuplicateAdminConflicts(t *testing.T) {
	svc, _, opener, _ := newAuthFixture()
	ctx := context.Background()

	first, err := svc.Signup(ctx, SignupInput{
		Name: "Ann", Email: "ann@acme.io", Password: "p@ss", OrganizationName: "Acme",
	})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{
		Name: "Mallory", Email: "ann@acme.io", Password: "other", OrganizationName: "Evil Acme",
	})
	assert.Equal(t, apperr.Conflict, errCode(t, err))

	// The first tenant's data is untouched.
	user, err := opener.partition("acme_io").users.ByID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), SignupInput{Name: "Ann"})
	assert.Equal(t, apperr.Validation, errCode(t, err))

	_, err = svc.Signup(context.Background(), SignupInput{
		Name: "Ann", Email: "no-domain", Password: "x", OrganizationName: "Acme",
	})
	assert.Equal(t, apperr.Validation, errCode(t, err))
}

func TestLoginIssuesIndependentToken(t *testing.T) {
	svc, _, _, sessions := newAuthFixture()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, SignupInput{
		Name: "Ann", Email: "ann@acme.io", Password: "p@ss", OrganizationName: "Acme",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, "ann@acme.io", "p@ss")
	require.NoError(t, err)

	assert.NotEqual(t, signup.Token, login.Token)

	// Both tokens stay valid until individually revoked.
	_, err = sessions.Validate(ctx, signup.Token)
	assert.NoError(t, err)
	_, err = sessions.Validate(ctx, login.Token)
	assert.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.TenantKey, signup.Token))

	_, err = sessions.Validate(ctx, signup.Token)
	assert.Equal(t, apperr.Unauthorized, errCode(t, err))
	_, err = sessions.Validate(ctx, login.Token)
	assert.NoError(t, err)
}

func TestLoginUnknownOrganization(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), "someone@nowhere.example", "pw")
	assert.Equal(t, apperr.NotFound, errCode(t, err))
}

func TestLoginWrongPasswordLeavesNoTokenRecord(t *testing.T) {
	svc, _, opener, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{
		Name: "Ann", Email: "ann@acme.io", Password: "p@ss", OrganizationName: "Acme",
	})
	require.NoError(t, err)

	tokens := opener.partition("acme_io").tokens
	before := tokens.count()

	_, err = svc.Login(ctx, "ann@acme.io", "wrong")
	assert.Equal(t, apperr.Unauthorized, errCode(t, err))
	assert.Equal(t, before, tokens.count())
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	svc, _, opener, _ := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Signup(ctx, SignupInput{
		Name: "Ann", Email: "ann@acme.io", Password: "p@ss", OrganizationName: "Acme",
	})
	require.NoError(t, err)

	users := opener.partition("acme_io").users
	user, err := users.ByID(ctx, result.User.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, users.Update(ctx, user))

	_, err = svc.Login(ctx, "ann@acme.io", "p@ss")
	assert.Equal(t, apperr.Unauthorized, errCode(t, err))
}

func TestMeReturnsProfileWithOrganization(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Signup(ctx, SignupInput{
		Name: "Ann", Email: "ann@acme.io", Password: "p@ss", OrganizationName: "Acme",
	})
	require.NoError(t, err)

	user, orgName, err := svc.Me(ctx, "acme_io", result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, "Acme", orgName)

	_, _, err = svc.Me(ctx, "acme_io", "missing-id")
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.NotFound, ae.Code)
}
