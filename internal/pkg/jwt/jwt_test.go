package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithToken(t *testing.T, svc Service, tokenString string) context.Context {
	t.Helper()
	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "emp-1", "company-1", user.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	p, err := PrincipalFromContext(contextWithToken(t, svc, token))
	require.NoError(t, err)
	assert.Equal(t, user.Principal{UserID: "user-1", EmployeeID: "emp-1", CompanyID: "company-1", Role: user.RoleManager}, p)
}

func TestPrincipalFromContext_OwnerWithoutEmployee(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, _, err := svc.GenerateAccessToken("user-1", "", "company-1", user.RoleOwner)
	require.NoError(t, err)

	p, err := PrincipalFromContext(contextWithToken(t, svc, token))
	require.NoError(t, err)
	assert.Empty(t, p.EmployeeID)
	assert.Equal(t, user.RoleOwner, p.Role)
}

func TestPrincipalFromContext_MissingCompany(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	token, _, err := svc.GenerateAccessToken("user-1", "emp-1", "", user.RoleEmployee)
	require.NoError(t, err)

	_, err = PrincipalFromContext(contextWithToken(t, svc, token))
	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)
}

func TestPrincipalFromContext_NoToken(t *testing.T) {
	_, err := PrincipalFromContext(context.Background())
	assert.Error(t, err)
}

func TestGenerateAccessToken_BadExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")
	_, _, err := svc.GenerateAccessToken("user-1", "emp-1", "company-1", user.RoleEmployee)
	assert.Error(t, err)
}
