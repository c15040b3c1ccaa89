package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
	"github.com/diya-thabet/hirfa/internal/security"
)

func newAuthService(t *testing.T, st *memory.Store, adminHash string) *AuthService {
	t.Helper()
	return NewAuthService(st.Users(), AuthConfig{JWTSecret: "secret", JWTTTL: time.Hour, AdminSecretHash: adminHash}, zerolog.Nop())
}

func TestRegisterIssuesTokenWithProfileClaims(t *testing.T) {
	svc := newAuthService(t, memory.New(), "")

	res, err := svc.Register(context.Background(), RegisterInput{FullName: " Amira ", PhoneNumber: "12345678", Role: models.UserRoleProvider})
	require.NoError(t, err)
	assert.Equal(t, "Amira", res.User.FullName)
	assert.Equal(t, models.DefaultFairnessScore, res.User.FairnessScore)

	claims, err := security.ParseAccessToken(res.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "PROVIDER", claims.Role)
	assert.Equal(t, "Amira", claims.FullName)
	assert.Equal(t, 100, claims.FairnessScore)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t, memory.New(), "")

	_, err := svc.Register(context.Background(), RegisterInput{FullName: "A", PhoneNumber: "123", Role: "GUEST"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fullName")
	assert.Contains(t, verr.Fields, "phoneNumber")
	assert.Contains(t, verr.Fields, "role")
}

func TestRegisterDuplicatePhone(t *testing.T) {
	st := memory.New()
	st.SeedUser(models.User{ID: 1, PhoneNumber: "12345678"})
	svc := newAuthService(t, st, "")

	_, err := svc.Register(context.Background(), RegisterInput{FullName: "Amira", PhoneNumber: "12345678", Role: models.UserRoleCustomer})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterAdminRequiresSecret(t *testing.T) {
	hash, err := security.HashSecretWithParams("letmein", security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
	require.NoError(t, err)
	svc := newAuthService(t, memory.New(), hash)

	_, err = svc.Register(context.Background(), RegisterInput{FullName: "Root", PhoneNumber: "11111111", Role: models.UserRoleAdmin})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Register(context.Background(), RegisterInput{FullName: "Root", PhoneNumber: "11111111", Role: models.UserRoleAdmin, AdminSecret: "nope"})
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := svc.Register(context.Background(), RegisterInput{FullName: "Root", PhoneNumber: "11111111", Role: models.UserRoleAdmin, AdminSecret: "letmein"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, res.User.Role)
}

func TestAuthenticate(t *testing.T) {
	st := memory.New()
	st.SeedUser(models.User{ID: 4, PhoneNumber: "22223333", FullName: "Sami", Role: models.UserRoleCustomer})
	svc := newAuthService(t, st, "")

	res, err := svc.Authenticate(context.Background(), "22223333")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.User.ID)

	_, err = svc.Authenticate(context.Background(), "99998888")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
