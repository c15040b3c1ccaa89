package session

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/localstore"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository/memory"
)

type stubAPI struct {
	authBody     gateway.Body
	authErr      error
	registerBody gateway.Body
	registerErr  error
	meBody       gateway.Body
	meErr        error

	registerCalls int
	lastRegister  gateway.RegisterRequest
}

func (s *stubAPI) Authenticate(context.Context, string) (gateway.Body, error) {
	return s.authBody, s.authErr
}

func (s *stubAPI) Register(_ context.Context, req gateway.RegisterRequest) (gateway.Body, error) {
	s.registerCalls++
	s.lastRegister = req
	return s.registerBody, s.registerErr
}

func (s *stubAPI) Me(context.Context) (gateway.Body, error) {
	return s.meBody, s.meErr
}

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated"))
	require.NoError(t, err)
	return token
}

func tokenBody(token string) gateway.Body {
	return gateway.Body(`{"token":"` + token + `"}`)
}

func assertInvariant(t *testing.T, s *Store) {
	t.Helper()
	_, hasUser := s.User()
	assert.Equal(t, s.Token() != "" && hasUser, s.IsAuthenticated())
}

func TestLoginBuildsProfileFromClaims(t *testing.T) {
	score := 87
	token := signToken(t, UntrustedClaims{
		FullName:         "Hedi",
		Role:             "PROVIDER",
		FairnessScore:    &score,
		Badges:           []string{"trusted"},
		Verified:         true,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
	})
	storage := localstore.NewMemory()
	s := Open(context.Background(), &stubAPI{authBody: tokenBody(token)}, storage, zerolog.Nop())

	res, err := s.Login(context.Background(), "20000002")
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.User.ID)
	assert.Equal(t, "Hedi", res.User.FullName)
	assert.Equal(t, models.UserRoleProvider, res.User.Role)
	assert.Equal(t, 87, res.User.FairnessScore)
	assert.Equal(t, []string{"trusted"}, res.User.Badges)
	assert.True(t, s.IsProvider())
	assertInvariant(t, s)

	saved, ok, err := storage.Get(context.Background(), TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token, saved)
}

func TestLoginWithSparseTokenUsesDefaults(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"id": "7"})
	s := Open(context.Background(), &stubAPI{authBody: tokenBody(token)}, localstore.NewMemory(), zerolog.Nop())

	res, err := s.Login(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "User", res.User.FullName)
	assert.Equal(t, models.UserRoleCustomer, res.User.Role)
	assert.Equal(t, models.DefaultFairnessScore, res.User.FairnessScore)
	assert.Equal(t, []string{}, res.User.Badges)
	assert.Equal(t, "555", res.User.PhoneNumber)
}

func TestLoginWithOpaqueTokenDegrades(t *testing.T) {
	s := Open(context.Background(), &stubAPI{authBody: tokenBody("not-a-jwt")}, localstore.NewMemory(), zerolog.Nop())

	res, err := s.Login(context.Background(), "555")
	require.NoError(t, err)
	assert.Zero(t, res.User.ID)
	assert.Equal(t, "not-a-jwt", res.Token)
	assert.True(t, s.IsAuthenticated())
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		name    string
		api     *stubAPI
		status  int
		message string
	}{
		{
			name:    "rejected",
			api:     &stubAPI{authErr: &gateway.APIError{Status: http.StatusUnauthorized, Message: "Invalid phone number or credentials"}},
			status:  http.StatusUnauthorized,
			message: "Invalid phone number or credentials",
		},
		{
			name:    "no token",
			api:     &stubAPI{authBody: gateway.Body(`{"success":true}`)},
			message: "No token received",
		},
		{
			name:    "network",
			api:     &stubAPI{authErr: errors.New("connection refused")},
			message: "Authentication failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Open(context.Background(), tc.api, localstore.NewMemory(), zerolog.Nop())

			_, err := s.Login(context.Background(), "1")
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tc.status, authErr.Status)
			assert.Equal(t, tc.message, authErr.Message)
			assert.False(t, s.IsAuthenticated())
			assertInvariant(t, s)
		})
	}
}

func TestRegisterSeedsFreshProfile(t *testing.T) {
	token := signToken(t, jwt.RegisteredClaims{Subject: "9"})
	api := &stubAPI{registerBody: tokenBody(token)}
	s := Open(context.Background(), api, localstore.NewMemory(), zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	res, err := s.Register(context.Background(), "Ahmed", "12345678", models.UserRoleProvider)
	require.NoError(t, err)
	assert.Equal(t, 100, res.User.FairnessScore)
	assert.Equal(t, []string{}, res.User.Badges)
	assert.False(t, res.User.Verified)
	assert.Equal(t, int64(9), res.User.ID)
	assert.Equal(t, fixed, res.User.CreatedAt)
	assert.Equal(t, "PROVIDER", api.lastRegister.Role)
}

func TestRegisterRejectsUnknownRoleWithoutCallingAPI(t *testing.T) {
	api := &stubAPI{}
	s := Open(context.Background(), api, localstore.NewMemory(), zerolog.Nop())

	_, err := s.Register(context.Background(), "A", "1", models.UserRole("GUEST"))
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, api.registerCalls)
}

func TestLogoutIsIdempotent(t *testing.T) {
	storage := localstore.NewMemory()
	s := Open(context.Background(), &stubAPI{authBody: tokenBody(signToken(t, jwt.RegisteredClaims{Subject: "1"}))}, storage, zerolog.Nop())
	_, err := s.Login(context.Background(), "1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	first := snapshot(t, s, storage)
	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, first, snapshot(t, s, storage))
	assert.False(t, first.authenticated)
	assert.False(t, first.storedToken)
	assert.False(t, first.storedUser)
}

type state struct {
	authenticated bool
	token         string
	storedToken   bool
	storedUser    bool
}

func snapshot(t *testing.T, s *Store, storage localstore.Store) state {
	t.Helper()
	_, hasToken, err := storage.Get(context.Background(), TokenKey)
	require.NoError(t, err)
	_, hasUser, err := storage.Get(context.Background(), UserKey)
	require.NoError(t, err)
	return state{authenticated: s.IsAuthenticated(), token: s.Token(), storedToken: hasToken, storedUser: hasUser}
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	storage := localstore.NewMemory()
	token := signToken(t, UntrustedClaims{FullName: "Ines", Role: "PROVIDER", RegisteredClaims: jwt.RegisteredClaims{Subject: "3"}})
	s := Open(context.Background(), &stubAPI{authBody: tokenBody(token)}, storage, zerolog.Nop())
	res, err := s.Login(context.Background(), "20000003")
	require.NoError(t, err)

	name := "Ines G."
	verified := true
	updated, err := s.UpdateUser(context.Background(), ProfileUpdate{FullName: &name, Verified: &verified})
	require.NoError(t, err)

	want := res.User
	want.FullName = name
	want.Verified = true
	assert.Equal(t, want, updated)

	current, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, want, current)

	reopened := Open(context.Background(), &stubAPI{}, storage, zerolog.Nop())
	persisted, ok := reopened.User()
	require.True(t, ok)
	assert.Equal(t, want.FullName, persisted.FullName)
	assert.Equal(t, want.Verified, persisted.Verified)
	assert.Equal(t, token, reopened.Token())
}

func TestUpdateUserClampsScore(t *testing.T) {
	s := Open(context.Background(), &stubAPI{authBody: tokenBody("opaque")}, localstore.NewMemory(), zerolog.Nop())
	_, err := s.Login(context.Background(), "1")
	require.NoError(t, err)

	score := 140
	u, err := s.UpdateUser(context.Background(), ProfileUpdate{FairnessScore: &score})
	require.NoError(t, err)
	assert.Equal(t, 100, u.FairnessScore)
}

func TestUpdateUserWhileSignedOut(t *testing.T) {
	storage := localstore.NewMemory()
	s := Open(context.Background(), &stubAPI{}, storage, zerolog.Nop())

	name := "x"
	_, err := s.UpdateUser(context.Background(), ProfileUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, ok, _ := storage.Get(context.Background(), UserKey)
	assert.False(t, ok)
}

func TestOpenDiscardsCorruptSession(t *testing.T) {
	ctx := context.Background()
	cases := map[string]map[string]string{
		"bad json":    {TokenKey: "t", UserKey: "{not json"},
		"token only":  {TokenKey: "t"},
		"user only":   {UserKey: `{"id":1}`},
		"empty token": {TokenKey: "", UserKey: `{"id":1}`},
	}
	for name, saved := range cases {
		t.Run(name, func(t *testing.T) {
			storage := localstore.NewMemory()
			for k, v := range saved {
				require.NoError(t, storage.Set(ctx, k, v))
			}

			s := Open(ctx, &stubAPI{}, storage, zerolog.Nop())
			assert.False(t, s.IsAuthenticated())
			assertInvariant(t, s)
			_, hasToken, _ := storage.Get(ctx, TokenKey)
			_, hasUser, _ := storage.Get(ctx, UserKey)
			assert.False(t, hasToken)
			assert.False(t, hasUser)
		})
	}
}

func TestOpenRestoresSavedSession(t *testing.T) {
	ctx := context.Background()
	storage := localstore.NewMemory()
	require.NoError(t, storage.Set(ctx, TokenKey, "saved"))
	require.NoError(t, storage.Set(ctx, UserKey, `{"id":5,"fullName":"Sami","role":"CUSTOMER","fairnessScore":100}`))

	s := Open(ctx, &stubAPI{}, storage, zerolog.Nop())
	require.True(t, s.IsAuthenticated())
	u, _ := s.User()
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, []string{}, u.Badges)
	assert.True(t, s.IsCustomer())
	assert.False(t, s.IsAdmin())
}

func TestConfirmReplacesProfile(t *testing.T) {
	api := &stubAPI{
		authBody: tokenBody("opaque"),
		meBody:   gateway.Body(`{"success":true,"message":"ok","data":{"id":12,"fullName":"Server Name","role":"PROVIDER","fairnessScore":70,"badges":["trusted"],"verified":true}}`),
	}
	s := Open(context.Background(), api, localstore.NewMemory(), zerolog.Nop())
	_, err := s.Login(context.Background(), "1")
	require.NoError(t, err)

	u, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.Equal(t, 70, u.FairnessScore)
	assert.True(t, s.IsProvider())
}

func TestConfirmUnauthorizedLogsOut(t *testing.T) {
	api := &stubAPI{authBody: tokenBody("opaque"), meErr: &gateway.APIError{Status: http.StatusUnauthorized, Message: "expired"}}
	s := Open(context.Background(), api, localstore.NewMemory(), zerolog.Nop())
	_, err := s.Login(context.Background(), "1")
	require.NoError(t, err)

	_, err = s.Confirm(context.Background())
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
}

// brokenDelete is a store whose deletes always fail.
type brokenDelete struct{ *localstore.Memory }

func (brokenDelete) Delete(context.Context, ...string) error { return errors.New("disk full") }

func TestConfirmUnauthorizedLogsClearFailure(t *testing.T) {
	var logs bytes.Buffer
	api := &stubAPI{authBody: tokenBody("opaque"), meErr: &gateway.APIError{Status: http.StatusUnauthorized, Message: "expired"}}
	s := Open(context.Background(), api, brokenDelete{localstore.NewMemory()}, zerolog.New(&logs))
	_, err := s.Login(context.Background(), "1")
	require.NoError(t, err)

	_, err = s.Confirm(context.Background())
	assert.Equal(t, http.StatusUnauthorized, gateway.StatusOf(err))
	assert.False(t, s.IsAuthenticated())
	assert.Contains(t, logs.String(), "clear saved session failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestConfirmSignedOut(t *testing.T) {
	s := Open(context.Background(), &stubAPI{}, localstore.NewMemory(), zerolog.Nop())
	_, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionAgainstFixtureBackend(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	gateway.SeedDemo(st)
	client := gateway.New(gateway.NewFixture(zerolog.Nop(), st), nil, zerolog.Nop())
	s := Open(ctx, client, localstore.NewMemory(), zerolog.Nop())
	client.SetTokenSource(s)

	res, err := s.Login(ctx, "20000002")
	require.NoError(t, err)
	assert.Equal(t, "Hedi Mansour", res.User.FullName)
	assert.Equal(t, 92, res.User.FairnessScore)
	assert.True(t, res.User.Verified)

	confirmed, err := s.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, confirmed.ID)
	assert.Equal(t, "20000002", confirmed.PhoneNumber)

	_, err = s.Login(ctx, "99999999")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}
