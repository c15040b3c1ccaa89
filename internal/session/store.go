// Package session keeps the signed-in user's token and profile, persisted to
// client storage and rehydrated at start.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/localstore"
	"github.com/diya-thabet/hirfa/internal/models"
)

const (
	TokenKey = "hirfa-token"
	UserKey  = "hirfa-user"
)

// AuthAPI is the part of the gateway the session drives.
type AuthAPI interface {
	Authenticate(ctx context.Context, phoneNumber string) (gateway.Body, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (gateway.Body, error)
	Me(ctx context.Context) (gateway.Body, error)
}

type Result struct {
	User  models.User
	Token string
}

// ProfileUpdate lists the fields UpdateUser may change. Nil fields are left alone.
type ProfileUpdate struct {
	FullName      *string
	PhoneNumber   *string
	FairnessScore *int
	Badges        []string
	Verified      *bool
}

// Store is built once at the application root. It is authenticated exactly
// when both a token and a user are held.
type Store struct {
	api     AuthAPI
	storage localstore.Store
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.User
}

// Open rehydrates the session from storage. Corrupt or half-written entries
// are dropped and the store starts signed out.
func Open(ctx context.Context, api AuthAPI, storage localstore.Store, log zerolog.Logger) *Store {
	s := &Store{api: api, storage: storage, log: log, now: time.Now}
	if err := s.rehydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("discarding saved session")
		if err := storage.Delete(ctx, TokenKey, UserKey); err != nil {
			log.Error().Err(err).Msg("clear saved session failed")
		}
	}
	return s
}

func (s *Store) rehydrate(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return err
	}
	raw, hasUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return err
	}
	switch {
	case !hasToken && !hasUser:
		return nil
	case !hasToken || !hasUser || token == "":
		return &DecodeError{Key: UserKey, Err: errors.New("token and user must be saved together")}
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return &DecodeError{Key: UserKey, Err: err}
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}
	s.token = token
	s.user = &user
	return nil
}

// Login exchanges a phone number for a token and builds the profile from the
// token's unverified claims.
func (s *Store) Login(ctx context.Context, phoneNumber string) (Result, error) {
	body, err := s.api.Authenticate(ctx, phoneNumber)
	if err != nil {
		return Result{}, authFailure("Authentication failed", err)
	}
	token := body.Token()
	if token == "" {
		return Result{}, &AuthError{Message: "No token received"}
	}

	claims, err := DecodeUntrusted(token)
	if err != nil {
		s.log.Warn().Err(err).Msg("token payload unreadable, using a default profile")
	}
	user := claims.profile(phoneNumber)

	if err := s.save(ctx, token, user); err != nil {
		return Result{}, err
	}
	return Result{User: user, Token: token}, nil
}

// Register creates the account and seeds a fresh profile: full fairness
// score, no badges, unverified.
func (s *Store) Register(ctx context.Context, fullName, phoneNumber string, role models.UserRole) (Result, error) {
	if !role.Valid() {
		return Result{}, &AuthError{Message: fmt.Sprintf("unknown role %q", role)}
	}

	body, err := s.api.Register(ctx, gateway.RegisterRequest{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Role:        string(role),
	})
	if err != nil {
		return Result{}, authFailure("Registration failed", err)
	}
	token := body.Token()
	if token == "" {
		return Result{}, &AuthError{Message: "No token received"}
	}

	var id int64
	if claims, err := DecodeUntrusted(token); err == nil {
		id = claims.ID()
	}
	user := models.User{
		ID:            id,
		PhoneNumber:   phoneNumber,
		FullName:      fullName,
		Role:          role,
		FairnessScore: models.DefaultFairnessScore,
		Badges:        []string{},
		Verified:      false,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.save(ctx, token, user); err != nil {
		return Result{}, err
	}
	return Result{User: user, Token: token}, nil
}

func authFailure(fallback string, err error) *AuthError {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &AuthError{Status: apiErr.Status, Message: msg}
	}
	return &AuthError{Message: fallback, Err: err}
}

// Confirm replaces the token-derived profile with the server's view of the
// user. A 401 ends the session.
func (s *Store) Confirm(ctx context.Context) (models.User, error) {
	if !s.IsAuthenticated() {
		return models.User{}, ErrNotAuthenticated
	}
	body, err := s.api.Me(ctx)
	if err != nil {
		if gateway.StatusOf(err) == http.StatusUnauthorized {
			if err := s.Logout(ctx); err != nil {
				s.log.Error().Err(err).Msg("clear saved session failed")
			}
		}
		return models.User{}, err
	}
	var user models.User
	if err := body.Decode(&user); err != nil {
		return models.User{}, &DecodeError{Key: "me", Err: err}
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if err := s.save(ctx, token, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout always clears the in-memory session; the returned error only
// reports a failure to clear storage.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// UpdateUser merges fields into the profile and persists it.
func (s *Store) UpdateUser(ctx context.Context, update ProfileUpdate) (models.User, error) {
	s.mu.RLock()
	if s.user == nil || s.token == "" {
		s.mu.RUnlock()
		return models.User{}, ErrNotAuthenticated
	}
	user := *s.user
	token := s.token
	s.mu.RUnlock()

	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.FairnessScore != nil {
		user.FairnessScore = models.ClampFairness(*update.FairnessScore)
	}
	if update.Badges != nil {
		user.Badges = slices.Clone(update.Badges)
	}
	if update.Verified != nil {
		user.Verified = *update.Verified
	}

	if err := s.save(ctx, token, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) save(ctx context.Context, token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Token satisfies gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the profile and whether one is held.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	u := *s.user
	u.Badges = slices.Clone(u.Badges)
	return u, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Store) hasRole(role models.UserRole) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == role
}

func (s *Store) IsProvider() bool { return s.hasRole(models.UserRoleProvider) }
func (s *Store) IsCustomer() bool { return s.hasRole(models.UserRoleCustomer) }
func (s *Store) IsAdmin() bool    { return s.hasRole(models.UserRoleAdmin) }
