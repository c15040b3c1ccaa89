package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/security"
)

var phonePattern = regexp.MustCompile(`^[0-9]{8}$`)

type AuthConfig struct {
	JWTSecret       string
	JWTTTL          time.Duration
	AdminSecretHash string
}

type AuthService struct {
	users UserStore
	cfg   AuthConfig
	log   zerolog.Logger
}

func NewAuthService(users UserStore, cfg AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, cfg: cfg, log: log}
}

type RegisterInput struct {
	FullName    string
	PhoneNumber string
	Role        models.UserRole
	AdminSecret string
}

type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	var v validator
	n := utf8.RuneCountInString(input.FullName)
	v.check(n >= 2 && n <= 100, "fullName", "must be between 2 and 100 characters")
	v.check(phonePattern.MatchString(input.PhoneNumber), "phoneNumber", "must be exactly 8 digits")
	v.check(input.Role.Valid(), "role", "must be CUSTOMER, PROVIDER or ADMIN")
	if err := v.err(); err != nil {
		return AuthResult{}, err
	}

	if input.Role == models.UserRoleAdmin {
		if err := s.checkAdminSecret(input.AdminSecret); err != nil {
			return AuthResult{}, err
		}
	}

	user := models.User{
		PhoneNumber:   input.PhoneNumber,
		FullName:      input.FullName,
		Role:          input.Role,
		FairnessScore: models.DefaultFairnessScore,
		Badges:        []string{},
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if err = MapRepositoryError(err); errors.Is(err, ErrAlreadyExists) {
			return AuthResult{}, fmt.Errorf("%w: phone number already registered", ErrAlreadyExists)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

// Authenticate trusts the phone number alone; an OTP step would sit here.
func (s *AuthService) Authenticate(ctx context.Context, phoneNumber string) (AuthResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !phonePattern.MatchString(phoneNumber) {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(MapRepositoryError(err), ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := security.GenerateAccessToken(s.cfg.JWTSecret, user, s.cfg.JWTTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) checkAdminSecret(secret string) error {
	if s.cfg.AdminSecretHash == "" || secret == "" {
		return fmt.Errorf("%w: admin registration is closed", ErrForbidden)
	}
	ok, err := security.VerifySecret(secret, s.cfg.AdminSecretHash)
	if err != nil {
		return fmt.Errorf("verify admin secret: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: admin secret mismatch", ErrForbidden)
	}
	return nil
}
