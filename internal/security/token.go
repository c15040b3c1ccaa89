package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diya-thabet/hirfa/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// AccessClaims carries the profile snapshot the client renders before it
// fetches anything else. The subject is the user id.
type AccessClaims struct {
	FullName      string   `json:"fullName"`
	Role          string   `json:"role"`
	FairnessScore int      `json:"fairnessScore"`
	Badges        []string `json:"badges"`
	Verified      bool     `json:"verified"`
	jwt.RegisteredClaims
}

func (c AccessClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", ErrInvalidToken, c.Subject)
	}
	return id, nil
}

func ClaimsForUser(user models.User, ttl time.Duration) AccessClaims {
	now := time.Now()
	badges := user.Badges
	if badges == nil {
		badges = []string{}
	}
	return AccessClaims{
		FullName:      user.FullName,
		Role:          string(user.Role),
		FairnessScore: user.FairnessScore,
		Badges:        badges,
		Verified:      user.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	}
}

func GenerateAccessToken(secret string, user models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, ClaimsForUser(user, ttl))
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseAccessToken(tokenStr string, secret string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
