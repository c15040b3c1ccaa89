package session

import (
	"encoding/json"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diya-thabet/hirfa/internal/models"
)

// UntrustedClaims is what a token says about its holder. The signature is not
// checked, so nothing here is authoritative until the server confirms it.
type UntrustedClaims struct {
	UserID        json.RawMessage `json:"id,omitempty"`
	FullName      string          `json:"fullName"`
	Role          string          `json:"role"`
	FairnessScore *int            `json:"fairnessScore"`
	Badges        []string        `json:"badges"`
	Verified      bool            `json:"verified"`
	jwt.RegisteredClaims
}

// DecodeUntrusted reads a token's payload without verifying it.
func DecodeUntrusted(token string) (UntrustedClaims, error) {
	var claims UntrustedClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return UntrustedClaims{}, &DecodeError{Key: "token", Err: err}
	}
	return claims, nil
}

// ID prefers the subject and falls back to an "id" claim. Zero when neither parses.
func (c UntrustedClaims) ID() int64 {
	if id, err := strconv.ParseInt(c.Subject, 10, 64); err == nil {
		return id
	}
	if len(c.UserID) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(c.UserID, &n); err == nil {
		if id, err := n.Int64(); err == nil {
			return id
		}
	}
	var s string
	if err := json.Unmarshal(c.UserID, &s); err == nil {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// profile fills the gaps a sparse token leaves with the marketplace defaults.
func (c UntrustedClaims) profile(phoneNumber string) models.User {
	user := models.User{
		ID:            c.ID(),
		PhoneNumber:   phoneNumber,
		FullName:      c.FullName,
		Role:          models.UserRole(c.Role),
		FairnessScore: models.DefaultFairnessScore,
		Badges:        c.Badges,
		Verified:      c.Verified,
	}
	if user.FullName == "" {
		user.FullName = "User"
	}
	if !user.Role.Valid() {
		user.Role = models.UserRoleCustomer
	}
	if c.FairnessScore != nil {
		user.FairnessScore = models.ClampFairness(*c.FairnessScore)
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}
	return user
}
