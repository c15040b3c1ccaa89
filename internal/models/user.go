package models

import (
	"slices"
	"time"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleProvider UserRole = "PROVIDER"
	UserRoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCustomer, UserRoleProvider, UserRoleAdmin:
		return true
	}
	return false
}

const (
	DefaultFairnessScore = 100
	MinFairnessScore     = 0
	MaxFairnessScore     = 100
)

// Badge names granted by the fairness recompute.
const (
	BadgeFirstReview = "first_review"
	BadgeTopRated    = "top_rated"
	BadgeTrusted     = "trusted"
)

type User struct {
	ID            int64     `json:"id"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	FullName      string    `json:"fullName"`
	Role          UserRole  `json:"role"`
	FairnessScore int       `json:"fairnessScore"`
	Badges        []string  `json:"badges"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public drops contact details before the user is embedded in someone else's view.
func (u User) Public() User {
	u.PhoneNumber = ""
	if u.Badges == nil {
		u.Badges = []string{}
	}
	return u
}

func (u User) HasBadge(name string) bool {
	return slices.Contains(u.Badges, name)
}

// ClampFairness bounds a score to the allowed range.
func ClampFairness(score int) int {
	return max(MinFairnessScore, min(MaxFairnessScore, score))
}
