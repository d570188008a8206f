package models

import "time"

// Tier is a subscription tier name.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// ValidTier reports whether t names a known tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierFree, TierPro, TierPremium:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Tier         Tier
	IsActive     bool
	CreatedAt    time.Time
}

// APIKey holds a stored key credential. The plain key is never persisted;
// Prefix keeps the first characters for lookup, Hash the bcrypt digest.
type APIKey struct {
	ID         int64
	UserID     int64
	Name       string
	Prefix     string
	Hash       string
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Identity is the authenticated caller as seen by the core service:
// a stable user id plus the subscription tier. Handlers resolve it from
// a JWT or an API key; everything below the HTTP layer depends only on
// this pair.
type Identity struct {
	UserID int64
	Tier   Tier
}
