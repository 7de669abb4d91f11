package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents an application user.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  *string
	IsAdmin      bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser removes sensitive fields for response payloads.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}

// Handle is the public URL segment identifying the user: the email
// local-part, falling back to the first eight characters of the id.
func (u User) Handle() string {
	if u.Email != "" {
		return strings.SplitN(u.Email, "@", 2)[0]
	}
	return u.ID.String()[:8]
}

// TokenPair bundles access and refresh tokens.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}
