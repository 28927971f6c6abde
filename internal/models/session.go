package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionRole scopes what a browser session may reach
type SessionRole string

const (
	RoleUser  SessionRole = "user"
	RoleAdmin SessionRole = "admin"
)

// WebSession is a browser session held by the console.
// It carries the backend credentials on behalf of one signed-in browser.
type WebSession struct {
	ID           string      `json:"id"`
	PhoneNumber  string      `json:"phone_number"`
	Role         SessionRole `json:"role"`
	AccessToken  string      `json:"-"`
	RefreshToken string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	LastSeenAt   time.Time   `json:"last_seen_at"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

// NewWebSession creates a session that expires after ttl
func NewWebSession(phone string, role SessionRole, ttl time.Duration) *WebSession {
	now := time.Now().UTC()
	return &WebSession{
		ID:          GenerateSessionID(),
		PhoneNumber: phone,
		Role:        role,
		CreatedAt:   now,
		LastSeenAt:  now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired checks if the session TTL has elapsed
func (s *WebSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated reports whether backend credentials are present
func (s *WebSession) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// TimeRemaining returns the duration until expiry (0 if expired)
func (s *WebSession) TimeRemaining() time.Duration {
	remaining := time.Until(s.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MaskedID returns the first 8 characters of the session id for logging
func (s *WebSession) MaskedID() string {
	if len(s.ID) < 8 {
		return "***"
	}
	return s.ID[:8] + "..."
}

// GenerateSessionID creates an opaque 32-char hex session id
func GenerateSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
