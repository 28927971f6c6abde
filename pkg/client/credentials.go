package client

import (
	"context"
	"sync"
)

// Credentials are the tokens issued at login
type Credentials struct {
	AccessToken  string `json:"access_token" yaml:"access_token"`
	RefreshToken string `json:"refresh_token" yaml:"refresh_token"`
	PhoneNumber  string `json:"phone_number" yaml:"phone_number"`
}

// IsZero reports whether no login has been recorded
func (c Credentials) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.PhoneNumber == ""
}

// CredentialStore persists credentials between requests.
// Load on an empty store returns zero Credentials and no error.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps credentials in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *MemoryStore) Save(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
