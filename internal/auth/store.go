package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/interview-console/internal/storage"
	"github.com/terra-clan/interview-console/pkg/client"
)

// ErrSessionNotFound is returned when the browser session behind a store is gone
var ErrSessionNotFound = errors.New("session not found")

// SessionCredentials stores tokens on one browser session in the repository
type SessionCredentials struct {
	repo      storage.Repository
	sessionID string
}

// NewSessionCredentials binds a credential store to a web session id
func NewSessionCredentials(repo storage.Repository, sessionID string) *SessionCredentials {
	return &SessionCredentials{repo: repo, sessionID: sessionID}
}

// Load returns the session tokens; a missing session reads as logged out
func (s *SessionCredentials) Load(ctx context.Context) (client.Credentials, error) {
	sess, err := s.repo.GetSession(ctx, s.sessionID)
	if err != nil {
		return client.Credentials{}, err
	}
	if sess == nil || sess.IsExpired() {
		return client.Credentials{}, nil
	}
	return client.Credentials{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		PhoneNumber:  sess.PhoneNumber,
	}, nil
}

// Save writes tokens onto the session
func (s *SessionCredentials) Save(ctx context.Context, creds client.Credentials) error {
	sess, err := s.repo.GetSession(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.AccessToken = creds.AccessToken
	sess.RefreshToken = creds.RefreshToken
	if creds.PhoneNumber != "" {
		sess.PhoneNumber = creds.PhoneNumber
	}
	sess.LastSeenAt = time.Now().UTC()
	return s.repo.UpdateSession(ctx, sess)
}

// Clear blanks the tokens; the session record itself is left to its owner
func (s *SessionCredentials) Clear(ctx context.Context) error {
	sess, err := s.repo.GetSession(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	sess.AccessToken = ""
	sess.RefreshToken = ""
	return s.repo.UpdateSession(ctx, sess)
}

// FileStore keeps CLI credentials in a YAML file readable only by the owner
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultCredentialsPath returns <user config dir>/interview-console/credentials.yaml
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "interview-console", "credentials.yaml"), nil
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (client.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var creds client.Credentials
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return creds, nil
		}
		return creds, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return client.Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds, nil
}

func (f *FileStore) Save(ctx context.Context, creds client.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
