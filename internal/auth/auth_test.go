package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
	"github.com/terra-clan/interview-console/pkg/client"
)

type fakeBackend struct {
	verify     *client.AuthResponse
	verifyErr  error
	register   *client.AuthResponse
	exists     bool
	adminErr   error
	sentTo     string
	registered client.RegisterRequest
}

func (f *fakeBackend) SendOTP(ctx context.Context, phone string) error {
	f.sentTo = phone
	return nil
}

func (f *fakeBackend) VerifyOTP(ctx context.Context, phone, otp string) (*client.AuthResponse, error) {
	return f.verify, f.verifyErr
}

func (f *fakeBackend) Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResponse, error) {
	f.registered = req
	if f.register == nil {
		return &client.AuthResponse{}, nil
	}
	return f.register, nil
}

func (f *fakeBackend) CheckUserExists(ctx context.Context, phone string) (bool, error) {
	return f.exists, nil
}

func (f *fakeBackend) VerifyAdmin(ctx context.Context) error {
	return f.adminErr
}

func TestFlow_SendOTP(t *testing.T) {
	api := &fakeBackend{}
	flow := NewFlow(api, client.NewMemoryStore())

	assert.ErrorIs(t, flow.SendOTP(context.Background(), "  "), ErrPhoneRequired)
	require.NoError(t, flow.SendOTP(context.Background(), " +15550001111 "))
	assert.Equal(t, "+15550001111", api.sentTo)
}

func TestFlow_VerifyOTP_ExistingUser(t *testing.T) {
	api := &fakeBackend{verify: &client.AuthResponse{Token: "t", RefreshToken: "r"}, exists: true}
	store := client.NewMemoryStore()
	flow := NewFlow(api, store)

	needs, err := flow.VerifyOTP(context.Background(), "+1", "123456")
	require.NoError(t, err)
	assert.False(t, needs)

	creds, _ := store.Load(context.Background())
	assert.Equal(t, client.Credentials{AccessToken: "t", RefreshToken: "r", PhoneNumber: "+1"}, creds)
}

func TestFlow_VerifyOTP_NewUser(t *testing.T) {
	api := &fakeBackend{verify: &client.AuthResponse{Token: "t"}, exists: false}
	flow := NewFlow(api, client.NewMemoryStore())

	needs, err := flow.VerifyOTP(context.Background(), "+1", "123456")
	require.NoError(t, err)
	assert.True(t, needs)

	api.verify.IsNewUser = true
	api.exists = true
	needs, err = flow.VerifyOTP(context.Background(), "+1", "123456")
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestFlow_VerifyOTP_Errors(t *testing.T) {
	flow := NewFlow(&fakeBackend{verifyErr: errors.New("bad code")}, client.NewMemoryStore())
	_, err := flow.VerifyOTP(context.Background(), "+1", "")
	assert.ErrorIs(t, err, ErrOTPRequired)

	_, err = flow.VerifyOTP(context.Background(), "+1", "000000")
	assert.ErrorContains(t, err, "bad code")

	flow = NewFlow(&fakeBackend{verify: &client.AuthResponse{}}, client.NewMemoryStore())
	_, err = flow.VerifyOTP(context.Background(), "+1", "000000")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFlow_RegisterUsesStoredPhone(t *testing.T) {
	api := &fakeBackend{register: &client.AuthResponse{Token: "fresh"}}
	store := client.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), client.Credentials{AccessToken: "t", PhoneNumber: "+1"}))
	flow := NewFlow(api, store)

	err := flow.Register(context.Background(), client.RegisterRequest{FullName: "Ada", Profession: "Engineer", YearsOfExperience: 5})
	require.NoError(t, err)
	assert.Equal(t, "+1", api.registered.PhoneNumber)

	creds, _ := store.Load(context.Background())
	assert.Equal(t, "fresh", creds.AccessToken)
}

func TestFlow_Logout(t *testing.T) {
	store := client.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), client.Credentials{AccessToken: "t"}))
	flow := NewFlow(&fakeBackend{}, store)

	require.NoError(t, flow.Logout(context.Background()))
	creds, _ := store.Load(context.Background())
	assert.True(t, creds.IsZero())
}

func TestFlow_AdminLogin(t *testing.T) {
	api := &fakeBackend{verify: &client.AuthResponse{Token: "t"}, exists: true}
	store := client.NewMemoryStore()
	flow := NewFlow(api, store)

	require.NoError(t, flow.AdminLogin(context.Background(), "+1", "123456"))
	creds, _ := store.Load(context.Background())
	assert.Equal(t, "t", creds.AccessToken)

	api.adminErr = &client.APIError{StatusCode: 403, Message: "forbidden"}
	err := flow.AdminLogin(context.Background(), "+1", "123456")
	assert.ErrorIs(t, err, ErrNotAdmin)
	creds, _ = store.Load(context.Background())
	assert.True(t, creds.IsZero())

	api.adminErr = errors.New("connection refused")
	err = flow.AdminLogin(context.Background(), "+1", "123456")
	assert.NotErrorIs(t, err, ErrNotAdmin)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSessionCredentials(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	sess := models.NewWebSession("", models.RoleUser, time.Hour)
	require.NoError(t, repo.CreateSession(ctx, sess))

	store := NewSessionCredentials(repo, sess.ID)
	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.IsZero())

	require.NoError(t, store.Save(ctx, client.Credentials{AccessToken: "a", RefreshToken: "r", PhoneNumber: "+1"}))
	creds, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.Credentials{AccessToken: "a", RefreshToken: "r", PhoneNumber: "+1"}, creds)

	stored, _ := repo.GetSession(ctx, sess.ID)
	assert.True(t, stored.IsAuthenticated())

	require.NoError(t, store.Clear(ctx))
	creds, _ = store.Load(ctx)
	assert.Empty(t, creds.AccessToken)
	assert.Equal(t, "+1", creds.PhoneNumber)

	missing := NewSessionCredentials(repo, "gone")
	creds, err = missing.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.IsZero())
	assert.ErrorIs(t, missing.Save(ctx, client.Credentials{AccessToken: "a"}), ErrSessionNotFound)
	assert.NoError(t, missing.Clear(ctx))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store := NewFileStore(path)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, creds.IsZero())

	want := client.Credentials{AccessToken: "a", RefreshToken: "r", PhoneNumber: "+1"}
	require.NoError(t, store.Save(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	creds, err = NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, creds)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorContains(t, err, "failed to parse credentials")
}
