// Package auth owns the candidate and admin sign-in flows and where their tokens live.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/interview-console/pkg/client"
)

// Common errors
var (
	ErrNotAdmin      = errors.New("this account does not have admin access")
	ErrPhoneRequired = errors.New("phone number is required")
	ErrOTPRequired   = errors.New("verification code is required")
	ErrNoToken       = errors.New("backend did not issue a token")
)

// Backend is the part of the API client the flows use
type Backend interface {
	SendOTP(ctx context.Context, phoneNumber string) error
	VerifyOTP(ctx context.Context, phoneNumber, otp string) (*client.AuthResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResponse, error)
	CheckUserExists(ctx context.Context, phoneNumber string) (bool, error)
	VerifyAdmin(ctx context.Context) error
}

// Flow runs sign-in steps and records credentials in a store
type Flow struct {
	api   Backend
	creds client.CredentialStore
}

// NewFlow creates a flow writing to creds
func NewFlow(api Backend, creds client.CredentialStore) *Flow {
	return &Flow{api: api, creds: creds}
}

// SendOTP asks the backend to text a code to phone
func (f *Flow) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}
	if err := f.api.SendOTP(ctx, phone); err != nil {
		return fmt.Errorf("failed to send OTP: %w", err)
	}
	return nil
}

// VerifyOTP exchanges the code for tokens and stores them.
// needsRegistration is true when the phone has no profile yet.
func (f *Flow) VerifyOTP(ctx context.Context, phone, otp string) (needsRegistration bool, err error) {
	phone, otp = strings.TrimSpace(phone), strings.TrimSpace(otp)
	if phone == "" {
		return false, ErrPhoneRequired
	}
	if otp == "" {
		return false, ErrOTPRequired
	}

	resp, err := f.api.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return false, fmt.Errorf("verification failed: %w", err)
	}

	if err := f.store(ctx, phone, resp); err != nil {
		return false, err
	}

	if resp.IsNewUser {
		return true, nil
	}
	exists, err := f.api.CheckUserExists(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return !exists, nil
}

// Register creates the profile for the verified phone
func (f *Flow) Register(ctx context.Context, req client.RegisterRequest) error {
	if strings.TrimSpace(req.PhoneNumber) == "" {
		creds, err := f.creds.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		req.PhoneNumber = creds.PhoneNumber
	}
	if req.PhoneNumber == "" {
		return ErrPhoneRequired
	}

	resp, err := f.api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	// Registration may or may not mint fresh tokens
	if resp.Token != "" {
		return f.store(ctx, req.PhoneNumber, resp)
	}
	return nil
}

// Logout clears every stored credential
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.creds.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// AdminLogin verifies the code, then checks admin rights.
// Credentials are cleared again unless the backend confirms the admin role.
func (f *Flow) AdminLogin(ctx context.Context, phone, otp string) error {
	if _, err := f.VerifyOTP(ctx, phone, otp); err != nil {
		return err
	}

	if err := f.api.VerifyAdmin(ctx); err != nil {
		if clearErr := f.creds.Clear(ctx); clearErr != nil {
			slog.Error("failed to clear credentials", "error", clearErr)
		}
		switch client.StatusCode(err) {
		case http.StatusForbidden, http.StatusUnauthorized:
			return ErrNotAdmin
		}
		return fmt.Errorf("admin verification failed: %w", err)
	}
	return nil
}

func (f *Flow) store(ctx context.Context, phone string, resp *client.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return ErrNoToken
	}
	creds := client.Credentials{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		PhoneNumber:  phone,
	}
	if err := f.creds.Save(ctx, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}
