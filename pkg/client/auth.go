package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SendOTP asks the backend to text a one-time code
func (c *Client) SendOTP(ctx context.Context, phoneNumber string) error {
	return c.call(ctx, http.MethodPost, "/api/auth/send-otp", map[string]string{"phoneNumber": phoneNumber}, nil)
}

// VerifyOTP exchanges a one-time code for tokens
func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, otp string) (*AuthResponse, error) {
	var out AuthResponse
	payload := map[string]string{"phoneNumber": phoneNumber, "otp": otp}
	if err := c.call(ctx, http.MethodPost, "/api/auth/verify-otp", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a candidate profile
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login issues tokens for an existing phone number
func (c *Client) Login(ctx context.Context, phoneNumber string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", map[string]string{"phoneNumber": phoneNumber}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new token pair.
// It never carries the bearer header and is never itself retried.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req, err := jsonRequest(http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}
	req.anonymous = true

	var out AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	return &out, nil
}

// ValidatePhone asks the backend whether a phone number is well formed
func (c *Client) ValidatePhone(ctx context.Context, phoneNumber string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/auth/validate-phone/"+url.PathEscape(phoneNumber), nil, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// CheckUserExists reports whether a profile is registered for the phone number
func (c *Client) CheckUserExists(ctx context.Context, phoneNumber string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/users/check/"+url.PathEscape(phoneNumber), nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}
