package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/terra-clan/interview-console/internal/models"
)

// GetProfile returns the signed-in user's profile
func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes profile fields
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodPost, "/api/users/update-profile", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadResume sends a resume as multipart form data (fields file and phoneNumber)
func (c *Client) UploadResume(ctx context.Context, phoneNumber, filename string, file io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	if err := w.WriteField("phoneNumber", phoneNumber); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/users/upload-resume",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil)
}
