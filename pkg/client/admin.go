package client

import (
	"context"
	"net/http"

	"github.com/terra-clan/interview-console/internal/models"
)

// VerifyAdmin succeeds only when the current token belongs to an administrator
func (c *Client) VerifyAdmin(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/admin/verify", nil, nil)
}

// GetAdminStats returns platform totals
func (c *Client) GetAdminStats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := c.call(ctx, http.MethodGet, "/api/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllUsers lists every registered user
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.call(ctx, http.MethodGet, "/api/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllInterviews lists every session with its owner
func (c *Client) GetAllInterviews(ctx context.Context) ([]models.Interview, error) {
	var out []models.Interview
	if err := c.call(ctx, http.MethodGet, "/api/admin/interviews", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
