package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/terra-clan/interview-console/internal/models"
)

// StartInterview starts a standard session
func (c *Client) StartInterview(ctx context.Context, req StartInterviewRequest) (*StartInterviewResponse, error) {
	var out StartInterviewResponse
	if err := c.call(ctx, http.MethodPost, "/api/interviews/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartEnhancedInterview starts a session with weighted focus areas
func (c *Client) StartEnhancedInterview(ctx context.Context, req EnhancedInterviewRequest) (*StartInterviewResponse, error) {
	var out StartInterviewResponse
	if err := c.call(ctx, http.MethodPost, "/api/interviews/start-enhanced", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostChatMessage sends one candidate turn and returns the interviewer's reply
func (c *Client) PostChatMessage(ctx context.Context, interviewID int64, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	path := fmt.Sprintf("/api/interviews/%d/chat", interviewID)
	if err := c.call(ctx, http.MethodPost, path, map[string]string{"message": message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// SubmitCodingSolution reports a coding submission and returns the interviewer's follow-up
func (c *Client) SubmitCodingSolution(ctx context.Context, interviewID int64, req CodingSolutionRequest) (string, error) {
	var out struct {
		Message string `json:"message"`
		Reply   string `json:"reply"`
	}
	path := fmt.Sprintf("/api/interviews/%d/coding-submission", interviewID)
	if err := c.call(ctx, http.MethodPost, path, req, &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		return out.Reply, nil
	}
	return out.Message, nil
}

// EndInterview closes a session early
func (c *Client) EndInterview(ctx context.Context, interviewID int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/interviews/%d/end", interviewID), nil, nil)
}

// GenerateFeedback asks the backend to write the session feedback
func (c *Client) GenerateFeedback(ctx context.Context, interviewID int64) (string, error) {
	var out struct {
		Feedback string `json:"feedback"`
	}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/interviews/%d/generate-feedback", interviewID), nil, &out); err != nil {
		return "", err
	}
	return out.Feedback, nil
}

// GetInterviewHistory lists the signed-in user's sessions
func (c *Client) GetInterviewHistory(ctx context.Context) ([]models.Interview, error) {
	var out []models.Interview
	if err := c.call(ctx, http.MethodGet, "/api/interviews/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInterview returns one session
func (c *Client) GetInterview(ctx context.Context, interviewID int64) (*models.Interview, error) {
	var out models.Interview
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/interviews/%d", interviewID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
