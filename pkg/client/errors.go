package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuthExpired is returned when a 401 could not be recovered by refreshing.
// Stored credentials have been cleared by the time it is returned.
var ErrAuthExpired = errors.New("authentication expired, please log in again")

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: string(body)}

	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			e.Message = payload.Message
		default:
			if s, ok := payload.Error.(string); ok {
				e.Message = s
			}
		}
	} else if text := strings.TrimSpace(string(body)); len(text) > 0 && len(text) <= 200 {
		e.Message = text
	}
	return e
}

// StatusCode extracts the HTTP status from an *APIError, 0 otherwise
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
