package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
)

// Judge0 status ids that mean "not finished yet"
const (
	statusInQueue    = 1
	statusProcessing = 2
)

// Judge0Client submits solutions to a Judge0 instance behind RapidAPI
type Judge0Client struct {
	baseURL      string
	apiKey       string
	host         string
	httpClient   *http.Client
	languages    map[string]int
	maxAttempts  int
	pollInterval time.Duration
}

// Judge0Option configures the Judge0 client
type Judge0Option func(*Judge0Client)

// WithJudgeHTTPClient sets a custom HTTP client
func WithJudgeHTTPClient(client *http.Client) Judge0Option {
	return func(c *Judge0Client) {
		c.httpClient = client
	}
}

// WithRapidAPIHost overrides the X-RapidAPI-Host header
func WithRapidAPIHost(host string) Judge0Option {
	return func(c *Judge0Client) {
		c.host = host
	}
}

// WithLanguageIDs replaces the language table
func WithLanguageIDs(ids map[string]int) Judge0Option {
	return func(c *Judge0Client) {
		if len(ids) > 0 {
			c.languages = ids
		}
	}
}

// WithPolling sets the polling budget per case
func WithPolling(maxAttempts int, interval time.Duration) Judge0Option {
	return func(c *Judge0Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if interval >= 0 {
			c.pollInterval = interval
		}
	}
}

// NewJudge0Client creates a client for the Judge0 API at baseURL
func NewJudge0Client(baseURL, apiKey string, opts ...Judge0Option) *Judge0Client {
	c := &Judge0Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		languages:    DefaultLanguageIDs,
		maxAttempts:  30,
		pollInterval: time.Second,
	}
	if u, err := url.Parse(c.baseURL); err == nil {
		c.host = u.Host
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type judge0Submission struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

type judge0Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type judge0Result struct {
	Token         string        `json:"token"`
	Status        *judge0Status `json:"status"`
	Stdout        *string       `json:"stdout"`
	Stderr        *string       `json:"stderr"`
	CompileOutput *string       `json:"compile_output"`
	Message       *string       `json:"message"`
	Time          flexFloat     `json:"time"`
	Memory        flexFloat     `json:"memory"`
}

// flexFloat accepts a JSON number, a numeric string or null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// Languages returns the supported language names
func (c *Judge0Client) Languages() []string {
	return SupportedLanguages(c.languages)
}

// Submit runs code once per input, sequentially, keeping input order
func (c *Judge0Client) Submit(ctx context.Context, code, language string, inputs, expected []string) ([]models.TestCaseResult, error) {
	if err := validateBatch(language, c.supports, inputs, expected); err != nil {
		return nil, err
	}

	results := make([]models.TestCaseResult, 0, len(inputs))
	for i := range inputs {
		res, err := c.runCase(ctx, code, c.languages[language], inputs[i], expected[i])
		if err != nil {
			slog.Warn("test case execution failed", "case", i+1, "language", language, "error", err)
			results = append(results, errorResult(inputs[i], expected[i], err))
			continue
		}
		results = append(results, caseResult(inputs[i], expected[i], deref(res.Stdout), float64(res.Time)*1000, float64(res.Memory)))
	}

	return results, nil
}

func (c *Judge0Client) supports(language string) bool {
	_, ok := c.languages[language]
	return ok
}

func (c *Judge0Client) runCase(ctx context.Context, code string, languageID int, input, expected string) (*judge0Result, error) {
	body, err := json.Marshal(judge0Submission{
		LanguageID:     languageID,
		SourceCode:     code,
		Stdin:          input,
		ExpectedOutput: expected,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	var created judge0Result
	if err := c.doRequest(ctx, http.MethodPost, "/submissions", bytes.NewReader(body), &created); err != nil {
		return nil, err
	}
	if created.Token == "" {
		return nil, fmt.Errorf("judge0 returned no submission token")
	}

	return c.poll(ctx, created.Token)
}

// poll fetches the submission until it leaves the queued/processing states
func (c *Judge0Client) poll(ctx context.Context, token string) (*judge0Result, error) {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		var res judge0Result
		if err := c.doRequest(ctx, http.MethodGet, "/submissions/"+url.PathEscape(token), nil, &res); err != nil {
			return nil, err
		}

		if res.Status == nil || res.Status.ID > statusProcessing {
			return &res, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return nil, ErrPollTimeout
}

func (c *Judge0Client) doRequest(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("judge0 API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
