package models

import "time"

// TestCaseResult is the outcome of running a solution against one fixture
type TestCaseResult struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expectedOutput"`
	ActualOutput   string  `json:"actualOutput"`
	Passed         bool    `json:"passed"`
	ExecutionTime  float64 `json:"executionTime"` // milliseconds
	MemoryUsage    float64 `json:"memoryUsage"`   // kilobytes
	Diff           string  `json:"diff,omitempty"`
}

// CodingSubmission is built once when the candidate submits a solution
type CodingSubmission struct {
	Code           string           `json:"code"`
	Language       string           `json:"language"`
	ChallengeID    string           `json:"challengeId"`
	TestResults    []TestCaseResult `json:"testResults"`
	OverallPassed  bool             `json:"overallPassed"`
	SubmissionTime int64            `json:"submissionTime"` // milliseconds since the panel opened
}

// NewCodingSubmission assembles a submission from the latest run results
func NewCodingSubmission(code, language, challengeID string, results []TestCaseResult, openedAt, now time.Time) *CodingSubmission {
	return &CodingSubmission{
		Code:           code,
		Language:       language,
		ChallengeID:    challengeID,
		TestResults:    results,
		OverallPassed:  AllPassed(results),
		SubmissionTime: now.Sub(openedAt).Milliseconds(),
	}
}

// AllPassed reports whether results is non-empty and every case passed
func AllPassed(results []TestCaseResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CountPassed returns the number of passing cases
func CountPassed(results []TestCaseResult) int {
	n := 0
	for _, r := range results {
		if r.Passed {
			n++
		}
	}
	return n
}
