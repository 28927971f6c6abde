package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPassed(t *testing.T) {
	assert.False(t, AllPassed(nil))
	assert.False(t, AllPassed([]TestCaseResult{}))
	assert.True(t, AllPassed([]TestCaseResult{{Passed: true}, {Passed: true}}))
	assert.False(t, AllPassed([]TestCaseResult{{Passed: true}, {Passed: false}}))
}

func TestCountPassed(t *testing.T) {
	results := []TestCaseResult{{Passed: true}, {Passed: false}, {Passed: true}}
	assert.Equal(t, 2, CountPassed(results))
	assert.Equal(t, 0, CountPassed(nil))
}

func TestNewCodingSubmission(t *testing.T) {
	opened := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	now := opened.Add(90 * time.Second)
	results := []TestCaseResult{{Passed: true}, {Passed: true}}

	sub := NewCodingSubmission("print(1)", "python", "challenge_1_abcd", results, opened, now)

	assert.Equal(t, "print(1)", sub.Code)
	assert.Equal(t, "python", sub.Language)
	assert.Equal(t, "challenge_1_abcd", sub.ChallengeID)
	assert.True(t, sub.OverallPassed)
	assert.Equal(t, int64(90000), sub.SubmissionTime)
}

func TestNewCodingSubmission_NoResults(t *testing.T) {
	now := time.Now()
	sub := NewCodingSubmission("", "python", "c", nil, now, now)
	assert.False(t, sub.OverallPassed)
}

func TestDecodeChallenge_WeakTypes(t *testing.T) {
	c, err := DecodeChallenge(map[string]any{
		"question_id":  float64(7),
		"problem_name": "Stock Span",
		"constraints":  "n <= 1000",
		"example": map[string]any{
			"input":       []any{float64(1), float64(2)},
			"output":      float64(3),
			"explanation": "sum",
		},
		"test_cases": []any{
			map[string]any{"input": "1 2", "expected_output": "3"},
		},
	})
	require.NoError(t, err)

	qid, ok := c.QuestionNumber()
	require.True(t, ok)
	assert.Equal(t, int64(7), qid)
	assert.Equal(t, []string{"n <= 1000"}, c.Constraints)
	require.Len(t, c.TestCases, 1)
	assert.Equal(t, "3", c.TestCases[0].ExpectedOutput)

	examples := c.Examples()
	require.Len(t, examples, 1)
	assert.Equal(t, "[1,2]", FormatValue(examples[0].Input))
	assert.Equal(t, "3", FormatValue(examples[0].Output))
}

func TestCodingChallenge_Statement(t *testing.T) {
	assert.Equal(t, "desc", (&CodingChallenge{ProblemDescription: "desc"}).Statement())
	assert.Equal(t, "stmt", (&CodingChallenge{ProblemStatement: "stmt"}).Statement())
	assert.Equal(t, "first", (&CodingChallenge{Problem: "first", ProblemStatement: "stmt"}).Statement())

	var nilChallenge *CodingChallenge
	assert.Equal(t, "No problem statement available", nilChallenge.Statement())
	assert.Equal(t, "Coding Challenge", nilChallenge.Title())
}

func TestCodingChallenge_FlatExamples(t *testing.T) {
	c := &CodingChallenge{
		ExampleInput:   "a",
		ExampleOutput:  "b",
		ExampleInput2:  "c",
		ExampleOutput2: "d",
	}
	examples := c.Examples()
	require.Len(t, examples, 2)
	assert.Equal(t, "a", examples[0].Input)
	assert.Equal(t, "d", examples[1].Output)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "plain", FormatValue("plain"))
	assert.Equal(t, `{"k":1}`, FormatValue(map[string]any{"k": 1}))
	assert.Equal(t, "true", FormatValue(true))
}

func TestWebSession(t *testing.T) {
	s := NewWebSession("+15551234567", RoleUser, time.Hour)

	assert.Len(t, s.ID, 32)
	assert.False(t, s.IsExpired())
	assert.False(t, s.IsAuthenticated())
	assert.Greater(t, s.TimeRemaining(), 59*time.Minute)
	assert.Equal(t, s.ID[:8]+"...", s.MaskedID())

	s.AccessToken = "token"
	assert.True(t, s.IsAuthenticated())

	s.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, s.IsExpired())
	assert.Equal(t, time.Duration(0), s.TimeRemaining())
}

func TestInterview_IsCompleted(t *testing.T) {
	assert.True(t, (&Interview{Status: InterviewCompleted}).IsCompleted())
	assert.True(t, (&Interview{Status: InterviewInProgress, EndedAt: "2024-01-01T10:00:00"}).IsCompleted())
	assert.False(t, (&Interview{Status: InterviewInProgress}).IsCompleted())
}

func TestFixtureSet(t *testing.T) {
	set := FixtureSet{Cases: []Fixture{{Input: "1", Expected: "2"}, {Input: "3", Expected: "4"}}}
	assert.Equal(t, []string{"1", "3"}, set.Inputs())
	assert.Equal(t, []string{"2", "4"}, set.Expected())
}

func TestDecodeChallenge_KeepsPartialRecord(t *testing.T) {
	c, err := DecodeChallenge(map[string]any{
		"problem_name": "Two Sum",
		"test_cases":   []any{"not a case"},
		"question_id":  map[string]any{"id": float64(3)},
	})
	require.Error(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Two Sum", c.Title())
	assert.Equal(t, map[string]any{"id": float64(3)}, c.Raw["question_id"])
	assert.Equal(t, `{"n":"<=10"}`, FormatValue(map[string]any{"n": "<=10"}))
}
