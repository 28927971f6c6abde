// Package judge runs candidate solutions against stdin/stdout fixtures.
package judge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/terra-clan/interview-console/internal/models"
)

// Common errors
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrFixtureMismatch     = errors.New("inputs and expected outputs differ in length")
	ErrPollTimeout         = errors.New("timeout waiting for code execution result")
)

// Runner executes one solution against every fixture.
// Whole-batch problems are returned as an error before anything runs;
// per-case failures are reported inside the results.
type Runner interface {
	Submit(ctx context.Context, code, language string, inputs, expected []string) ([]models.TestCaseResult, error)
}

// DefaultLanguageIDs maps editor languages to Judge0 language ids
var DefaultLanguageIDs = map[string]int{
	"python":     109,
	"javascript": 102,
	"java":       91,
	"cpp":        105,
	"c":          103,
	"csharp":     51,
	"go":         107,
	"rust":       108,
	"php":        98,
	"ruby":       72,
	"swift":      83,
	"kotlin":     111,
	"typescript": 101,
}

// SupportedLanguages returns the language names of a table in sorted order
func SupportedLanguages(ids map[string]int) []string {
	out := make([]string, 0, len(ids))
	for name := range ids {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NormalizeOutput trims surrounding whitespace and converts CRLF to LF
func NormalizeOutput(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
}

// OutputsMatch compares normalized outputs ignoring case
func OutputsMatch(actual, expected string) bool {
	return strings.EqualFold(NormalizeOutput(actual), NormalizeOutput(expected))
}

// UnifiedDiff renders expected vs actual as a unified diff, empty when they match
func UnifiedDiff(expected, actual string) string {
	if OutputsMatch(actual, expected) {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(NormalizeOutput(expected)),
		B:        difflib.SplitLines(NormalizeOutput(actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// validateBatch rejects a batch before any case is executed
func validateBatch(language string, supported func(string) bool, inputs, expected []string) error {
	if !supported(language) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
	if len(inputs) != len(expected) {
		return fmt.Errorf("%w: %d inputs, %d expected", ErrFixtureMismatch, len(inputs), len(expected))
	}
	return nil
}

// caseResult builds the result for a case that produced output
func caseResult(input, expected, stdout string, timeMs, memoryKB float64) models.TestCaseResult {
	actual := NormalizeOutput(stdout)
	r := models.TestCaseResult{
		Input:          input,
		ExpectedOutput: expected,
		ActualOutput:   actual,
		Passed:         OutputsMatch(actual, expected),
		ExecutionTime:  timeMs,
		MemoryUsage:    memoryKB,
	}
	if !r.Passed {
		r.Diff = UnifiedDiff(expected, actual)
	}
	return r
}

// errorResult builds the failed result for a case that could not be executed
func errorResult(input, expected string, err error) models.TestCaseResult {
	return models.TestCaseResult{
		Input:          input,
		ExpectedOutput: expected,
		ActualOutput:   "Error: " + err.Error(),
		Passed:         false,
	}
}
