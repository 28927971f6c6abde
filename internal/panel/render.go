package panel

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/terra-clan/interview-console/internal/models"
)

// cellWidth bounds result table columns
const cellWidth = 24

// RenderChallenge writes a plain-text view of a challenge. Absent fields are skipped.
func RenderChallenge(w io.Writer, ch *models.CodingChallenge) {
	title := ch.Title()
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", runewidth.StringWidth(title)))
	fmt.Fprintf(w, "%s\n", ch.Statement())

	if ch == nil {
		return
	}

	section(w, "Function signature", ch.FunctionSignature)
	section(w, "Input format", ch.InputFormat)
	section(w, "Output format", ch.OutputFormat)

	for i, ex := range ch.Examples() {
		fmt.Fprintf(w, "\nExample %d:\n", i+1)
		if in := models.FormatValue(ex.Input); in != "" {
			fmt.Fprintf(w, "  Input:  %s\n", in)
		}
		if out := models.FormatValue(ex.Output); out != "" {
			fmt.Fprintf(w, "  Output: %s\n", out)
		}
		if ex.Explanation != "" {
			fmt.Fprintf(w, "  Explanation: %s\n", ex.Explanation)
		}
	}

	if len(ch.Constraints) > 0 {
		fmt.Fprintf(w, "\nConstraints:\n")
		for _, c := range ch.Constraints {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}

	if ch.ExpectedTimeComplexity != "" || ch.ExpectedSpaceComplexity != "" {
		fmt.Fprintf(w, "\nExpected complexity:\n")
		if ch.ExpectedTimeComplexity != "" {
			fmt.Fprintf(w, "  Time:  %s\n", ch.ExpectedTimeComplexity)
		}
		if ch.ExpectedSpaceComplexity != "" {
			fmt.Fprintf(w, "  Space: %s\n", ch.ExpectedSpaceComplexity)
		}
	}
}

func section(w io.Writer, heading, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(w, "\n%s:\n  %s\n", heading, body)
}

// Render writes the challenge followed by the latest results
func (p *Panel) Render(w io.Writer) {
	RenderChallenge(w, p.challenge)
	fmt.Fprintf(w, "\nLanguage: %s\n", p.Language())
	if results := p.Results(); len(results) > 0 {
		fmt.Fprintln(w)
		RenderResults(w, results)
	}
}

// RenderResults writes a results table with a pass summary
func RenderResults(w io.Writer, results []models.TestCaseResult) {
	fmt.Fprintf(w, "%-4s %s %s %s %-6s %s\n", "#",
		pad("Input"), pad("Expected"), pad("Actual"), "Result", "Time")

	for i, r := range results {
		status := "FAIL"
		if r.Passed {
			status = "PASS"
		}
		fmt.Fprintf(w, "%-4d %s %s %s %-6s %.0fms\n", i+1,
			pad(r.Input), pad(r.ExpectedOutput), pad(r.ActualOutput), status, r.ExecutionTime)
	}

	passed := models.CountPassed(results)
	fmt.Fprintf(w, "\n%d/%d tests passed\n", passed, len(results))

	for i, r := range results {
		if r.Diff != "" {
			fmt.Fprintf(w, "\nCase %d diff:\n%s", i+1, r.Diff)
		}
	}
}

// pad fits s into a fixed display width, counting wide runes
func pad(s string) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	return runewidth.FillRight(runewidth.Truncate(s, cellWidth, "…"), cellWidth)
}
