package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/interview-console/internal/models"
)

func TestTable_AlignsWideRunes(t *testing.T) {
	tb := newTable("NAME", "ROLE")
	tb.add("田中", "Backend")
	tb.add("Ann", "SRE")

	var buf bytes.Buffer
	tb.render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	// "田中" is four columns wide, like "NAME"
	assert.Equal(t, "NAME  ROLE", lines[0])
	assert.Equal(t, "----  -------", lines[1])
	assert.Equal(t, "田中  Backend", lines[2])
	assert.Equal(t, "Ann   SRE", lines[3])
}

func TestTable_TruncatesLongCells(t *testing.T) {
	tb := newTable("SKILLS")
	tb.add(strings.Repeat("x", 50))

	var buf bytes.Buffer
	tb.render(&buf)
	assert.Contains(t, buf.String(), strings.Repeat("x", maxCellWidth-3)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", maxCellWidth))
}

func TestRenderInterviews(t *testing.T) {
	var buf bytes.Buffer
	renderInterviews(&buf, nil, false)
	assert.Equal(t, "No interviews yet.\n", buf.String())

	buf.Reset()
	renderInterviews(&buf, []models.Interview{
		{ID: 1, Role: "Backend", Status: models.InterviewCompleted, InterviewDurationMinutes: 10, User: &models.InterviewUser{PhoneNumber: "+15550100"}},
		{ID: 2, Role: "SRE", Status: models.InterviewInProgress},
	}, true)

	out := buf.String()
	assert.Contains(t, out, "CANDIDATE")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "in progress")
	assert.Contains(t, out, "+15550100")
}

func TestParseYears(t *testing.T) {
	n, err := parseYears(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = parseYears("-1")
	assert.Error(t, err)
	_, err = parseYears("four")
	assert.Error(t, err)
}
