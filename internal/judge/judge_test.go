package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOutput(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeOutput("  a\r\nb\r\n"))
	assert.Equal(t, "", NormalizeOutput("\n\t "))
}

func TestOutputsMatch(t *testing.T) {
	tests := []struct {
		actual, expected string
		want             bool
	}{
		{"7", "7", true},
		{"7\n", " 7 ", true},
		{"Yes", "yes", true},
		{"1\r\n2", "1\n2", true},
		{"1 2", "1  2", false},
		{"", "0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputsMatch(tt.actual, tt.expected), "%q vs %q", tt.actual, tt.expected)
	}
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, UnifiedDiff("same", "SAME"))

	diff := UnifiedDiff("1\n2\n3", "1\n5\n3")
	assert.Contains(t, diff, "--- expected")
	assert.Contains(t, diff, "+++ actual")
	assert.Contains(t, diff, "-2")
	assert.Contains(t, diff, "+5")
}

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages(DefaultLanguageIDs)
	assert.Len(t, langs, 13)
	assert.Equal(t, "c", langs[0])
	assert.Equal(t, 109, DefaultLanguageIDs["python"])
}
