package challenge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/interview-console/internal/models"
)

// Markers framing a challenge payload inside an interviewer reply
const (
	StartMarker = "[START_CODING_CHALLENGE]"
	EndMarker   = "[END_CODING_CHALLENGE]"
)

// fencedJSON matches a fenced code block at the very start of the input
var fencedJSON = regexp.MustCompile("^\\s*```(?:json)?[ \\t]*\\r?\\n?([\\s\\S]*?)```")

// Detection is the result of scanning one reply
type Detection struct {
	// Display is the text shown in the transcript
	Display string
	// Challenge is nil when no well-formed payload was found
	Challenge *models.CodingChallenge
	// ID is the locally generated challenge id, empty when Challenge is nil
	ID string
}

// Found reports whether a challenge was extracted
func (d Detection) Found() bool {
	return d.Challenge != nil
}

// Detector extracts embedded coding challenges from chat replies
type Detector struct {
	now func() time.Time
}

// NewDetector creates a detector using the wall clock for ids
func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// Detect scans text for a challenge payload.
//
// Two framings are recognised: a JSON object strictly between the start
// and end markers, or, when no end marker follows the start marker, a
// fenced JSON block immediately after the start marker. Anything else,
// including unparsable JSON, is "no challenge" and the text is displayed as is.
func (d *Detector) Detect(text string) Detection {
	start := strings.Index(text, StartMarker)
	if start < 0 {
		return Detection{Display: text}
	}

	rest := text[start+len(StartMarker):]
	var raw string
	if end := strings.Index(rest, EndMarker); end >= 0 {
		raw = rest[:end]
	} else {
		m := fencedJSON.FindStringSubmatch(rest)
		if m == nil {
			return Detection{Display: text}
		}
		raw = m[1]
	}

	ch, err := parsePayload(raw)
	if err != nil {
		return Detection{Display: text}
	}

	return Detection{
		Display:   strings.TrimSpace(text[:start]),
		Challenge: ch,
		ID:        d.newID(),
	}
}

// Detect scans text with a default detector
func Detect(text string) Detection {
	return NewDetector().Detect(text)
}

func parsePayload(raw string) (*models.CodingChallenge, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse challenge JSON: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("challenge payload is null")
	}
	ch, err := models.DecodeChallenge(payload)
	if ch == nil {
		return nil, err
	}
	if err != nil {
		slog.Debug("challenge payload partially decoded", "error", err)
	}
	return ch, nil
}

// newID returns a time-based id with a random suffix
func (d *Detector) newID() string {
	return fmt.Sprintf("challenge_%d_%s", d.now().UnixMilli(), uuid.NewString()[:8])
}
