// Package wizard collects interview settings in three steps and starts the session.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/terra-clan/interview-console/pkg/client"
)

// Step is a wizard page
type Step int

const (
	StepDetails Step = iota + 1
	StepResume
	StepDuration
)

// Interview types and durations offered by the wizard
var (
	InterviewTypes = []string{"Behavioral", "Technical", "Mixed"}
	Durations      = []int{5, 10, 15, 20}
)

const defaultDuration = 10

// User-facing messages
const (
	MsgDetailsRequired = "Please fill out both the role and skills."
	MsgFocusNotSkill   = "Focus areas must be chosen from your skills."
	MsgUploadFailed    = "Failed to upload resume. Please try again or skip."
	MsgStartFailed     = "Could not start the interview. Please check backend logs."
)

// Common errors
var (
	ErrDetailsRequired = errors.New("role and skills are required")
	ErrFocusNotSkill   = errors.New("focus area is not one of the skills")
	ErrInvalidType     = errors.New("unknown interview type")
	ErrInvalidDuration = errors.New("unsupported interview duration")
	ErrWrongStep       = errors.New("not available at this step")
	ErrUploadFailed    = errors.New("resume upload failed")
	ErrStartFailed     = errors.New("failed to start interview")
)

// Backend is the part of the API client the wizard uses
type Backend interface {
	UploadResume(ctx context.Context, phoneNumber, filename string, file io.Reader) error
	StartInterview(ctx context.Context, req client.StartInterviewRequest) (*client.StartInterviewResponse, error)
	StartEnhancedInterview(ctx context.Context, req client.EnhancedInterviewRequest) (*client.StartInterviewResponse, error)
}

// QuestionCache keeps the opening question until the chat view loads it
type QuestionCache interface {
	SaveInitialQuestion(ctx context.Context, interviewID int64, question string) error
}

// Details is the first wizard step
type Details struct {
	Role          string   `json:"role"`
	Skills        string   `json:"skills"`
	InterviewType string   `json:"interviewType"`
	Persona       string   `json:"persona,omitempty"`
	Company       string   `json:"company,omitempty"`
	FocusAreas    []string `json:"focusAreas,omitempty"`
}

// Result describes a started interview
type Result struct {
	InterviewID     int64  `json:"interviewId"`
	InitialQuestion string `json:"initialQuestion"`
	Route           string `json:"route"`
}

// Wizard is the setup state machine for one candidate
type Wizard struct {
	phone string
	api   Backend
	cache QuestionCache

	step     Step
	details  Details
	duration int
	message  string
}

// New starts a wizard at the details step. cache may be nil.
func New(phone string, api Backend, cache QuestionCache) *Wizard {
	return &Wizard{
		phone:    phone,
		api:      api,
		cache:    cache,
		step:     StepDetails,
		details:  Details{InterviewType: InterviewTypes[0]},
		duration: defaultDuration,
	}
}

// Step returns the current page
func (w *Wizard) Step() Step {
	return w.step
}

// Message returns the error text shown on the current page, if any
func (w *Wizard) Message() string {
	return w.message
}

// Details returns the details entered so far
func (w *Wizard) Details() Details {
	return w.details
}

// Duration returns the selected length in minutes
func (w *Wizard) Duration() int {
	return w.duration
}

// SetDetails records the first page
func (w *Wizard) SetDetails(d Details) {
	if d.InterviewType == "" {
		d.InterviewType = InterviewTypes[0]
	}
	w.details = d
}

// Next validates the details page and moves to the resume page
func (w *Wizard) Next() error {
	if w.step != StepDetails {
		return ErrWrongStep
	}
	d := w.details
	if strings.TrimSpace(d.Role) == "" || strings.TrimSpace(d.Skills) == "" {
		w.message = MsgDetailsRequired
		return ErrDetailsRequired
	}
	if !slices.Contains(InterviewTypes, d.InterviewType) {
		return fmt.Errorf("%w: %s", ErrInvalidType, d.InterviewType)
	}
	skills := ParseSkills(d.Skills)
	for _, area := range d.FocusAreas {
		if !containsFold(skills, area) {
			w.message = MsgFocusNotSkill
			return fmt.Errorf("%w: %s", ErrFocusNotSkill, area)
		}
	}

	w.message = ""
	w.step = StepResume
	return nil
}

// Back returns to the previous page
func (w *Wizard) Back() {
	if w.step > StepDetails {
		w.step--
		w.message = ""
	}
}

// SkipResume continues without a resume
func (w *Wizard) SkipResume() error {
	if w.step != StepResume {
		return ErrWrongStep
	}
	w.message = ""
	w.step = StepDuration
	return nil
}

// UploadResume sends the resume and continues. On failure the wizard stays
// on the resume page so the candidate can retry or skip.
func (w *Wizard) UploadResume(ctx context.Context, filename string, file io.Reader) error {
	if w.step != StepResume {
		return ErrWrongStep
	}
	w.message = ""
	if err := w.api.UploadResume(ctx, w.phone, filename, file); err != nil {
		slog.Error("failed to upload resume", "error", err)
		w.message = MsgUploadFailed
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	w.step = StepDuration
	return nil
}

// SetDuration selects one of Durations
func (w *Wizard) SetDuration(minutes int) error {
	if !slices.Contains(Durations, minutes) {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}
	w.duration = minutes
	return nil
}

// Start creates the interview. Focus areas select the enhanced start.
func (w *Wizard) Start(ctx context.Context) (*Result, error) {
	if w.step != StepDuration {
		return nil, ErrWrongStep
	}
	w.message = ""

	base := client.StartInterviewRequest{
		PhoneNumber:              w.phone,
		InterviewDurationMinutes: w.duration,
		Role:                     strings.TrimSpace(w.details.Role),
		Skills:                   strings.TrimSpace(w.details.Skills),
		InterviewType:            w.details.InterviewType,
	}

	var (
		resp *client.StartInterviewResponse
		err  error
	)
	if len(w.details.FocusAreas) > 0 {
		resp, err = w.api.StartEnhancedInterview(ctx, client.EnhancedInterviewRequest{
			StartInterviewRequest: base,
			Persona:               strings.TrimSpace(w.details.Persona),
			Company:               strings.TrimSpace(w.details.Company),
			FocusAreas:            FocusWeights(w.details.FocusAreas),
		})
	} else {
		resp, err = w.api.StartInterview(ctx, base)
	}
	if err != nil {
		slog.Error("failed to start interview", "error", err)
		w.message = MsgStartFailed
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	if w.cache != nil {
		if err := w.cache.SaveInitialQuestion(ctx, resp.InterviewID, resp.InitialQuestion); err != nil {
			w.message = MsgStartFailed
			return nil, fmt.Errorf("failed to cache initial question: %w", err)
		}
	}

	slog.Info("interview started", "interview_id", resp.InterviewID, "enhanced", len(w.details.FocusAreas) > 0)
	return &Result{
		InterviewID:     resp.InterviewID,
		InitialQuestion: resp.InitialQuestion,
		Route:           fmt.Sprintf("/interview/%d", resp.InterviewID),
	}, nil
}

// FocusWeights splits 100 percent equally across areas. The remainder goes
// one point at a time to the leading areas, so three areas get 34/33/33.
func FocusWeights(areas []string) []client.FocusArea {
	if len(areas) == 0 {
		return nil
	}
	base := 100 / len(areas)
	rem := 100 % len(areas)

	out := make([]client.FocusArea, len(areas))
	for i, a := range areas {
		w := base
		if i < rem {
			w++
		}
		out[i] = client.FocusArea{Skill: strings.TrimSpace(a), Weight: w}
	}
	return out
}

// ParseSkills splits a comma-separated skills list
func ParseSkills(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
