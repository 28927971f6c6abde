package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// RunForm walks the candidate through all three steps in the terminal and
// starts the interview. A failed resume upload re-asks for the file.
func RunForm(ctx context.Context, w *Wizard, in io.Reader, out io.Writer) (*Result, error) {
	run := func(groups ...*huh.Group) error {
		return RunGroups(ctx, in, out, groups...)
	}

	var (
		role, skills, persona, company string
		interviewType                  = InterviewTypes[0]
		focus                          []string
	)
	typeOptions := make([]huh.Option[string], 0, len(InterviewTypes))
	for _, t := range InterviewTypes {
		typeOptions = append(typeOptions, huh.NewOption(t, t))
	}

	err := run(huh.NewGroup(
		huh.NewInput().
			Title("Target role").
			Placeholder("Backend Engineer").
			Value(&role).
			Validate(required("role")),
		huh.NewInput().
			Title("Skills").
			Description("Comma-separated").
			Placeholder("Go, PostgreSQL, Kubernetes").
			Value(&skills).
			Validate(required("skills")),
		huh.NewSelect[string]().
			Title("Interview type").
			Options(typeOptions...).
			Value(&interviewType),
		huh.NewInput().
			Title("Interviewer persona").
			Description("Optional").
			Value(&persona),
		huh.NewInput().
			Title("Company").
			Description("Optional").
			Value(&company),
	))
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	if opts := ParseSkills(skills); len(opts) > 1 {
		err = run(huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Focus areas").
				Description("Optional; weights are split equally").
				Options(huh.NewOptions(opts...)...).
				Value(&focus),
		))
		if err != nil {
			return nil, fmt.Errorf("wizard failed: %w", err)
		}
	}

	w.SetDetails(Details{
		Role:          role,
		Skills:        skills,
		InterviewType: interviewType,
		Persona:       persona,
		Company:       company,
		FocusAreas:    focus,
	})
	if err := w.Next(); err != nil {
		return nil, errors.New(w.Message())
	}

	for w.Step() == StepResume {
		var path string
		if err := run(huh.NewGroup(
			huh.NewInput().
				Title("Resume file").
				Description("Leave empty to skip").
				Value(&path),
		)); err != nil {
			return nil, fmt.Errorf("wizard failed: %w", err)
		}

		path = strings.TrimSpace(path)
		if path == "" {
			_ = w.SkipResume()
			break
		}
		if err := uploadFile(ctx, w, path); err != nil {
			fmt.Fprintln(out, w.Message())
		}
	}

	durationOptions := make([]huh.Option[int], 0, len(Durations))
	for _, d := range Durations {
		durationOptions = append(durationOptions, huh.NewOption(strconv.Itoa(d)+" min", d))
	}
	duration := w.Duration()
	if err := run(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Duration").
			Options(durationOptions...).
			Value(&duration),
	)); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	if err := w.SetDuration(duration); err != nil {
		return nil, err
	}

	res, err := w.Start(ctx)
	if err != nil {
		return nil, errors.New(w.Message())
	}
	return res, nil
}

// RunGroups runs a form on in and out. Input that is not a terminal gets
// huh's line-based accessible mode.
func RunGroups(ctx context.Context, in io.Reader, out io.Writer, groups ...*huh.Group) error {
	return huh.NewForm(groups...).
		WithInput(in).
		WithOutput(out).
		WithAccessible(!IsTerminal(in)).
		RunWithContext(ctx)
}

// IsTerminal reports whether r is an interactive terminal
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func uploadFile(ctx context.Context, w *Wizard, path string) error {
	f, err := os.Open(path)
	if err != nil {
		w.message = MsgUploadFailed
		return err
	}
	defer f.Close()
	return w.UploadResume(ctx, filepath.Base(path), f)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
