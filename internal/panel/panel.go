// Package panel holds the state of the coding-challenge editor shown during an interview.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/terra-clan/interview-console/internal/catalog"
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/models"
)

// Common errors
var (
	ErrEmptyCode       = errors.New("please write some code first")
	ErrBusy            = errors.New("code is already running")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrNoFixtures      = errors.New("no test cases available for this challenge")
)

// Outcome summarises the latest run
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
)

// Catalog supplies starter code and fixtures
type Catalog interface {
	Language(name string) *models.Language
	Template(language string) string
	FixturesFor(ch *models.CodingChallenge) *models.FixtureSet
}

// Panel is the editor for one detected challenge
type Panel struct {
	mu          sync.Mutex
	runner      judge.Runner
	catalog     Catalog
	challenge   *models.CodingChallenge
	challengeID string
	language    string
	code        string
	results     []models.TestCaseResult
	running     bool
	openedAt    time.Time
	now         func() time.Time
}

// New opens a panel on the default language with its starter code
func New(ch *models.CodingChallenge, challengeID string, runner judge.Runner, cat Catalog) *Panel {
	p := &Panel{
		runner:      runner,
		catalog:     cat,
		challenge:   ch,
		challengeID: challengeID,
		language:    catalog.DefaultLanguage,
		now:         time.Now,
	}
	p.code = cat.Template(p.language)
	p.openedAt = p.now()
	return p
}

// Challenge returns the problem shown in the panel
func (p *Panel) Challenge() *models.CodingChallenge {
	return p.challenge
}

// ChallengeID returns the locally generated challenge id
func (p *Panel) ChallengeID() string {
	return p.challengeID
}

// Language returns the selected language
func (p *Panel) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language
}

// SetLanguage switches language and resets the code to its template
func (p *Panel) SetLanguage(name string) error {
	if p.catalog.Language(name) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.language = name
	p.code = p.catalog.Template(name)
	return nil
}

// Code returns the current editor contents
func (p *Panel) Code() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

// SetCode replaces the editor contents
func (p *Panel) SetCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = code
}

// Running reports whether a run is in flight
func (p *Panel) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Results returns a copy of the latest run results
func (p *Panel) Results() []models.TestCaseResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.TestCaseResult(nil), p.results...)
}

// Run judges the current code against the challenge fixtures.
// Results replace the previous run only on success.
func (p *Panel) Run(ctx context.Context) ([]models.TestCaseResult, error) {
	p.mu.Lock()
	if strings.TrimSpace(p.code) == "" {
		p.mu.Unlock()
		return nil, ErrEmptyCode
	}
	if p.running {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.running = true
	code, language := p.code, p.language
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	fixtures := p.catalog.FixturesFor(p.challenge)
	if fixtures == nil || len(fixtures.Cases) == 0 {
		return nil, ErrNoFixtures
	}

	results, err := p.runner.Submit(ctx, code, language, fixtures.Inputs(), fixtures.Expected())
	if err != nil {
		return nil, fmt.Errorf("failed to run code: %w", err)
	}

	p.mu.Lock()
	p.results = results
	p.mu.Unlock()

	return results, nil
}

// Submission builds the submission from the latest results
func (p *Panel) Submission() (*models.CodingSubmission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.TrimSpace(p.code) == "" {
		return nil, ErrEmptyCode
	}
	results := append([]models.TestCaseResult(nil), p.results...)
	return models.NewCodingSubmission(p.code, p.language, p.challengeID, results, p.openedAt, p.now()), nil
}

// Passed returns the number of passing cases in the latest run
func (p *Panel) Passed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.CountPassed(p.results)
}

// Total returns the number of cases in the latest run
func (p *Panel) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results)
}

// Overall summarises the latest run
func (p *Panel) Overall() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case len(p.results) == 0:
		return OutcomePending
	case models.AllPassed(p.results):
		return OutcomePassed
	default:
		return OutcomeFailed
	}
}
