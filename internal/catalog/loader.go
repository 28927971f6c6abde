package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/interview-console/internal/models"
)

// Loader holds the language table and fixture sets used by the coding panel
type Loader struct {
	mu        sync.RWMutex
	order     []string
	languages map[string]*models.Language
	fixtures  map[string]*models.FixtureSet
}

// NewLoader creates a loader seeded with the built-in catalog
func NewLoader() *Loader {
	l := &Loader{
		languages: make(map[string]*models.Language),
		fixtures:  make(map[string]*models.FixtureSet),
	}
	for _, lang := range builtinLanguages() {
		l.AddLanguage(lang)
	}
	l.AddFixtureSet(builtinFixtures())
	return l
}

// LoadFromDir loads languages.yaml and fixtures/*.yaml from dir.
// Entries override built-ins with the same name; broken files are skipped.
func (l *Loader) LoadFromDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("catalog directory: %w", err)
	}

	slog.Info("loading catalog from directory", "dir", dir)

	for _, name := range []string{"languages.yaml", "languages.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := l.LoadLanguagesFile(path); err != nil {
			slog.Warn("failed to load languages", "file", path, "error", err)
		}
		break
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, "fixtures", pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFixturesFile(file); err != nil {
			slog.Warn("failed to load fixtures", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("catalog loaded", "languages", len(l.Languages()), "fixture_sets", loaded)
	return nil
}

// LoadLanguagesFile loads a YAML list of languages
func (l *Loader) LoadLanguagesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var lf languagesFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, lang := range lf.Languages {
		if lang.Name == "" {
			return fmt.Errorf("language %d: name is required", i)
		}
		if lang.Label == "" {
			lang.Label = lang.Name
		}
		l.AddLanguage(lang)
	}
	return nil
}

// LoadFixturesFile loads one fixture set
func (l *Loader) LoadFixturesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var set models.FixtureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if set.Name == "" {
		base := filepath.Base(path)
		set.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if len(set.Cases) == 0 {
		return fmt.Errorf("fixture set %s has no cases", set.Name)
	}

	l.AddFixtureSet(&set)
	slog.Debug("fixture set loaded", "name", set.Name, "problem", set.Problem, "cases", len(set.Cases))
	return nil
}

// AddLanguage registers or replaces a language, keeping first-seen order
func (l *Loader) AddLanguage(lang models.Language) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.languages[lang.Name]; !ok {
		l.order = append(l.order, lang.Name)
	}
	l.languages[lang.Name] = &lang
}

// AddFixtureSet registers or replaces a fixture set
func (l *Loader) AddFixtureSet(set *models.FixtureSet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixtures[set.Name] = set
}

// Language returns a language by name
func (l *Loader) Language(name string) *models.Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.languages[name]
}

// Languages returns all languages in display order
func (l *Loader) Languages() []models.Language {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.Language, 0, len(l.order))
	for _, name := range l.order {
		result = append(result, *l.languages[name])
	}
	return result
}

// LanguageIDs returns the Judge0 id table for languages that define one
func (l *Loader) LanguageIDs() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make(map[string]int, len(l.languages))
	for name, lang := range l.languages {
		if lang.Judge0ID > 0 {
			ids[name] = lang.Judge0ID
		}
	}
	return ids
}

// Template returns the starter code for a language, empty if unknown
func (l *Loader) Template(name string) string {
	if lang := l.Language(name); lang != nil {
		return lang.Template
	}
	return ""
}

// FixtureSet returns a fixture set by name
func (l *Loader) FixtureSet(name string) *models.FixtureSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fixtures[name]
}

// FixturesFor resolves the cases to judge a challenge against: the payload's own
// test cases, then a fixture set whose problem matches the challenge title, then the default set.
func (l *Loader) FixturesFor(ch *models.CodingChallenge) *models.FixtureSet {
	if ch != nil && len(ch.TestCases) > 0 {
		set := &models.FixtureSet{Name: "challenge", Problem: ch.Title()}
		for _, tc := range ch.TestCases {
			set.Cases = append(set.Cases, models.Fixture{
				Input:    models.FormatValue(tc.Input),
				Expected: models.FormatValue(tc.ExpectedOutput),
			})
		}
		return set
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if ch != nil && strings.TrimSpace(ch.ProblemName) != "" {
		for _, set := range l.fixtures {
			if strings.EqualFold(strings.TrimSpace(set.Problem), strings.TrimSpace(ch.ProblemName)) {
				return set
			}
		}
	}
	return l.fixtures[DefaultFixtureSet]
}

// languagesFile represents the YAML structure of languages.yaml
type languagesFile struct {
	Languages []models.Language `yaml:"languages"`
}
