package models

// Language describes a supported solution language
type Language struct {
	Name     string `yaml:"name" json:"name"`         // "python"
	Label    string `yaml:"label" json:"label"`       // "Python 3"
	Judge0ID int    `yaml:"judge0_id" json:"judge0_id"`
	Image    string `yaml:"image" json:"image,omitempty"` // container image for local runs
	File     string `yaml:"file" json:"file,omitempty"`   // source file name inside the container
	Run      string `yaml:"run" json:"run,omitempty"`     // shell command executed with stdin attached
	Template string `yaml:"template" json:"template"`     // starter code shown in the editor
}

// Fixture is one stdin/expected-stdout pair
type Fixture struct {
	Input    string `yaml:"input" json:"input"`
	Expected string `yaml:"expected" json:"expected"`
}

// FixtureSet groups the fixtures used to judge one problem
type FixtureSet struct {
	Name    string    `yaml:"name" json:"name"`
	Problem string    `yaml:"problem" json:"problem"` // matched against the challenge problem_name
	Cases   []Fixture `yaml:"cases" json:"cases"`
}

// Inputs returns the stdin of every case in order
func (f *FixtureSet) Inputs() []string {
	out := make([]string, len(f.Cases))
	for i, c := range f.Cases {
		out[i] = c.Input
	}
	return out
}

// Expected returns the expected output of every case in order
func (f *FixtureSet) Expected() []string {
	out := make([]string, len(f.Cases))
	for i, c := range f.Cases {
		out[i] = c.Expected
	}
	return out
}
