package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ChallengeExample is a worked example embedded in a challenge payload
type ChallengeExample struct {
	Input       any    `mapstructure:"input" json:"input,omitempty"`
	Output      any    `mapstructure:"output" json:"output,omitempty"`
	Explanation string `mapstructure:"explanation" json:"explanation,omitempty"`
}

// ChallengeTestCase is an input/expected-output pair shipped with a challenge
type ChallengeTestCase struct {
	Input          any `mapstructure:"input" json:"input"`
	ExpectedOutput any `mapstructure:"expected_output" json:"expected_output"`
}

// CodingChallenge is the loosely-typed problem record an interviewer embeds in a chat reply.
// No field is guaranteed to be present; use the accessor methods for rendering.
type CodingChallenge struct {
	QuestionID              *int64              `mapstructure:"question_id" json:"question_id,omitempty"`
	QuestionIDCamel         *int64              `mapstructure:"questionId" json:"-"`
	ProblemName             string              `mapstructure:"problem_name" json:"problem_name,omitempty"`
	Problem                 string              `mapstructure:"problem" json:"problem,omitempty"`
	ProblemDescription      string              `mapstructure:"problem_description" json:"problem_description,omitempty"`
	ProblemStatement        string              `mapstructure:"problem_statement" json:"problem_statement,omitempty"`
	FunctionSignature       string              `mapstructure:"function_signature" json:"function_signature,omitempty"`
	InputFormat             string              `mapstructure:"input_format" json:"input_format,omitempty"`
	OutputFormat            string              `mapstructure:"output_format" json:"output_format,omitempty"`
	Example                 *ChallengeExample   `mapstructure:"example" json:"example,omitempty"`
	ExampleInput            any                 `mapstructure:"example_input" json:"example_input,omitempty"`
	ExampleOutput           any                 `mapstructure:"example_output" json:"example_output,omitempty"`
	ExampleInput2           any                 `mapstructure:"example_input2" json:"example_input2,omitempty"`
	ExampleOutput2          any                 `mapstructure:"example_output2" json:"example_output2,omitempty"`
	Constraints             []string            `mapstructure:"constraints" json:"constraints,omitempty"`
	ExpectedTimeComplexity  string              `mapstructure:"expected_time_complexity" json:"expected_time_complexity,omitempty"`
	ExpectedSpaceComplexity string              `mapstructure:"expected_space_complexity" json:"expected_space_complexity,omitempty"`
	TestCases               []ChallengeTestCase `mapstructure:"test_cases" json:"test_cases,omitempty"`

	// Raw keeps keys this struct does not model
	Raw map[string]any `mapstructure:",remain" json:"extra,omitempty"`
}

// questionIDKeys are the payload keys holding the backend question id
var questionIDKeys = []string{"question_id", "questionId"}

// DecodeChallenge maps a parsed JSON object onto a CodingChallenge.
// Weak typing lets a single constraint string become a one-element list
// and numeric question ids arrive as JSON floats. Values of an unexpected
// shape are coerced where possible: objects in text fields become compact
// JSON, a bare string example becomes its explanation, and a question id
// that is not a number moves to Raw. Any field that still cannot be decoded
// is left empty; the partial record is returned together with the error.
func DecodeChallenge(payload map[string]any) (*CodingChallenge, error) {
	input := make(map[string]any, len(payload))
	for k, v := range payload {
		input[k] = v
	}
	unparsed := map[string]any{}
	for _, key := range questionIDKeys {
		if v, ok := input[key]; ok && !isQuestionID(v) {
			unparsed[key] = v
			delete(input, key)
		}
	}

	var c CodingChallenge
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			exampleFromText,
			textFromComposite,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	decodeErr := decoder.Decode(input)

	if len(unparsed) > 0 {
		if c.Raw == nil {
			c.Raw = make(map[string]any, len(unparsed))
		}
		for k, v := range unparsed {
			c.Raw[k] = v
		}
	}
	if decodeErr != nil {
		return &c, fmt.Errorf("failed to decode challenge: %w", decodeErr)
	}
	return &c, nil
}

func isQuestionID(v any) bool {
	switch t := v.(type) {
	case nil, float64, int, int64, json.Number:
		return true
	case string:
		_, err := strconv.ParseInt(t, 10, 64)
		return err == nil
	default:
		return false
	}
}

var exampleType = reflect.TypeOf(ChallengeExample{})

// exampleFromText keeps a prose example as the explanation
func exampleFromText(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != exampleType && to != reflect.PointerTo(exampleType) {
		return data, nil
	}
	if from.Kind() == reflect.Map {
		return data, nil
	}
	return map[string]any{"explanation": FormatValue(data)}, nil
}

// textFromComposite renders objects and lists bound for a text field as JSON
func textFromComposite(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return FormatValue(data), nil
	}
	return data, nil
}

// QuestionNumber returns the backend question id carried by the payload, if any
func (c *CodingChallenge) QuestionNumber() (int64, bool) {
	if c == nil {
		return 0, false
	}
	if c.QuestionID != nil {
		return *c.QuestionID, true
	}
	if c.QuestionIDCamel != nil {
		return *c.QuestionIDCamel, true
	}
	return 0, false
}

// Title returns the problem name or a generic heading
func (c *CodingChallenge) Title() string {
	if c == nil || strings.TrimSpace(c.ProblemName) == "" {
		return "Coding Challenge"
	}
	return c.ProblemName
}

// Statement returns the first statement field present
func (c *CodingChallenge) Statement() string {
	if c != nil {
		for _, s := range []string{c.Problem, c.ProblemDescription, c.ProblemStatement} {
			if strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return "No problem statement available"
}

// Examples returns the worked examples in display order, skipping absent ones
func (c *CodingChallenge) Examples() []ChallengeExample {
	if c == nil {
		return nil
	}
	var out []ChallengeExample
	if c.Example != nil {
		out = append(out, *c.Example)
	}
	if c.ExampleInput != nil {
		out = append(out, ChallengeExample{Input: c.ExampleInput, Output: c.ExampleOutput})
	}
	if c.ExampleInput2 != nil {
		out = append(out, ChallengeExample{Input: c.ExampleInput2, Output: c.ExampleOutput2})
	}
	return out
}

// FormatValue renders a loosely-typed payload value as display text.
// Strings pass through; anything else is shown as compact JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}
