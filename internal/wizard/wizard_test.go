package wizard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/interview-console/pkg/client"
)

type fakeBackend struct {
	uploadErr error
	uploaded  []string
	startErr  error

	standard *client.StartInterviewRequest
	enhanced *client.EnhancedInterviewRequest
}

func (f *fakeBackend) UploadResume(ctx context.Context, phone, filename string, file io.Reader) error {
	data, _ := io.ReadAll(file)
	f.uploaded = append(f.uploaded, phone+":"+filename+":"+string(data))
	return f.uploadErr
}

func (f *fakeBackend) StartInterview(ctx context.Context, req client.StartInterviewRequest) (*client.StartInterviewResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.standard = &req
	return &client.StartInterviewResponse{InterviewID: 17, InitialQuestion: "Tell me about yourself."}, nil
}

func (f *fakeBackend) StartEnhancedInterview(ctx context.Context, req client.EnhancedInterviewRequest) (*client.StartInterviewResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.enhanced = &req
	return &client.StartInterviewResponse{InterviewID: 18, InitialQuestion: "Let's talk Go."}, nil
}

type fakeCache map[int64]string

func (c fakeCache) SaveInitialQuestion(ctx context.Context, id int64, q string) error {
	c[id] = q
	return nil
}

func TestFocusWeights(t *testing.T) {
	tests := []struct {
		name    string
		areas   []string
		weights []int
	}{
		{"none", nil, nil},
		{"one", []string{"go"}, []int{100}},
		{"two", []string{"go", "sql"}, []int{50, 50}},
		{"three", []string{"go", "sql", "k8s"}, []int{34, 33, 33}},
		{"six", []string{"a", "b", "c", "d", "e", "f"}, []int{17, 17, 17, 17, 16, 16}},
		{"seven", []string{"a", "b", "c", "d", "e", "f", "g"}, []int{15, 15, 14, 14, 14, 14, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FocusWeights(tt.areas)
			var weights []int
			sum := 0
			for i, fa := range got {
				assert.Equal(t, tt.areas[i], fa.Skill)
				weights = append(weights, fa.Weight)
				sum += fa.Weight
			}
			assert.Equal(t, tt.weights, weights)
			if len(tt.areas) > 0 {
				assert.Equal(t, 100, sum)
			}
		})
	}
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL", "gRPC"}, ParseSkills(" Go, SQL,, gRPC ,"))
	assert.Nil(t, ParseSkills("  "))
}

func TestNext_RequiresRoleAndSkills(t *testing.T) {
	w := New("+1", &fakeBackend{}, nil)
	w.SetDetails(Details{Role: "Engineer", Skills: "  "})

	assert.ErrorIs(t, w.Next(), ErrDetailsRequired)
	assert.Equal(t, MsgDetailsRequired, w.Message())
	assert.Equal(t, StepDetails, w.Step())

	w.SetDetails(Details{Role: "Engineer", Skills: "Go"})
	require.NoError(t, w.Next())
	assert.Empty(t, w.Message())
	assert.Equal(t, StepResume, w.Step())
	assert.Equal(t, "Behavioral", w.Details().InterviewType)
}

func TestNext_Validation(t *testing.T) {
	w := New("+1", &fakeBackend{}, nil)
	w.SetDetails(Details{Role: "Engineer", Skills: "Go", InterviewType: "Casual"})
	assert.ErrorIs(t, w.Next(), ErrInvalidType)

	w.SetDetails(Details{Role: "Engineer", Skills: "Go, SQL", FocusAreas: []string{"rust"}})
	assert.ErrorIs(t, w.Next(), ErrFocusNotSkill)
	assert.Equal(t, MsgFocusNotSkill, w.Message())

	w.SetDetails(Details{Role: "Engineer", Skills: "Go, SQL", FocusAreas: []string{"sql"}})
	assert.NoError(t, w.Next())
}

func TestUploadResume(t *testing.T) {
	api := &fakeBackend{uploadErr: errors.New("413")}
	w := New("+1", api, nil)
	assert.ErrorIs(t, w.UploadResume(context.Background(), "cv.pdf", strings.NewReader("x")), ErrWrongStep)

	w.SetDetails(Details{Role: "Engineer", Skills: "Go"})
	require.NoError(t, w.Next())

	err := w.UploadResume(context.Background(), "cv.pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, MsgUploadFailed, w.Message())
	assert.Equal(t, StepResume, w.Step())

	api.uploadErr = nil
	require.NoError(t, w.UploadResume(context.Background(), "cv.pdf", strings.NewReader("pdf")))
	assert.Equal(t, StepDuration, w.Step())
	assert.Empty(t, w.Message())
	assert.Equal(t, []string{"+1:cv.pdf:pdf", "+1:cv.pdf:pdf"}, api.uploaded)
}

func TestSetDuration(t *testing.T) {
	w := New("+1", &fakeBackend{}, nil)
	assert.Equal(t, 10, w.Duration())
	assert.ErrorIs(t, w.SetDuration(7), ErrInvalidDuration)
	require.NoError(t, w.SetDuration(20))
	assert.Equal(t, 20, w.Duration())
}

func toDuration(t *testing.T, w *Wizard, d Details) {
	t.Helper()
	w.SetDetails(d)
	require.NoError(t, w.Next())
	require.NoError(t, w.SkipResume())
	require.Equal(t, StepDuration, w.Step())
}

func TestStart_Standard(t *testing.T) {
	api := &fakeBackend{}
	cache := fakeCache{}
	w := New("+1", api, cache)
	_, err := w.Start(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)

	toDuration(t, w, Details{Role: " Engineer ", Skills: "Go, SQL", InterviewType: "Technical"})
	require.NoError(t, w.SetDuration(15))

	res, err := w.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{InterviewID: 17, InitialQuestion: "Tell me about yourself.", Route: "/interview/17"}, res)
	assert.Nil(t, api.enhanced)
	assert.Equal(t, &client.StartInterviewRequest{
		PhoneNumber:              "+1",
		InterviewDurationMinutes: 15,
		Role:                     "Engineer",
		Skills:                   "Go, SQL",
		InterviewType:            "Technical",
	}, api.standard)
	assert.Equal(t, "Tell me about yourself.", cache[17])
}

func TestStart_Enhanced(t *testing.T) {
	api := &fakeBackend{}
	w := New("+1", api, nil)
	toDuration(t, w, Details{
		Role:       "Engineer",
		Skills:     "Go, SQL, Kubernetes",
		Persona:    "friendly staff engineer",
		Company:    "Acme",
		FocusAreas: []string{"Go", "SQL", "Kubernetes"},
	})

	res, err := w.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/interview/18", res.Route)
	assert.Nil(t, api.standard)
	require.NotNil(t, api.enhanced)
	assert.Equal(t, "Acme", api.enhanced.Company)
	assert.Equal(t, "friendly staff engineer", api.enhanced.Persona)
	assert.Equal(t, 10, api.enhanced.InterviewDurationMinutes)
	assert.Equal(t, []client.FocusArea{
		{Skill: "Go", Weight: 34},
		{Skill: "SQL", Weight: 33},
		{Skill: "Kubernetes", Weight: 33},
	}, api.enhanced.FocusAreas)
}

func TestStart_Failure(t *testing.T) {
	api := &fakeBackend{startErr: errors.New("500")}
	cache := fakeCache{}
	w := New("+1", api, cache)
	toDuration(t, w, Details{Role: "Engineer", Skills: "Go"})

	_, err := w.Start(context.Background())
	assert.ErrorIs(t, err, ErrStartFailed)
	assert.Equal(t, MsgStartFailed, w.Message())
	assert.Empty(t, cache)
}

func TestBack(t *testing.T) {
	w := New("+1", &fakeBackend{}, nil)
	w.Back()
	assert.Equal(t, StepDetails, w.Step())

	toDuration(t, w, Details{Role: "Engineer", Skills: "Go"})
	w.Back()
	assert.Equal(t, StepResume, w.Step())
}
