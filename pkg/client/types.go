package client

import "github.com/terra-clan/interview-console/internal/models"

// AuthResponse is returned by OTP verification, registration, login and refresh
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	IsNewUser    bool   `json:"isNewUser,omitempty"`
	Message      string `json:"message,omitempty"`
}

// RegisterRequest creates a candidate profile
type RegisterRequest struct {
	PhoneNumber       string `json:"phoneNumber"`
	FullName          string `json:"fullName"`
	Profession        string `json:"profession"`
	YearsOfExperience int    `json:"yearsOfExperience"`
}

// ProfileUpdate changes profile fields; nil fields are left alone
type ProfileUpdate struct {
	FullName          *string `json:"fullName,omitempty"`
	Profession        *string `json:"profession,omitempty"`
	YearsOfExperience *int    `json:"yearsOfExperience,omitempty"`
}

// StartInterviewRequest starts a standard session
type StartInterviewRequest struct {
	PhoneNumber              string `json:"phoneNumber,omitempty"`
	InterviewDurationMinutes int    `json:"interviewDurationMinutes"`
	Role                     string `json:"role"`
	Skills                   string `json:"skills"`
	InterviewType            string `json:"interviewType"`
}

// FocusArea is one weighted skill; weights across a request sum to 100
type FocusArea struct {
	Skill  string `json:"skill"`
	Weight int    `json:"weight"`
}

// EnhancedInterviewRequest starts a session with persona, company and weighted focus areas
type EnhancedInterviewRequest struct {
	StartInterviewRequest
	Persona    string      `json:"persona,omitempty"`
	Company    string      `json:"company,omitempty"`
	FocusAreas []FocusArea `json:"focusAreas"`
}

// StartInterviewResponse carries the new session id and opening question
type StartInterviewResponse struct {
	InterviewID     int64  `json:"interviewId"`
	InitialQuestion string `json:"initialQuestion"`
}

// CodingSolutionRequest reports a coding submission for the active question
type CodingSolutionRequest struct {
	Code          string                  `json:"code"`
	Language      string                  `json:"language"`
	QuestionID    int64                   `json:"questionId"`
	PassedTests   int                     `json:"passedTests"`
	TotalTests    int                     `json:"totalTests"`
	TestResults   []models.TestCaseResult `json:"testResults"`
	OverallPassed bool                    `json:"overallPassed"`
}
