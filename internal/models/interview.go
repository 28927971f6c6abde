package models

// InterviewStatus as reported by the backend
type InterviewStatus string

const (
	InterviewInProgress InterviewStatus = "IN_PROGRESS"
	InterviewCompleted  InterviewStatus = "COMPLETED"
)

// InterviewUser is the owner summary attached to admin listings
type InterviewUser struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Interview is one past or running interview session.
// Timestamps are kept as the backend formats them; it does not always send a zone.
type Interview struct {
	ID                       int64           `json:"id"`
	Role                     string          `json:"role"`
	InterviewType            string          `json:"interviewType"`
	Status                   InterviewStatus `json:"status"`
	CreatedAt                string          `json:"createdAt"`
	EndedAt                  string          `json:"endedAt,omitempty"`
	Feedback                 string          `json:"feedback,omitempty"`
	InterviewDurationMinutes int             `json:"interviewDurationMinutes"`
	Skills                   string          `json:"skills"`
	User                     *InterviewUser  `json:"user,omitempty"`
}

// IsCompleted reports whether the interview has ended
func (i *Interview) IsCompleted() bool {
	return i.Status == InterviewCompleted || i.EndedAt != ""
}

// User is a registered candidate profile
type User struct {
	ID                int64  `json:"id"`
	PhoneNumber       string `json:"phoneNumber"`
	FullName          string `json:"fullName"`
	Profession        string `json:"profession"`
	YearsOfExperience int    `json:"yearsOfExperience"`
}

// Stats is the admin console summary
type Stats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalInterviews     int `json:"totalInterviews"`
	CompletedInterviews int `json:"completedInterviews"`
}
