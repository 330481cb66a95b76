package exam

import "context"

type ListOpts struct {
	Q          string
	Limit      int
	Offset     int
	ViewerID   string
	ViewerRole string // "student" | "teacher" | "admin"
}

type AttemptListOpts struct {
	ExamID string
	UserID string
	Status string // optional: in_progress|submitted
	Limit  int
	Offset int
}

type ManualGradeInput struct {
	ManualPoints float64 `json:"manual_points"`
	Comment      string  `json:"comment,omitempty"`
}

type Store interface {
	PutExam(e Exam) error
	GetExam(id string) (Exam, error)                           // student-safe (no answer keys)
	GetExamAdmin(ctx context.Context, id string) (Exam, error) // full exam, for owners/clone
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	NewAttempt(examID, userID string) (Attempt, error)
	SaveResponses(attemptID string, resp map[string]interface{}) (Attempt, error)
	Submit(attemptID string) (Attempt, error)
	GetAttempt(id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)

	ApplyManualGrades(ctx context.Context, attemptID string, updates map[string]ManualGradeInput, gradedBy string) (Attempt, error)
}
