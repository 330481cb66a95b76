package exam

import "encoding/json"

// Choice content is a segment-tree blob, same shape as question content.
type Choice struct {
	ID      string          `json:"id,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type Question struct {
	ID   string `json:"id"`
	Type string `json:"type"` // mcq_single, mcq_multi, true_false, short_word, numeric, essay

	// Content holds the serialized segment tree (see internal/content).
	// The store treats it as an opaque JSON blob; only the content
	// package interprets it.
	Content json.RawMessage `json:"content,omitempty"`

	Choices   []Choice `json:"choices,omitempty"`
	AnswerKey []string `json:"answer_key,omitempty"`
	Points    float64  `json:"points"`

	// Rubric holds essay grading criteria (see grading.Rubric).
	Rubric json.RawMessage `json:"rubric,omitempty"`
}

type Attempt struct {
	ID           string                 `json:"id"`
	ExamID       string                 `json:"exam_id"`
	UserID       string                 `json:"user_id"`
	Status       string                 `json:"status"` // in_progress|submitted
	Score        float64                `json:"score"`
	Responses    map[string]interface{} `json:"responses"` // questionID -> response payload
	ManualGrades map[string]float64     `json:"manual_grades,omitempty"`
}

type Exam struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id,omitempty"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id,omitempty"`
	Title         string `json:"title"`
	TimeLimitSec  int    `json:"time_limit_sec"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at,omitempty"`
}
