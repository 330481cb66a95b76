package exam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/examsmith/examsmith/internal/content"
	"github.com/examsmith/examsmith/internal/grading"
)

type memoryStore struct {
	mu       sync.RWMutex
	exams    map[string]Exam
	attempts map[string]Attempt
	grader   grading.Grader
}

// NewInMemoryStore backs the Store interface with maps. Used by tests
// and the offline single-binary mode.
func NewInMemoryStore(grader grading.Grader) Store {
	return &memoryStore{
		exams:    map[string]Exam{},
		attempts: map[string]Attempt{},
		grader:   grader,
	}
}

func (m *memoryStore) PutExam(e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, errors.New("exam not found")
	}
	// hide answers and grading criteria from students
	qs := make([]Question, len(e.Questions))
	copy(qs, e.Questions)
	for i := range qs {
		qs[i].AnswerKey = nil
		qs[i].Rubric = nil
	}
	e.Questions = qs
	return e, nil
}

func (m *memoryStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, errors.New("exam not found")
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExamSummary, 0, len(m.exams))
	for _, e := range m.exams {
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		if opts.ViewerRole == "teacher" && opts.ViewerID != "" && e.OwnerID != opts.ViewerID {
			continue
		}
		out = append(out, ExamSummary{
			ID:            e.ID,
			OwnerID:       e.OwnerID,
			Title:         e.Title,
			TimeLimitSec:  e.TimeLimitSec,
			QuestionCount: len(e.Questions),
			CreatedAt:     e.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) NewAttempt(examID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[examID]; !ok {
		return Attempt{}, errors.New("exam not found")
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    "in_progress",
		Responses: map[string]interface{}{},
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveResponses(attemptID string, resp map[string]interface{}) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	if a.Status == "submitted" {
		return Attempt{}, errors.New("attempt already submitted")
	}
	for k, v := range resp {
		a.Responses[k] = v
	}
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) Submit(attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	if a.Status == "submitted" {
		return a, nil
	}
	e := m.exams[a.ExamID]
	a.Score = scoreAttempt(context.Background(), m.grader, e.Questions, a.Responses)
	a.Status = "submitted"
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		if opts.ExamID != "" && a.ExamID != opts.ExamID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) ApplyManualGrades(_ context.Context, attemptID string, updates map[string]ManualGradeInput, _ string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	if a.ManualGrades == nil {
		a.ManualGrades = map[string]float64{}
	}
	for qid, u := range updates {
		a.ManualGrades[qid] = u.ManualPoints
	}
	a.Score = rescore(m.grader, a, m.exams[a.ExamID])
	m.attempts[attemptID] = a
	return a, nil
}

// scoreAttempt grades each answered question through the strategy router.
// Prompt content is parsed from the stored blob so AI-assisted strategies
// can project it to LaTeX.
func scoreAttempt(ctx context.Context, grader grading.Grader, questions []Question, responses map[string]interface{}) float64 {
	if grader == nil {
		return 0
	}
	score := 0.0
	for _, q := range questions {
		resp, ok := responses[q.ID]
		if !ok {
			continue
		}
		gq := grading.Q{
			Type:      q.Type,
			Points:    q.Points,
			AnswerKey: q.AnswerKey,
			Content:   content.ParseContent(q.Content),
		}
		if r, err := grading.RubricFromJSON(q.Rubric); err == nil {
			gq.Rubric = r
		}
		res, err := grader.Grade(ctx, gq, resp)
		if err != nil {
			continue
		}
		score += res.AutoPoints
	}
	return score
}

// rescore replaces auto points with manual points for manually graded
// questions, clamped to each question's maximum, and regrades the rest.
func rescore(grader grading.Grader, a Attempt, e Exam) float64 {
	total := 0.0
	autoQuestions := make([]Question, 0, len(e.Questions))
	for _, q := range e.Questions {
		pts, manual := a.ManualGrades[q.ID]
		if !manual {
			autoQuestions = append(autoQuestions, q)
			continue
		}
		if pts < 0 {
			pts = 0
		}
		if pts > q.Points {
			pts = q.Points
		}
		total += pts
	}
	total += scoreAttempt(context.Background(), grader, autoQuestions, a.Responses)
	return total
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
