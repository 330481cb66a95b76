package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/examsmith/examsmith/internal/content"
	"github.com/examsmith/examsmith/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	grader grading.Grader
}

func NewSQLStore(db *sql.DB, driver string, grader grading.Grader) *SQLStore {
	return &SQLStore{db: db, driver: driver, grader: grader}
}

func (s *SQLStore) PutExam(e Exam) error {
	// write path re-validates: every question's content blob goes through
	// the normalizer before it hits the column
	for i := range e.Questions {
		e.Questions[i].Content = json.RawMessage(content.SerializeContent(content.ParseContent(e.Questions[i].Content)))
		for j := range e.Questions[i].Choices {
			e.Questions[i].Choices[j].Content = json.RawMessage(content.SerializeContent(content.ParseContent(e.Questions[i].Choices[j].Content)))
		}
	}
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO exams (id,owner_id,title,time_limit_sec,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET owner_id=EXCLUDED.owner_id, title=EXCLUDED.title, time_limit_sec=EXCLUDED.time_limit_sec, questions_json=EXCLUDED.questions_json`,
		e.ID, e.OwnerID, e.Title, e.TimeLimitSec, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(id string) (Exam, error) {
	e, err := s.loadExam(id)
	if err != nil {
		return Exam{}, err
	}
	// strip answer keys and rubrics when serving to students
	for i := range e.Questions {
		e.Questions[i].AnswerKey = nil
		e.Questions[i].Rubric = nil
	}
	return e, nil
}

func (s *SQLStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	return s.loadExam(id)
}

func (s *SQLStore) loadExam(id string) (Exam, error) {
	row := s.db.QueryRow(`SELECT id,owner_id,title,time_limit_sec,questions_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.TimeLimitSec, &qjson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, errors.New("exam not found")
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id,owner_id,title,time_limit_sec,questions_json,created_at FROM exams`
	args := []any{}
	switch {
	case opts.Q != "" && opts.ViewerRole == "teacher":
		q += ` WHERE title LIKE '%' || $1 || '%' AND owner_id=$2`
		args = append(args, opts.Q, opts.ViewerID)
	case opts.Q != "":
		q += ` WHERE title LIKE '%' || $1 || '%'`
		args = append(args, opts.Q)
	case opts.ViewerRole == "teacher":
		q += ` WHERE owner_id=$1`
		args = append(args, opts.ViewerID)
	}
	q += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExamSummary{}
	for rows.Next() {
		var sum ExamSummary
		var qjson string
		if err := rows.Scan(&sum.ID, &sum.OwnerID, &sum.Title, &sum.TimeLimitSec, &qjson, &sum.CreatedAt); err != nil {
			return nil, err
		}
		var qs []Question
		if err := json.Unmarshal([]byte(qjson), &qs); err == nil {
			sum.QuestionCount = len(qs)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(examID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRow(`SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, errors.New("exam not found")
		}
		return Attempt{}, err
	}
	id := uuid.NewString()
	resp := map[string]interface{}{}
	respJSON, _ := json.Marshal(resp)
	_, err := s.db.Exec(`INSERT INTO attempts (id,exam_id,user_id,status,score,responses_json,grades_json,started_at)
		VALUES ($1,$2,$3,'in_progress',0,$4,'{}',$5)`,
		id, examID, userID, string(respJSON), time.Now().Unix())
	if err != nil {
		return Attempt{}, err
	}
	return Attempt{ID: id, ExamID: examID, UserID: userID, Status: "in_progress", Responses: resp}, nil
}

func (s *SQLStore) SaveResponses(attemptID string, resp map[string]interface{}) (Attempt, error) {
	a, err := s.GetAttempt(attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == "submitted" {
		return Attempt{}, errors.New("attempt already submitted")
	}
	if a.Responses == nil {
		a.Responses = map[string]interface{}{}
	}
	for k, v := range resp {
		a.Responses[k] = v
	}
	buf, _ := json.Marshal(a.Responses)
	if _, err := s.db.Exec(`UPDATE attempts SET responses_json=$1 WHERE id=$2`, string(buf), attemptID); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(attemptID)
}

func (s *SQLStore) Submit(attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == "submitted" {
		return a, nil
	}

	// full exam with keys for grading
	e, err := s.loadExam(a.ExamID)
	if err != nil {
		return Attempt{}, err
	}
	a.Score = scoreAttempt(context.Background(), s.grader, e.Questions, a.Responses)
	a.Status = "submitted"
	buf, _ := json.Marshal(a.Responses)
	_, err = s.db.Exec(`UPDATE attempts SET status='submitted', score=$1, responses_json=$2, submitted_at=$3 WHERE id=$4`,
		a.Score, string(buf), time.Now().Unix(), attemptID)
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(attemptID)
}

func (s *SQLStore) GetAttempt(id string) (Attempt, error) {
	row := s.db.QueryRow(`SELECT id,exam_id,user_id,status,score,responses_json,grades_json FROM attempts WHERE id=$1`, id)
	var a Attempt
	var rjson, gjson string
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Score, &rjson, &gjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, errors.New("attempt not found")
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		a.Responses = map[string]interface{}{}
	}
	if err := json.Unmarshal([]byte(gjson), &a.ManualGrades); err != nil {
		a.ManualGrades = nil
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id,exam_id,user_id,status,score,responses_json,grades_json FROM attempts WHERE 1=1`
	args := []any{}
	n := 0
	add := func(cond string, v any) {
		n++
		q += cond + strconv.Itoa(n)
		args = append(args, v)
	}
	if opts.ExamID != "" {
		add(` AND exam_id=$`, opts.ExamID)
	}
	if opts.UserID != "" {
		add(` AND user_id=$`, opts.UserID)
	}
	if opts.Status != "" {
		add(` AND status=$`, opts.Status)
	}
	q += ` ORDER BY started_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var rjson, gjson string
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Score, &rjson, &gjson); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(rjson), &a.Responses)
		_ = json.Unmarshal([]byte(gjson), &a.ManualGrades)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ApplyManualGrades(ctx context.Context, attemptID string, updates map[string]ManualGradeInput, _ string) (Attempt, error) {
	a, err := s.GetAttempt(attemptID)
	if err != nil {
		return Attempt{}, err
	}
	e, err := s.loadExam(a.ExamID)
	if err != nil {
		return Attempt{}, err
	}
	if a.ManualGrades == nil {
		a.ManualGrades = map[string]float64{}
	}
	for qid, u := range updates {
		a.ManualGrades[qid] = u.ManualPoints
	}
	a.Score = rescore(s.grader, a, e)
	gbuf, _ := json.Marshal(a.ManualGrades)
	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET grades_json=$1, score=$2 WHERE id=$3`,
		string(gbuf), a.Score, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(attemptID)
}
