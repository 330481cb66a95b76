package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/examsmith/examsmith/internal/content"
)

// EssayGrader scores free-form answers against a rubric. The actual
// model call lives outside this package; it receives a LaTeX-flavored
// prompt projected from the question's segment tree.
type EssayGrader interface {
	GradeEssay(ctx context.Context, prompt string, rubric Rubric) (awarded map[string]float64, err error)
}

// Q is a minimal view of a question needed for grading.
type Q struct {
	Type      string
	Points    float64
	AnswerKey []string
	Content   []content.Segment // prompt source for AI-assisted strategies
	Rubric    *Rubric
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints  float64  // points awarded automatically
	MaxPoints   float64  // the question's max points
	NeedsManual bool     // true if teacher review is required
	Feedback    []string // optional notes
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points, NeedsManual: true, Feedback: []string{"no strategy available"}}, nil
	}
	return s.Grade(ctx, q, response)
}

// Engine options

type Option func(*cfg)

type cfg struct {
	MaxEditDistance   int  // for short-word fuzzy
	AllowPartialMulti bool // partial credit for mcq_multi without FP
	Essay             EssayGrader
}

func WithMaxEditDistance(n int) Option     { return func(c *cfg) { c.MaxEditDistance = n } }
func WithPartialMulti(b bool) Option       { return func(c *cfg) { c.AllowPartialMulti = b } }
func WithEssayGrader(e EssayGrader) Option { return func(c *cfg) { c.Essay = e } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	c := &cfg{
		MaxEditDistance:   1,
		AllowPartialMulti: true,
	}
	for _, o := range opts {
		o(c)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"mcq_single": mcqSingleStrategy{},
			"true_false": mcqSingleStrategy{},
			"mcq_multi":  mcqMultiStrategy{allowPartial: c.AllowPartialMulti},
			"short_word": shortWordStrategy{maxEdit: c.MaxEditDistance},
			"numeric":    numericStrategy{},
			"essay":      essayStrategy{grader: c.Essay},
		},
	}
}

// --- Strategies ---

type mcqSingleStrategy struct{}

func (mcqSingleStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	for _, k := range q.AnswerKey {
		if resp == k {
			res.AutoPoints = q.Points
			return res, nil
		}
	}
	return res, nil
}

type mcqMultiStrategy struct{ allowPartial bool }

func (s mcqMultiStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	respSlice, ok := toStringSlice(response)
	if !ok {
		return res, errors.New("response must be []string")
	}
	correct := toSet(q.AnswerKey)
	resp := toSet(respSlice)

	if setEqual(correct, resp) {
		res.AutoPoints = q.Points
		return res, nil
	}
	hasFalsePositive := false
	for r := range resp {
		if _, ok := correct[r]; !ok {
			hasFalsePositive = true
			break
		}
	}
	if s.allowPartial && !hasFalsePositive && len(correct) > 0 {
		inter := 0
		for k := range resp {
			if _, ok := correct[k]; ok {
				inter++
			}
		}
		res.AutoPoints = q.Points * (float64(inter) / float64(len(correct)))
	}
	return res, nil
}

type shortWordStrategy struct{ maxEdit int }

func (s shortWordStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	resp, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	normResp := normalize(resp)

	near := false
	for _, k := range q.AnswerKey {
		nk := normalize(k)
		if nk == normResp {
			res.AutoPoints = q.Points
			return res, nil
		}
		if s.maxEdit > 0 && levenshtein(nk, normResp) <= s.maxEdit {
			near = true
		}
	}
	if near {
		res.AutoPoints = q.Points * 0.5
		res.Feedback = append(res.Feedback, "close match (fuzzy)")
	}
	return res, nil
}

// essayStrategy routes free-form answers to the AI rubric grader when one
// is configured; otherwise the attempt waits for manual review. A failed
// model call degrades to manual review, never to a grading error.
type essayStrategy struct{ grader EssayGrader }

func (s essayStrategy) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	if s.grader == nil || q.Rubric == nil {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "manual grading required")
		return res, nil
	}
	answer, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	awarded, err := s.grader.GradeEssay(ctx, EssayPrompt(q.Content, answer), *q.Rubric)
	if err != nil {
		res.NeedsManual = true
		res.Feedback = append(res.Feedback, "ai grading failed: "+err.Error())
		return res, nil
	}
	score, notes := ScoreRubric(*q.Rubric, awarded)
	if score > q.Points {
		score = q.Points
	}
	res.AutoPoints = score
	res.Feedback = append(res.Feedback, notes...)
	return res, nil
}

// EssayPrompt builds the model prompt from the question's segment tree.
// The LaTeX projection keeps math intact; graphs degrade to their
// placeholder token.
func EssayPrompt(question []content.Segment, answer string) string {
	return fmt.Sprintf("Question:\n%s\n\nStudent answer:\n%s", content.LatexString(question), answer)
}

// helpers

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
