package grading

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/examsmith/examsmith/internal/content"
)

func TestMcqSingle(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "mcq_single", Points: 2, AnswerKey: []string{"b"}}

	res, err := g.Grade(context.Background(), q, "b")
	if err != nil || res.AutoPoints != 2 {
		t.Fatalf("correct answer: points=%v err=%v", res.AutoPoints, err)
	}
	res, _ = g.Grade(context.Background(), q, "a")
	if res.AutoPoints != 0 {
		t.Errorf("wrong answer scored %v", res.AutoPoints)
	}
	if _, err := g.Grade(context.Background(), q, 42); err == nil {
		t.Error("non-string response must error")
	}
}

func TestMcqMultiPartialCredit(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "mcq_multi", Points: 4, AnswerKey: []string{"a", "b", "c", "d"}}

	res, _ := g.Grade(context.Background(), q, []string{"a", "b", "c", "d"})
	if res.AutoPoints != 4 {
		t.Errorf("full match: %v", res.AutoPoints)
	}
	res, _ = g.Grade(context.Background(), q, []string{"a", "b"})
	if res.AutoPoints != 2 {
		t.Errorf("half match: %v, want 2", res.AutoPoints)
	}
	// A wrong selection forfeits partial credit.
	res, _ = g.Grade(context.Background(), q, []string{"a", "b", "e"})
	if res.AutoPoints != 0 {
		t.Errorf("false positive: %v, want 0", res.AutoPoints)
	}
}

func TestMcqMultiNoPartial(t *testing.T) {
	g := NewDefaultGrader(WithPartialMulti(false))
	q := Q{Type: "mcq_multi", Points: 4, AnswerKey: []string{"a", "b"}}
	res, _ := g.Grade(context.Background(), q, []any{"a"})
	if res.AutoPoints != 0 {
		t.Errorf("partial disabled: %v, want 0", res.AutoPoints)
	}
}

func TestShortWord(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "short_word", Points: 1, AnswerKey: []string{"Mitochondria"}}

	res, _ := g.Grade(context.Background(), q, "  mitochondria! ")
	if res.AutoPoints != 1 {
		t.Errorf("case/punct-insensitive match: %v", res.AutoPoints)
	}
	res, _ = g.Grade(context.Background(), q, "mitochondrio")
	if res.AutoPoints != 0.5 {
		t.Errorf("one edit away: %v, want half credit", res.AutoPoints)
	}
	res, _ = g.Grade(context.Background(), q, "ribosome")
	if res.AutoPoints != 0 {
		t.Errorf("unrelated word: %v", res.AutoPoints)
	}
}

func TestNumericTolerance(t *testing.T) {
	g := NewDefaultGrader()
	cases := []struct {
		key  []string
		resp string
		want float64
	}{
		{[]string{"3.14"}, "3.14", 1},
		{[]string{"3.14", "tol=0.01"}, "3.145", 1},
		{[]string{"3.14", "tol=0.01"}, "3.2", 0},
		{[]string{"100", "reltol=0.05"}, "104", 1},
		{[]string{"100", "reltol=0.05"}, "110", 0},
	}
	for _, c := range cases {
		q := Q{Type: "numeric", Points: 1, AnswerKey: c.key}
		res, err := g.Grade(context.Background(), q, c.resp)
		if err != nil {
			t.Fatalf("%v / %q: %v", c.key, c.resp, err)
		}
		if res.AutoPoints != c.want {
			t.Errorf("%v / %q: got %v, want %v", c.key, c.resp, res.AutoPoints, c.want)
		}
	}
}

func TestUnknownTypeNeedsManual(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(context.Background(), Q{Type: "diagram", Points: 5}, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !res.NeedsManual || res.MaxPoints != 5 {
		t.Errorf("unknown type: %+v", res)
	}
}

type fakeEssayGrader struct {
	gotPrompt string
	award     map[string]float64
	err       error
}

func (f *fakeEssayGrader) GradeEssay(_ context.Context, prompt string, _ Rubric) (map[string]float64, error) {
	f.gotPrompt = prompt
	return f.award, f.err
}

func essayQ(points float64) Q {
	rub := &Rubric{Criteria: []Criterion{
		{Key: "thesis", MaxPoints: 2},
		{Key: "evidence", MaxPoints: 3},
	}}
	return Q{
		Type:    "essay",
		Points:  points,
		Rubric:  rub,
		Content: []content.Segment{content.NewText("Explain why"), content.NewMath(`e^{i\pi}=-1`)},
	}
}

func TestEssayAIGrading(t *testing.T) {
	fake := &fakeEssayGrader{award: map[string]float64{"thesis": 2, "evidence": 2.5}}
	g := NewDefaultGrader(WithEssayGrader(fake))

	res, err := g.Grade(context.Background(), essayQ(5), "Because rotation in the complex plane...")
	if err != nil {
		t.Fatal(err)
	}
	if res.AutoPoints != 4.5 {
		t.Errorf("points = %v, want 4.5", res.AutoPoints)
	}
	if res.NeedsManual {
		t.Error("AI-graded essay should not be flagged manual")
	}
	// The prompt carries the question's LaTeX projection.
	if !strings.Contains(fake.gotPrompt, `$e^{i\pi}=-1$`) {
		t.Errorf("prompt missing math projection: %q", fake.gotPrompt)
	}
	if !strings.Contains(fake.gotPrompt, "Because rotation") {
		t.Errorf("prompt missing student answer: %q", fake.gotPrompt)
	}
}

func TestEssayAIFailureDegradesToManual(t *testing.T) {
	fake := &fakeEssayGrader{err: errors.New("model timeout")}
	g := NewDefaultGrader(WithEssayGrader(fake))

	res, err := g.Grade(context.Background(), essayQ(5), "answer")
	if err != nil {
		t.Fatalf("model failure must not surface as grading error: %v", err)
	}
	if !res.NeedsManual {
		t.Error("failed AI call must fall back to manual review")
	}
}

func TestEssayWithoutGraderOrRubric(t *testing.T) {
	g := NewDefaultGrader()
	q := essayQ(5)
	q.Rubric = nil
	res, _ := g.Grade(context.Background(), q, "answer")
	if !res.NeedsManual || res.AutoPoints != 0 {
		t.Errorf("no rubric: %+v", res)
	}
}

func TestEssayAwardClampedToQuestionPoints(t *testing.T) {
	fake := &fakeEssayGrader{award: map[string]float64{"thesis": 99, "evidence": 99}}
	g := NewDefaultGrader(WithEssayGrader(fake))
	res, _ := g.Grade(context.Background(), essayQ(3), "answer")
	if res.AutoPoints != 3 {
		t.Errorf("points = %v, want clamp at 3", res.AutoPoints)
	}
}

func TestRubricFromJSON(t *testing.T) {
	if r, err := RubricFromJSON(nil); r != nil || err != nil {
		t.Errorf("nil blob: %v %v", r, err)
	}
	if r, err := RubricFromJSON(json.RawMessage(`{"criteria":[]}`)); r != nil || err != nil {
		t.Errorf("empty criteria: %v %v", r, err)
	}
	if _, err := RubricFromJSON(json.RawMessage(`{broken`)); err == nil {
		t.Error("malformed rubric must error")
	}
	r, err := RubricFromJSON(json.RawMessage(`{"criteria":[{"key":"k","max_points":2}],"max_points":2}`))
	if err != nil || r == nil || len(r.Criteria) != 1 {
		t.Errorf("valid rubric: %v %v", r, err)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"kitten", "sitting", 3},
		{"osmosis", "osmosis", 0},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
