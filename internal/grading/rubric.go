package grading

import (
	"encoding/json"
	"fmt"
)

// Rubric is the criteria sheet an essay is scored against, authored by
// the teacher (or AI-generated upstream) and stored alongside the
// question.
type Rubric struct {
	Criteria []Criterion `json:"criteria"`
	Max      float64     `json:"max_points"`
}

type Criterion struct {
	Key       string  `json:"key"`
	Desc      string  `json:"desc"`
	MaxPoints float64 `json:"max_points"`
}

// RubricFromJSON decodes a stored rubric blob. Nil or empty input means
// no rubric (manual review). Malformed input is reported, not repaired:
// rubrics are teacher-authored, unlike historical content blobs.
func RubricFromJSON(raw json.RawMessage) (*Rubric, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var r Rubric
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	if len(r.Criteria) == 0 {
		return nil, nil
	}
	return &r, nil
}

// ScoreRubric clamps each awarded criterion to its maximum and totals.
func ScoreRubric(r Rubric, awarded map[string]float64) (float64, []string) {
	total := 0.0
	notes := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		v := awarded[c.Key]
		if v < 0 {
			v = 0
		}
		if v > c.MaxPoints {
			v = c.MaxPoints
		}
		total += v
		notes = append(notes, fmt.Sprintf("%s:%.2f", c.Key, v))
	}
	if r.Max > 0 && total > r.Max {
		total = r.Max
	}
	return total, notes
}
