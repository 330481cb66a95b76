package grading

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
)

// numericStrategy accepts exact string match or numeric comparison with
// tolerances carried in the answer key:
//
//	AnswerKey: ["3.14159", "tol=0.01"]   // absolute tolerance
//	AnswerKey: ["100", "reltol=0.05"]    // 5% relative tolerance
type numericStrategy struct{}

func (numericStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	str, ok := response.(string)
	if !ok {
		return res, errors.New("response must be string")
	}
	if len(q.AnswerKey) == 0 {
		return res, nil
	}
	target := q.AnswerKey[0]

	if str == target {
		res.AutoPoints = q.Points
		return res, nil
	}

	rv, rOK := parseFloatLoose(str)
	tv, tOK := parseFloatLoose(target)
	if !rOK || !tOK {
		return res, nil
	}

	absTol, relTol := parseTolerances(q.AnswerKey[1:])
	diff := math.Abs(rv - tv)
	if (absTol >= 0 && diff <= absTol) || (relTol >= 0 && diff <= relTol*math.Abs(tv)) {
		res.AutoPoints = q.Points
	}
	return res, nil
}

// parseFloatLoose tolerates trailing units: "9.8 m/s^2" parses as 9.8.
func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parseTolerances(keys []string) (absTol, relTol float64) {
	absTol, relTol = -1, -1
	for _, k := range keys {
		k = strings.TrimSpace(strings.ToLower(k))
		if v, ok := strings.CutPrefix(k, "tol="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				absTol = f
			}
		}
		if v, ok := strings.CutPrefix(k, "reltol="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				relTol = f
			}
		}
	}
	return
}
