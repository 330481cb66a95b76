package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/examsmith/examsmith/internal/auth/middleware"
	"github.com/examsmith/examsmith/internal/exam"
)

type applyGradesReq struct {
	Items map[string]exam.ManualGradeInput `json:"items"` // question_id -> grade
}

// POST /attempts/{attemptID}/grading
func ApplyGradesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := strings.TrimSpace(chi.URLParam(r, "attemptID"))
		if attemptID == "" {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		var req applyGradesReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Items) == 0 {
			http.Error(w, "no grades in request", http.StatusBadRequest)
			return
		}
		gradedBy := auth.SubjectFromContext(r.Context())
		a, err := store.ApplyManualGrades(r.Context(), attemptID, req.Items, gradedBy)
		if err != nil {
			http.Error(w, "apply grades: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}
