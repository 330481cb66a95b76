package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/examsmith/examsmith/internal/auth/middleware"
	"github.com/examsmith/examsmith/internal/exam"
	"github.com/examsmith/examsmith/internal/rbac"
)

// POST /exams/{examID}/clone
func CloneExamHandler(cloner *exam.Cloner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exam.CloneRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		req.SourceExamID = chi.URLParam(r, "examID")
		req.ActorID = auth.SubjectFromContext(r.Context())
		req.ActorRole = rbac.RoleFromContext(r.Context())

		e, err := cloner.Clone(r.Context(), req)
		switch {
		case errors.Is(err, exam.ErrCloneNoSource):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case errors.Is(err, exam.ErrCloneForbidden):
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(e)
	}
}
