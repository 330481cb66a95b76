package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/examsmith/examsmith/internal/auth/middleware"
	"github.com/examsmith/examsmith/internal/exam"
	"github.com/examsmith/examsmith/internal/rbac"
)

func NewAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExamID == "" {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		a, err := store.NewAttempt(req.ExamID, auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

func SaveResponsesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var resp map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		a, err := requireOwnAttempt(store, r, attemptID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		a, err = store.SaveResponses(attemptID, resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

func SubmitAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		if _, err := requireOwnAttempt(store, r, attemptID); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		a, err := store.Submit(attemptID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		role := rbac.RoleFromContext(r.Context())

		var a exam.Attempt
		var err error
		if role == "teacher" || role == "admin" {
			a, err = store.GetAttempt(attemptID)
		} else {
			a, err = requireOwnAttempt(store, r, attemptID)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := exam.AttemptListOpts{
			ExamID: strings.TrimSpace(r.URL.Query().Get("exam_id")),
			UserID: strings.TrimSpace(r.URL.Query().Get("user_id")),
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		// Students only see their own attempts.
		role := rbac.RoleFromContext(r.Context())
		if role != "teacher" && role != "admin" {
			opts.UserID = auth.SubjectFromContext(r.Context())
		}
		list, err := store.ListAttempts(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func requireOwnAttempt(store exam.Store, r *http.Request, attemptID string) (exam.Attempt, error) {
	a, err := store.GetAttempt(attemptID)
	if err != nil {
		return exam.Attempt{}, err
	}
	if sub := auth.SubjectFromContext(r.Context()); sub != "" && a.UserID != sub {
		return exam.Attempt{}, errNotYours
	}
	return a, nil
}

var errNotYours = errors.New("attempt belongs to another user")
