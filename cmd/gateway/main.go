package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/examsmith/examsmith/internal/api/http"
	auth "github.com/examsmith/examsmith/internal/auth/middleware"
	"github.com/examsmith/examsmith/internal/config"
	"github.com/examsmith/examsmith/internal/db"
	"github.com/examsmith/examsmith/internal/exam"
	"github.com/examsmith/examsmith/internal/grading"
	"github.com/examsmith/examsmith/internal/rbac"
	"github.com/examsmith/examsmith/internal/storage"
	syncx "github.com/examsmith/examsmith/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	grader := grading.NewDefaultGrader()
	store := exam.NewSQLStore(dbh, cfg.DBDriver, grader)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)
	cloner := exam.NewCloner(store, rbac.NewChecker(rbac.RolePermissions), events)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.UploadExamHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))
		pr.With(rbac.Require(exam.PermExamClone)).
			Post("/exams/{examID}/clone", api.CloneExamHandler(cloner))

		// Student flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.NewAttemptHandler(store))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{attemptID}/responses", api.SaveResponsesHandler(store))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// Teacher grading
		pr.With(rbac.Require("attempt:grade")).
			Post("/attempts/{attemptID}/grading", api.ApplyGradesHandler(store))

		// Authoring tools
		pr.With(rbac.Require("content:preview")).
			Post("/content/preview", api.PreviewContentHandler())
		pr.With(rbac.Require("content:preview")).
			Post("/content/resegment", api.ResegmentHandler())
		pr.With(rbac.Require("content:preview")).
			Post("/content/transpile", api.TranspileHandler())
		pr.With(rbac.Require("content:import")).
			Post("/content/resolve-images", api.ResolveImagesHandler(bs))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("gateway listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
