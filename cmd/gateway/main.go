package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	api "github.com/Jackson-sch/sistema-escolar/internal/api/http"
	"github.com/Jackson-sch/sistema-escolar/internal/audit"
	auth "github.com/Jackson-sch/sistema-escolar/internal/auth/middleware"
	"github.com/Jackson-sch/sistema-escolar/internal/config"
	"github.com/Jackson-sch/sistema-escolar/internal/db"
	"github.com/Jackson-sch/sistema-escolar/internal/grade"
	"github.com/Jackson-sch/sistema-escolar/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	store := grade.NewSQLStore(dbh, cfg.DBDriver)
	auditRepo := audit.NewRepo(dbh)
	svc := grade.NewService(store, store, grade.WithAuditor(auditRepo))

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC → service-level ownership)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// grading core
		pr.With(rbac.Require("grades:write")).
			Post("/courses/{courseID}/assessments/{assessmentID}/grades", api.SubmitGradeHandler(svc))
		pr.With(rbac.Require("grades:write")).
			Post("/grades/batch", api.SubmitBatchHandler(svc))
		pr.With(rbac.Require("grades:write")).
			Delete("/grades/{gradeID}", api.DeleteGradeHandler(svc))
		pr.With(rbac.Require("grades:view")).
			Get("/courses/{courseID}/grades", api.ListCourseGradesHandler(svc))
		pr.With(rbac.RequireAny("grades:view", "grades:view-own")).
			Get("/courses/{courseID}/students/{studentID}/average", api.StudentAverageHandler(svc))
		pr.With(rbac.Require("summary:view")).
			Get("/courses/{courseID}/summary", api.CourseSummaryHandler(svc))

		// courses & assessments
		pr.With(rbac.Require("courses:create")).
			Post("/courses", api.CreateCourseHandler(dbh))
		pr.With(rbac.Require("courses:view")).
			Get("/courses", api.ListCoursesHandler(dbh))
		pr.With(rbac.Require("assessments:manage")).
			Post("/courses/{courseID}/assessments", api.CreateAssessmentHandler(dbh, svc))
		pr.With(rbac.Require("courses:view")).
			Get("/courses/{courseID}/assessments", api.ListAssessmentsHandler(dbh))

		// students & enrollment
		pr.With(rbac.Require("students:manage")).
			Post("/students/bulk", api.BulkUpsertStudentsHandler(dbh))
		pr.With(rbac.Require("students:list")).
			Get("/students", api.ListStudentsHandler(dbh))
		pr.With(rbac.Require("assessments:manage")).
			Post("/courses/{courseID}/enrollments", api.EnrollStudentsHandler(dbh, svc))
		pr.With(rbac.Require("courses:view")).
			Get("/courses/{courseID}/enrollments", api.ListEnrollmentsHandler(dbh))

		// account & audit
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
		pr.With(rbac.Require("audit:view")).
			Get("/audit/events", api.RecentEventsHandler(auditRepo))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin creates the bootstrap administrative user on an empty users
// table so a fresh install can log in. Skipped when no hash is configured.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, role, password_hash, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		uuid.NewString(), cfg.AdminUser, grade.RoleAdministrative, cfg.AdminPassHash, time.Now().Unix())
	return err
}
