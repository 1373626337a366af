package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/Jackson-sch/sistema-escolar/internal/auth/middleware"
	"github.com/Jackson-sch/sistema-escolar/internal/grade"
	"github.com/Jackson-sch/sistema-escolar/internal/rbac"
)

// POST /courses  {"name": "...", "owner_id": "..."}
// owner_id is optional; the creator becomes owner when absent.
func CreateCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req struct {
			Name    string `json:"name"`
			OwnerID string `json:"owner_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		owner := strings.TrimSpace(req.OwnerID)
		if owner == "" {
			owner = sub
		}
		// only administrative users may assign someone else as owner
		if owner != sub && rbac.RoleFromContext(r.Context()) != grade.RoleAdministrative {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		id := uuid.NewString()
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO courses (id, name, owner_id, created_at) VALUES ($1,$2,$3,$4)`,
			id, req.Name, owner, time.Now().Unix())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, grade.Course{ID: id, Name: req.Name, OwnerID: owner})
	}
}

// GET /courses?owner_id=
func ListCoursesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
		var (
			rows *sql.Rows
			err  error
		)
		if ownerID == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, name, owner_id FROM courses ORDER BY created_at DESC`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, name, owner_id FROM courses WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []grade.Course{}
		for rows.Next() {
			var c grade.Course
			if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, c)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /courses/{courseID}/assessments  {"name": "...", "period_id": "...", "weight": 2}
func CreateAssessmentHandler(db *sql.DB, svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if err := svc.Authorize(r.Context(), actorFromContext(r), courseID); err != nil {
			writeGradeError(w, err)
			return
		}
		var req struct {
			Name     string  `json:"name"`
			PeriodID string  `json:"period_id"`
			Weight   float64 `json:"weight"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.PeriodID) == "" {
			http.Error(w, "name and period_id required", http.StatusBadRequest)
			return
		}
		if req.Weight < 0 {
			http.Error(w, "weight must be >= 0", http.StatusBadRequest)
			return
		}
		id := uuid.NewString()
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO assessments (id, course_id, period_id, name, weight, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			id, courseID, req.PeriodID, req.Name, req.Weight, time.Now().Unix())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, grade.Assessment{
			ID: id, CourseID: courseID, PeriodID: req.PeriodID, Name: req.Name, Weight: req.Weight,
		})
	}
}

// GET /courses/{courseID}/assessments?period_id=
func ListAssessmentsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		periodID := r.URL.Query().Get("period_id")
		var (
			rows *sql.Rows
			err  error
		)
		if periodID == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, course_id, period_id, name, weight FROM assessments WHERE course_id=$1 ORDER BY created_at`,
				courseID)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, course_id, period_id, name, weight FROM assessments WHERE course_id=$1 AND period_id=$2 ORDER BY created_at`,
				courseID, periodID)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []grade.Assessment{}
		for rows.Next() {
			var a grade.Assessment
			if err := rows.Scan(&a.ID, &a.CourseID, &a.PeriodID, &a.Name, &a.Weight); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, a)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
