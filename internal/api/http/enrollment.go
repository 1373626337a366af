package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

// POST /courses/{courseID}/enrollments  {"student_ids": ["..."]}
func EnrollStudentsHandler(db *sql.DB, svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if err := svc.Authorize(r.Context(), actorFromContext(r), courseID); err != nil {
			writeGradeError(w, err)
			return
		}
		var req struct {
			StudentIDs []string `json:"student_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.StudentIDs) == 0 {
			http.Error(w, "student_ids required", http.StatusBadRequest)
			return
		}
		now := time.Now().Unix()
		enrolled := 0
		for _, sid := range req.StudentIDs {
			res, err := db.ExecContext(r.Context(),
				`INSERT INTO enrollments (course_id, student_id, enrolled_at)
				 VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
				courseID, sid, now)
			if err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			if n, _ := res.RowsAffected(); n > 0 {
				enrolled++
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrolled": enrolled, "requested": len(req.StudentIDs)})
	}
}

// GET /courses/{courseID}/enrollments
func ListEnrollmentsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT s.id, s.code, s.full_name
			   FROM enrollments e JOIN students s ON s.id=e.student_id
			  WHERE e.course_id=$1 ORDER BY s.code`,
			chi.URLParam(r, "courseID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []studentRow{}
		for rows.Next() {
			var s studentRow
			if err := rows.Scan(&s.ID, &s.Code, &s.FullName); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, s)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
