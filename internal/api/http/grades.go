package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

// Handlers only — routes remain in main.go

// POST /courses/{courseID}/assessments/{assessmentID}/grades
func SubmitGradeHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		var in grade.RowInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		g, err := svc.SubmitGrade(r.Context(), actorFromContext(r), courseID, assessmentID, in)
		if err != nil {
			writeGradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// POST /grades/batch
func SubmitBatchHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env grade.BatchEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		report, err := svc.SubmitBatch(r.Context(), actorFromContext(r), env)
		if err != nil {
			writeGradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// GET /courses/{courseID}/students/{studentID}/average?period_id=
func StudentAverageHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r)
		studentID := chi.URLParam(r, "studentID")
		// Students may only read their own average.
		if actor.Role == grade.RoleStudent && actor.ID != studentID {
			writeGradeError(w, grade.ErrUnauthorized)
			return
		}
		avg, err := svc.StudentAverage(r.Context(),
			studentID,
			chi.URLParam(r, "courseID"),
			r.URL.Query().Get("period_id"))
		if err != nil {
			writeGradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, avg)
	}
}

// GET /courses/{courseID}/summary?period_id=
func CourseSummaryHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.CourseSummary(r.Context(),
			chi.URLParam(r, "courseID"),
			r.URL.Query().Get("period_id"))
		if err != nil {
			writeGradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// GET /courses/{courseID}/grades?period_id=
func ListCourseGradesHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grades, err := svc.ListCourseGrades(r.Context(), actorFromContext(r),
			chi.URLParam(r, "courseID"),
			r.URL.Query().Get("period_id"))
		if err != nil {
			writeGradeError(w, err)
			return
		}
		if grades == nil {
			grades = []grade.Grade{}
		}
		writeJSON(w, http.StatusOK, grades)
	}
}

// DELETE /grades/{gradeID}
func DeleteGradeHandler(svc *grade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteGrade(r.Context(), actorFromContext(r), chi.URLParam(r, "gradeID")); err != nil {
			writeGradeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
