package http

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/Jackson-sch/sistema-escolar/internal/auth/middleware"
	"github.com/Jackson-sch/sistema-escolar/internal/grade"
	"github.com/Jackson-sch/sistema-escolar/internal/rbac"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeGradeError maps the typed grading taxonomy onto HTTP statuses. Row
// level errors never pass through here; they travel inside batch reports.
func writeGradeError(w http.ResponseWriter, err error) {
	var ge *grade.Error
	if !errors.As(err, &ge) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusInternalServerError
	switch ge.Code {
	case grade.CodeMissingField, grade.CodeInvalidScoreFormat, grade.CodeOutOfRangeScore:
		status = http.StatusBadRequest
	case grade.CodeUnauthorized:
		status = http.StatusForbidden
	case grade.CodeNotFound:
		status = http.StatusNotFound
	case grade.CodeDuplicateKey, grade.CodeConflictUnresolved:
		status = http.StatusConflict
	case grade.CodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"error": ge})
}

func actorFromContext(r *http.Request) grade.Actor {
	return grade.Actor{
		ID:   authmw.SubjectFromContext(r.Context()),
		Role: rbac.RoleFromContext(r.Context()),
	}
}
