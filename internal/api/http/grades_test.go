package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/Jackson-sch/sistema-escolar/internal/api/http"
	authmw "github.com/Jackson-sch/sistema-escolar/internal/auth/middleware"
	"github.com/Jackson-sch/sistema-escolar/internal/grade"
	"github.com/Jackson-sch/sistema-escolar/internal/rbac"
)

func testRouter(svc *grade.Service, actorID, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := authmw.WithSubject(req.Context(), actorID)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/courses/{courseID}/assessments/{assessmentID}/grades", api.SubmitGradeHandler(svc))
	r.Post("/grades/batch", api.SubmitBatchHandler(svc))
	r.Get("/courses/{courseID}/summary", api.CourseSummaryHandler(svc))
	return r
}

func newHTTPFixture() (*grade.Service, *grade.MemoryStore) {
	store := grade.NewMemoryStore()
	store.PutCourse(grade.Course{ID: "c1", Name: "Historia", OwnerID: "t1"})
	store.PutAssessment(grade.Assessment{ID: "a1", CourseID: "c1", PeriodID: "p1", Name: "Tarea 1", Weight: 1})
	return grade.NewService(store, store), store
}

func TestSubmitGradeHandler(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	body := `{"student_id":"s1","score":"16.5","comment":"bien"}`
	req := httptest.NewRequest("POST", "/courses/c1/assessments/a1/grades", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var g grade.Grade
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Score != 16.5 || g.StudentID != "s1" || g.ID == "" {
		t.Fatalf("unexpected grade: %+v", g)
	}
}

func TestSubmitGradeHandlerOutOfRange(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	req := httptest.NewRequest("POST", "/courses/c1/assessments/a1/grades",
		strings.NewReader(`{"student_id":"s1","score":"21"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(grade.CodeOutOfRangeScore)) {
		t.Fatalf("error code missing from body: %s", rec.Body.String())
	}
}

func TestSubmitBatchHandlerPartialReport(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	body := `{
		"course_id": "c1", "assessment_id": "a1", "period_id": "p1",
		"rows": [
			{"student_id": "s1", "score": "12"},
			{"student_id": "s2", "score": "abc"},
			{"student_id": "s3", "score": "18"}
		]
	}`
	req := httptest.NewRequest("POST", "/grades/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var report grade.BatchReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Successes) != 2 || len(report.Failures) != 1 {
		t.Fatalf("want 2/1, got %d/%d", len(report.Successes), len(report.Failures))
	}
	if report.Failures[0].Err.Code != grade.CodeInvalidScoreFormat {
		t.Fatalf("want invalid_score_format, got %s", report.Failures[0].Err.Code)
	}
}

func TestSubmitGradeHandlerNumericScore(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	req := httptest.NewRequest("POST", "/courses/c1/assessments/a1/grades",
		strings.NewReader(`{"student_id":"s1","score":16.5}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var g grade.Grade
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Score != 16.5 {
		t.Fatalf("want 16.5, got %v", g.Score)
	}
}

func TestSubmitBatchHandlerNumericScores(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	body := `{
		"course_id": "c1", "assessment_id": "a1", "period_id": "p1",
		"rows": [
			{"student_id": "s1", "score": 12},
			{"student_id": "s2", "score": 25},
			{"student_id": "s3", "score": "14.5"}
		]
	}`
	req := httptest.NewRequest("POST", "/grades/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var report grade.BatchReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Successes) != 2 || len(report.Failures) != 1 {
		t.Fatalf("want 2/1, got %d/%d", len(report.Successes), len(report.Failures))
	}
	if report.Failures[0].StudentID != "s2" || report.Failures[0].Err.Code != grade.CodeOutOfRangeScore {
		t.Fatalf("unexpected failure: %+v", report.Failures[0])
	}
	if report.Successes[0].Score != 12 || report.Successes[1].Score != 14.5 {
		t.Fatalf("unexpected scores: %+v", report.Successes)
	}
}

func TestSubmitBatchHandlerForbidden(t *testing.T) {
	svc, store := newHTTPFixture()
	h := testRouter(svc, "someone-else", grade.RoleTeacher)

	body := `{"course_id":"c1","assessment_id":"a1","period_id":"p1","rows":[{"student_id":"s1","score":"12"}]}`
	req := httptest.NewRequest("POST", "/grades/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", rec.Code)
	}
	if grades, _ := store.FindByCourse(req.Context(), "c1", ""); len(grades) != 0 {
		t.Fatal("forbidden batch persisted rows")
	}
}

func TestCourseSummaryHandler(t *testing.T) {
	svc, _ := newHTTPFixture()
	h := testRouter(svc, "t1", grade.RoleTeacher)

	seed := `{"course_id":"c1","assessment_id":"a1","period_id":"p1","rows":[
		{"student_id":"s1","score":"19"},
		{"student_id":"s2","score":"8"}
	]}`
	req := httptest.NewRequest("POST", "/grades/batch", strings.NewReader(seed))
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/courses/c1/summary?period_id=p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var sum grade.CourseSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.StudentCount != 2 || sum.FailingCount != 1 || sum.ExcellentCount != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Mean != 13.5 {
		t.Fatalf("want mean 13.5, got %v", sum.Mean)
	}
}
