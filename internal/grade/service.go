package grade

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Auditor receives grade lifecycle events. Implementations must not fail
// the write path; errors are the sink's problem.
type Auditor interface {
	GradeEvent(ctx context.Context, typ, key, actorID string, payload any)
}

// Audit event types.
const (
	EventGradeRecorded = "GradeRecorded"
	EventGradeUpdated  = "GradeUpdated"
	EventGradeDeleted  = "GradeDeleted"
)

// Service orchestrates grade writes and aggregation queries. Single writes
// and batches share the same authorize-validate-upsert pipeline.
type Service struct {
	grades   GradeStore
	catalog  CatalogStore
	audit    Auditor
	validate *validator.Validate
}

type Option func(*Service)

func WithAuditor(a Auditor) Option { return func(s *Service) { s.audit = a } }

func NewService(grades GradeStore, catalog CatalogStore, opts ...Option) *Service {
	v := validator.New()
	// report json field names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	s := &Service{grades: grades, catalog: catalog, validate: v}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Authorize decides whether actor may mutate grades of courseID: allowed
// for the administrative role or the course owner. Runs once per operation,
// never per row; the course owner is read fresh on every call.
func (s *Service) Authorize(ctx context.Context, actor Actor, courseID string) error {
	if actor.Role == RoleAdministrative {
		return nil
	}
	c, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if c.OwnerID != actor.ID {
		return ErrUnauthorized
	}
	return nil
}

// SubmitGrade records or replaces one student's score on one assessment.
// Returns the persisted Grade or exactly one typed error.
func (s *Service) SubmitGrade(ctx context.Context, actor Actor, courseID, assessmentID string, in RowInput) (Grade, error) {
	courseID = strings.TrimSpace(courseID)
	assessmentID = strings.TrimSpace(assessmentID)
	if courseID == "" {
		return Grade{}, errMissingField("course_id")
	}
	if assessmentID == "" {
		return Grade{}, errMissingField("assessment_id")
	}
	if err := s.Authorize(ctx, actor, courseID); err != nil {
		return Grade{}, err
	}
	a, err := s.catalog.GetAssessment(ctx, assessmentID)
	if err != nil {
		return Grade{}, err
	}
	if a.CourseID != courseID {
		return Grade{}, ErrNotFound
	}
	row, verr := ValidateRow(in)
	if verr != nil {
		return Grade{}, verr
	}
	return s.upsertRow(ctx, actor, courseID, assessmentID, row)
}

// SubmitBatch registers a classroom's scores for one assessment. The
// envelope is checked structurally and authorization runs once; after that
// each row succeeds or fails on its own and nothing is rolled back. If the
// store goes away mid-batch, the remaining rows are reported unattempted.
func (s *Service) SubmitBatch(ctx context.Context, actor Actor, env BatchEnvelope) (BatchReport, error) {
	if err := s.validate.Struct(env); err != nil {
		return BatchReport{}, envelopeError(err)
	}
	if err := s.Authorize(ctx, actor, env.CourseID); err != nil {
		return BatchReport{}, err
	}
	a, err := s.catalog.GetAssessment(ctx, env.AssessmentID)
	if err != nil {
		return BatchReport{}, err
	}
	if a.CourseID != env.CourseID {
		return BatchReport{}, ErrNotFound
	}

	report := BatchReport{Successes: []Grade{}, Failures: []RowFailure{}}
	storeDown := false
	for i, in := range env.Rows {
		if storeDown {
			report.Failures = append(report.Failures, RowFailure{
				Index: i, StudentID: in.StudentID, Err: ErrStoreUnavailable, Attempted: false,
			})
			continue
		}
		row, verr := ValidateRow(in)
		if verr != nil {
			report.Failures = append(report.Failures, RowFailure{
				Index: i, StudentID: in.StudentID, Err: verr, Attempted: true,
			})
			continue
		}
		g, err := s.upsertRow(ctx, actor, env.CourseID, env.AssessmentID, row)
		if err != nil {
			te := AsError(err)
			report.Failures = append(report.Failures, RowFailure{
				Index: i, StudentID: in.StudentID, Err: te, Attempted: true,
			})
			if te.Code == CodeStoreUnavailable {
				storeDown = true
			}
			continue
		}
		report.Successes = append(report.Successes, g)
	}
	return report, nil
}

// upsertRow is the uniqueness-guarded write shared by both submit paths.
// The find-then-write pair is not atomic, so a lost insert race surfaces as
// ErrDuplicateKey from the store's unique constraint and is retried once as
// an update before the row is given up on.
func (s *Service) upsertRow(ctx context.Context, actor Actor, courseID, assessmentID string, row Row) (Grade, error) {
	existing, err := s.grades.FindByNaturalKey(ctx, row.StudentID, assessmentID)
	switch {
	case err == nil:
		return s.updateExisting(ctx, actor, existing.ID, row)
	case errors.Is(err, ErrNotFound):
		// insert path below
	default:
		return Grade{}, err
	}

	g, err := s.grades.Create(ctx, Grade{
		StudentID:    row.StudentID,
		CourseID:     courseID,
		AssessmentID: assessmentID,
		Score:        row.Score,
		Comment:      row.Comment,
		RecordedBy:   actor.ID,
	})
	if errors.Is(err, ErrDuplicateKey) {
		// lost the race: someone inserted between our lookup and write
		raced, ferr := s.grades.FindByNaturalKey(ctx, row.StudentID, assessmentID)
		if ferr != nil {
			return Grade{}, ErrConflictUnresolved
		}
		return s.updateExisting(ctx, actor, raced.ID, row)
	}
	if err != nil {
		return Grade{}, err
	}
	s.emit(ctx, EventGradeRecorded, row.StudentID, assessmentID, actor, g)
	return g, nil
}

func (s *Service) updateExisting(ctx context.Context, actor Actor, id string, row Row) (Grade, error) {
	g, err := s.grades.Update(ctx, id, GradeUpdate{
		Score:      row.Score,
		Comment:    row.Comment,
		ModifiedBy: actor.ID,
	})
	if errors.Is(err, ErrNotFound) {
		// the grade was deleted under us; a fresh submission is a fresh create
		return Grade{}, ErrConflictUnresolved
	}
	if err != nil {
		return Grade{}, err
	}
	s.emit(ctx, EventGradeUpdated, g.StudentID, g.AssessmentID, actor, g)
	return g, nil
}

// StudentAverage recomputes one student's weighted average for a course,
// optionally scoped to a period. Derived on every call, never stored.
func (s *Service) StudentAverage(ctx context.Context, studentID, courseID, periodID string) (StudentAverage, error) {
	weights, err := s.assessmentWeights(ctx, courseID, periodID)
	if err != nil {
		return StudentAverage{}, err
	}
	grades, err := s.grades.FindByCourse(ctx, courseID, periodID)
	if err != nil {
		return StudentAverage{}, err
	}
	out := StudentAverage{StudentID: studentID, CourseID: courseID, PeriodID: periodID, Scores: []AssessmentScore{}}
	for _, g := range grades {
		if g.StudentID != studentID {
			continue
		}
		w, ok := weights[g.AssessmentID]
		if !ok {
			continue
		}
		out.Scores = append(out.Scores, AssessmentScore{AssessmentID: g.AssessmentID, Score: g.Score, Weight: w})
	}
	out.Average = WeightedAverage(out.Scores)
	return out, nil
}

// CourseSummary computes the course/period mean and band counts across all
// students with recorded grades.
func (s *Service) CourseSummary(ctx context.Context, courseID, periodID string) (CourseSummary, error) {
	weights, err := s.assessmentWeights(ctx, courseID, periodID)
	if err != nil {
		return CourseSummary{}, err
	}
	grades, err := s.grades.FindByCourse(ctx, courseID, periodID)
	if err != nil {
		return CourseSummary{}, err
	}
	perStudent := map[string][]AssessmentScore{}
	order := []string{}
	for _, g := range grades {
		w, ok := weights[g.AssessmentID]
		if !ok {
			continue
		}
		if _, seen := perStudent[g.StudentID]; !seen {
			order = append(order, g.StudentID)
		}
		perStudent[g.StudentID] = append(perStudent[g.StudentID],
			AssessmentScore{AssessmentID: g.AssessmentID, Score: g.Score, Weight: w})
	}
	averages := make([]StudentAverage, 0, len(order))
	for _, sid := range order {
		scores := perStudent[sid]
		averages = append(averages, StudentAverage{
			StudentID: sid, CourseID: courseID, PeriodID: periodID,
			Scores: scores, Average: WeightedAverage(scores),
		})
	}
	return Summarize(courseID, periodID, averages), nil
}

// ListCourseGrades returns the raw grade rows for reporting tables.
func (s *Service) ListCourseGrades(ctx context.Context, actor Actor, courseID, periodID string) ([]Grade, error) {
	if err := s.Authorize(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return s.grades.FindByCourse(ctx, courseID, periodID)
}

// DeleteGrade hard-removes one grade. A re-submission afterwards is a fresh
// create under the natural key, not a resurrection of this id.
func (s *Service) DeleteGrade(ctx context.Context, actor Actor, gradeID string) error {
	g, err := s.grades.Get(ctx, gradeID)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, actor, g.CourseID); err != nil {
		return err
	}
	if err := s.grades.Delete(ctx, gradeID); err != nil {
		return err
	}
	s.emit(ctx, EventGradeDeleted, g.StudentID, g.AssessmentID, actor, g)
	return nil
}

func (s *Service) assessmentWeights(ctx context.Context, courseID, periodID string) (map[string]float64, error) {
	as, err := s.catalog.ListAssessments(ctx, courseID, periodID)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, len(as))
	for _, a := range as {
		weights[a.ID] = a.Weight
	}
	return weights, nil
}

func (s *Service) emit(ctx context.Context, typ, studentID, assessmentID string, actor Actor, payload any) {
	if s.audit == nil {
		return
	}
	s.audit.GradeEvent(ctx, typ, studentID+"|"+assessmentID, actor.ID, payload)
}

func envelopeError(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errMissingField(verrs[0].Field())
	}
	return &Error{Code: CodeMissingField, Msg: err.Error()}
}
