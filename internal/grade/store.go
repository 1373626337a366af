package grade

import "context"

// GradeUpdate is the mutable part of a Grade. Any field change is a full
// update: ModifiedBy and the updated timestamp are always refreshed.
type GradeUpdate struct {
	Score      float64
	Comment    string
	ModifiedBy string
}

// GradeStore is the record-store adapter. Transactional at the single
// record level only; there is no cross-record transaction spanning a batch.
// Implementations must enforce UNIQUE(student_id, assessment_id) and return
// ErrDuplicateKey when a concurrent insert loses that race.
type GradeStore interface {
	Create(ctx context.Context, g Grade) (Grade, error)
	Update(ctx context.Context, id string, upd GradeUpdate) (Grade, error)
	Get(ctx context.Context, id string) (Grade, error)
	// FindByNaturalKey returns ErrNotFound when no grade exists for the pair.
	FindByNaturalKey(ctx context.Context, studentID, assessmentID string) (Grade, error)
	// FindByCourse lists a course's grades, optionally filtered to one period
	// (empty periodID means all periods).
	FindByCourse(ctx context.Context, courseID, periodID string) ([]Grade, error)
	Delete(ctx context.Context, id string) error
}

// CatalogStore is the read-only view onto course/curriculum data this
// subsystem depends on.
type CatalogStore interface {
	GetCourse(ctx context.Context, id string) (Course, error)
	GetAssessment(ctx context.Context, id string) (Assessment, error)
	ListAssessments(ctx context.Context, courseID, periodID string) ([]Assessment, error)
}
