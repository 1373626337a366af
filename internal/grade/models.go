package grade

import "encoding/json"

// Grading scale is fixed: Peruvian vigesimal, inclusive on both ends.
const (
	ScoreMin = 0.0
	ScoreMax = 20.0
)

// Roles understood by the authorization check.
const (
	RoleAdministrative = "administrative"
	RoleTeacher        = "teacher"
	RoleStudent        = "student"
)

// Grade is one student's score on one assessment. At most one Grade exists
// per (StudentID, AssessmentID); every write path is create-or-update
// against that natural key.
type Grade struct {
	ID           string  `json:"id"`
	StudentID    string  `json:"student_id"`
	CourseID     string  `json:"course_id"`
	AssessmentID string  `json:"assessment_id"`
	Score        float64 `json:"score"`
	Comment      string  `json:"comment"`
	RecordedBy   string  `json:"recorded_by"`
	ModifiedBy   string  `json:"modified_by,omitempty"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

// Assessment is a gradable event within a course. Owned by curriculum
// management; read-only here.
type Assessment struct {
	ID       string  `json:"id"`
	CourseID string  `json:"course_id"`
	PeriodID string  `json:"period_id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
}

// Course carries the ownership needed for the authorization check.
type Course struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// Actor is the identity performing a grading operation, supplied by the
// auth layer.
type Actor struct {
	ID   string
	Role string
}

// RowInput is one candidate grade as submitted. Score arrives as text so
// the validation layer can distinguish "not a number" from "out of range".
type RowInput struct {
	StudentID string `json:"student_id"`
	Score     string `json:"score"`
	Comment   string `json:"comment,omitempty"`
}

// UnmarshalJSON accepts score as either a JSON number or a string, keeping
// the raw text so "not a number" and "out of range" stay distinct failures
// downstream. Any other JSON shape is carried through as text and rejected
// by row validation rather than failing the whole envelope.
func (in *RowInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		StudentID string          `json:"student_id"`
		Score     json.RawMessage `json:"score"`
		Comment   string          `json:"comment"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	in.StudentID = raw.StudentID
	in.Comment = raw.Comment
	in.Score = ""
	if len(raw.Score) == 0 || string(raw.Score) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Score, &s); err == nil {
		in.Score = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Score, &n); err == nil {
		in.Score = n.String()
		return nil
	}
	in.Score = string(raw.Score)
	return nil
}

// Row is a validated, normalized grade tuple ready for the store.
type Row struct {
	StudentID string
	Score     float64
	Comment   string
}

// BatchEnvelope is a batch of rows for one course+assessment+period.
type BatchEnvelope struct {
	CourseID     string     `json:"course_id" validate:"required"`
	AssessmentID string     `json:"assessment_id" validate:"required"`
	PeriodID     string     `json:"period_id" validate:"required"`
	Rows         []RowInput `json:"rows" validate:"required,min=1"`
}

// RowFailure reports one rejected row without aborting its siblings.
type RowFailure struct {
	Index     int    `json:"index"`
	StudentID string `json:"student_id"`
	Err       *Error `json:"error"`
	Attempted bool   `json:"attempted"`
}

// BatchReport is the outcome of a batch submission: partial persistence is
// expected and correct.
type BatchReport struct {
	Successes []Grade      `json:"successes"`
	Failures  []RowFailure `json:"failures"`
}

// AssessmentScore is one (assessment, score, weight) contribution inside a
// StudentAverage.
type AssessmentScore struct {
	AssessmentID string  `json:"assessment_id"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
}

// StudentAverage is a derived view, recomputed from Grade records on every
// request and never persisted.
type StudentAverage struct {
	StudentID string            `json:"student_id"`
	CourseID  string            `json:"course_id"`
	PeriodID  string            `json:"period_id,omitempty"`
	Scores    []AssessmentScore `json:"scores"`
	Average   float64           `json:"average"`
}

// CourseSummary aggregates weighted averages across the students of a
// course/period. Passing includes excellent; failing+passing covers all.
type CourseSummary struct {
	CourseID       string  `json:"course_id"`
	PeriodID       string  `json:"period_id,omitempty"`
	StudentCount   int     `json:"student_count"`
	Mean           float64 `json:"mean"`
	FailingCount   int     `json:"failing_count"`
	PassingCount   int     `json:"passing_count"`
	ExcellentCount int     `json:"excellent_count"`
}
