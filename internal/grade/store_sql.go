package grade

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLStore implements GradeStore and CatalogStore on database/sql, valid
// under both the pgx and modernc sqlite drivers ($n placeholders).
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const gradeCols = `id,student_id,course_id,assessment_id,score,comment,recorded_by,modified_by,created_at,updated_at`

func (s *SQLStore) Create(ctx context.Context, g Grade) (Grade, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	g.CreatedAt, g.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grades (`+gradeCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		g.ID, g.StudentID, g.CourseID, g.AssessmentID, g.Score, g.Comment,
		g.RecordedBy, nullable(g.ModifiedBy), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		if s.isUniqueViolation(err) {
			return Grade{}, ErrDuplicateKey
		}
		return Grade{}, storeUnavailable(err)
	}
	return g, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, upd GradeUpdate) (Grade, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE grades SET score=$1, comment=$2, modified_by=$3, updated_at=$4 WHERE id=$5`,
		upd.Score, upd.Comment, upd.ModifiedBy, time.Now().Unix(), id)
	if err != nil {
		return Grade{}, storeUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Grade{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Grade, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gradeCols+` FROM grades WHERE id=$1`, id)
	return scanGrade(row)
}

func (s *SQLStore) FindByNaturalKey(ctx context.Context, studentID, assessmentID string) (Grade, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gradeCols+` FROM grades WHERE student_id=$1 AND assessment_id=$2`,
		studentID, assessmentID)
	return scanGrade(row)
}

func (s *SQLStore) FindByCourse(ctx context.Context, courseID, periodID string) ([]Grade, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if periodID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+prefixed("g")+` FROM grades g WHERE g.course_id=$1 ORDER BY g.student_id, g.assessment_id`,
			courseID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+prefixed("g")+` FROM grades g
			   JOIN assessments a ON a.id=g.assessment_id
			  WHERE g.course_id=$1 AND a.period_id=$2
			  ORDER BY g.student_id, g.assessment_id`,
			courseID, periodID)
	}
	if err != nil {
		return nil, storeUnavailable(err)
	}
	defer rows.Close()
	var out []Grade
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeUnavailable(err)
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grades WHERE id=$1`, id)
	if err != nil {
		return storeUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,name,owner_id FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	if err != nil {
		return Course{}, storeUnavailable(err)
	}
	return c, nil
}

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	var a Assessment
	err := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,period_id,name,weight FROM assessments WHERE id=$1`, id).
		Scan(&a.ID, &a.CourseID, &a.PeriodID, &a.Name, &a.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return Assessment{}, ErrNotFound
	}
	if err != nil {
		return Assessment{}, storeUnavailable(err)
	}
	return a, nil
}

func (s *SQLStore) ListAssessments(ctx context.Context, courseID, periodID string) ([]Assessment, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if periodID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,course_id,period_id,name,weight FROM assessments WHERE course_id=$1 ORDER BY created_at`,
			courseID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,course_id,period_id,name,weight FROM assessments WHERE course_id=$1 AND period_id=$2 ORDER BY created_at`,
			courseID, periodID)
	}
	if err != nil {
		return nil, storeUnavailable(err)
	}
	defer rows.Close()
	var out []Assessment
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.PeriodID, &a.Name, &a.Weight); err != nil {
			return nil, storeUnavailable(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeUnavailable(err)
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanGrade(row scanner) (Grade, error) {
	var g Grade
	var modifiedBy sql.NullString
	err := row.Scan(&g.ID, &g.StudentID, &g.CourseID, &g.AssessmentID, &g.Score,
		&g.Comment, &g.RecordedBy, &modifiedBy, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Grade{}, ErrNotFound
	}
	if err != nil {
		return Grade{}, storeUnavailable(err)
	}
	g.ModifiedBy = modifiedBy.String
	return g, nil
}

func prefixed(alias string) string {
	cols := strings.Split(gradeCols, ",")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ",")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation recognizes the natural-key constraint firing, in the
// shape the configured driver reports it.
func (s *SQLStore) isUniqueViolation(err error) bool {
	if s.driver == "postgres" {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	}
	// modernc sqlite reports constraint failures by message only
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
