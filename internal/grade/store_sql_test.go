package grade

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolationDetectionPerDriver(t *testing.T) {
	pg := &SQLStore{driver: "postgres"}
	lite := &SQLStore{driver: "sqlite"}

	if !pg.isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("postgres 23505 not recognized")
	}
	if pg.isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign-key violation misread as duplicate")
	}
	liteDup := errors.New("constraint failed: UNIQUE constraint failed: grades.student_id, grades.assessment_id (2067)")
	if !lite.isUniqueViolation(liteDup) {
		t.Fatal("sqlite unique-constraint message not recognized")
	}
	if lite.isUniqueViolation(errors.New("disk I/O error")) {
		t.Fatal("io error misread as duplicate")
	}
}
