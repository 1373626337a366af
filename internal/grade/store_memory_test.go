package grade_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

func TestMemoryStoreEnforcesNaturalKey(t *testing.T) {
	store := grade.NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, grade.Grade{StudentID: "s1", AssessmentID: "a1", CourseID: "c1", Score: 10, RecordedBy: "t1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.Create(ctx, grade.Grade{StudentID: "s1", AssessmentID: "a1", CourseID: "c1", Score: 12, RecordedBy: "t1"})
	if !errors.Is(err, grade.ErrDuplicateKey) {
		t.Fatalf("want ErrDuplicateKey, got %v", err)
	}
}

func TestConcurrentSubmissionsLeaveOneGrade(t *testing.T) {
	store := grade.NewMemoryStore()
	store.PutCourse(grade.Course{ID: "c1", OwnerID: "t1"})
	store.PutAssessment(grade.Assessment{ID: "a1", CourseID: "c1", PeriodID: "p1", Weight: 1})
	svc := grade.NewService(store, store)
	actor := grade.Actor{ID: "t1", Role: grade.RoleTeacher}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitGrade(context.Background(), actor, "c1", "a1", grade.RowInput{StudentID: "s1", Score: "14"})
			if err != nil {
				t.Errorf("concurrent submit: %v", err)
			}
		}()
	}
	wg.Wait()

	all, err := store.FindByCourse(context.Background(), "c1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("uniqueness invariant violated: %d grades for one pair", len(all))
	}
}
