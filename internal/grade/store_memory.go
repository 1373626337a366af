package grade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore keeps everything in maps behind one mutex. Used by tests and
// dev runs; enforces the same natural-key uniqueness as the SQL schema.
type memoryStore struct {
	mu          sync.RWMutex
	grades      map[string]Grade  // by id
	byKey       map[string]string // studentID|assessmentID -> grade id
	courses     map[string]Course
	assessments map[string]Assessment
}

// MemoryStore is the in-memory GradeStore+CatalogStore implementation.
type MemoryStore struct{ *memoryStore }

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{&memoryStore{
		grades:      map[string]Grade{},
		byKey:       map[string]string{},
		courses:     map[string]Course{},
		assessments: map[string]Assessment{},
	}}
}

func naturalKey(studentID, assessmentID string) string {
	return studentID + "|" + assessmentID
}

func (m *MemoryStore) Create(_ context.Context, g Grade) (Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := naturalKey(g.StudentID, g.AssessmentID)
	if _, exists := m.byKey[k]; exists {
		return Grade{}, ErrDuplicateKey
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	g.CreatedAt, g.UpdatedAt = now, now
	m.grades[g.ID] = g
	m.byKey[k] = g.ID
	return g, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, upd GradeUpdate) (Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grades[id]
	if !ok {
		return Grade{}, ErrNotFound
	}
	g.Score = upd.Score
	g.Comment = upd.Comment
	g.ModifiedBy = upd.ModifiedBy
	g.UpdatedAt = time.Now().Unix()
	m.grades[id] = g
	return g, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grades[id]
	if !ok {
		return Grade{}, ErrNotFound
	}
	return g, nil
}

func (m *MemoryStore) FindByNaturalKey(_ context.Context, studentID, assessmentID string) (Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[naturalKey(studentID, assessmentID)]
	if !ok {
		return Grade{}, ErrNotFound
	}
	return m.grades[id], nil
}

func (m *MemoryStore) FindByCourse(_ context.Context, courseID, periodID string) ([]Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Grade
	for _, g := range m.grades {
		if g.CourseID != courseID {
			continue
		}
		if periodID != "" {
			a, ok := m.assessments[g.AssessmentID]
			if !ok || a.PeriodID != periodID {
				continue
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grades[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.grades, id)
	delete(m.byKey, naturalKey(g.StudentID, g.AssessmentID))
	return nil
}

func (m *MemoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) GetAssessment(_ context.Context, id string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) ListAssessments(_ context.Context, courseID, periodID string) ([]Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Assessment
	for _, a := range m.assessments {
		if a.CourseID != courseID {
			continue
		}
		if periodID != "" && a.PeriodID != periodID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// PutCourse and PutAssessment seed catalog data (tests, dev fixtures).
func (m *MemoryStore) PutCourse(c Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
}

func (m *MemoryStore) PutAssessment(a Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[a.ID] = a
}
