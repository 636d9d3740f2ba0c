// Package memstore is an in-memory services.Store. Transactions run on a copy
// of the tables that replaces the live copy only when the unit of work succeeds.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

type tables struct {
	events     map[string]models.CalendarEvent
	lectures   map[string]models.Lecture // by event id
	courses    map[string]models.Course
	attendance map[string]models.AttendanceRecord
	salaries   map[string]models.MonthlySalaryRecord
	rates      []models.PayRate
}

func newTables() *tables {
	return &tables{
		events:     make(map[string]models.CalendarEvent),
		lectures:   make(map[string]models.Lecture),
		courses:    make(map[string]models.Course),
		attendance: make(map[string]models.AttendanceRecord),
		salaries:   make(map[string]models.MonthlySalaryRecord),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.events {
		c.events[k] = v
	}
	for k, v := range t.lectures {
		c.lectures[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	for k, v := range t.salaries {
		c.salaries[k] = v
	}
	c.rates = append([]models.PayRate(nil), t.rates...)
	return c
}

type state struct {
	mu sync.Mutex
	t  *tables
}

// repo implements services.Repository. Outside a transaction every call takes
// the store lock; inside one the lock is already held and tx is the working copy.
type repo struct {
	st *state
	tx *tables
}

func (r *repo) begin() (*tables, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.st.mu.Lock()
	return r.st.t, r.st.mu.Unlock
}

// Store is a services.Store backed by maps
type Store struct {
	*repo
	st *state
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	st := &state{t: newTables()}
	return &Store{repo: &repo{st: st}, st: st}
}

// InTx serializes fn against every other call on the store.
func (s *Store) InTx(ctx context.Context, fn func(tx services.Repository) error) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	work := s.st.t.clone()
	if err := fn(&repo{st: s.st, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.t = work
	return nil
}

// SeedCourse stores a course. Courses are owned by the enrollment subsystem,
// so this exists for tests and local runs only.
func (s *Store) SeedCourse(course models.Course) models.Course {
	t, done := s.begin()
	defer done()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	t.courses[course.ID] = course
	return course
}

func (r *repo) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	t, done := r.begin()
	defer done()
	c, ok := t.courses[id]
	if !ok {
		return nil, services.ErrRecordNotFound
	}
	return &c, nil
}
