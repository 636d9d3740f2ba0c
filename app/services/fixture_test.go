package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"swadiq-lms/app/database/memstore"
	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	ctx     context.Context
	store   *memstore.Store
	svc     *services.Service
	clock   *clock
	admin   *models.Actor
	teacher *models.Actor
}

func date(month time.Month, day, hour int) time.Time {
	return time.Date(2025, month, day, hour, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T, model models.PayModel) *fixture {
	t.Helper()
	c := &clock{t: date(time.March, 15, 12)}
	store := memstore.New()
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc: services.NewService(store, services.Options{
			PayModel: model,
			Location: time.UTC,
			Now:      c.Now,
		}),
		clock:   c,
		admin:   &models.Actor{ID: uuid.NewString(), Roles: []models.Role{models.RoleAdmin}},
		teacher: newTeacher(),
	}
}

func newTeacher() *models.Actor {
	return &models.Actor{ID: uuid.NewString(), FirstName: "Amina", Roles: []models.Role{models.RoleTeacher}}
}

// classEvent creates a one hour class for teacherID starting at start
func (f *fixture) classEvent(t *testing.T, teacherID string, start time.Time) *models.CalendarEvent {
	t.Helper()
	event, err := f.svc.CreateEvent(f.ctx, f.admin, &models.CalendarEvent{
		Title:     "Mathematics P5",
		EventType: models.EventClass,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		TeacherID: &teacherID,
	})
	require.NoError(t, err)
	return event
}

// completed marks a fresh class of the fixture teacher complete
func (f *fixture) completed(t *testing.T, start time.Time) *models.AttendanceRecord {
	t.Helper()
	event := f.classEvent(t, f.teacher.ID, start)
	res, err := f.svc.MarkComplete(f.ctx, f.teacher, services.MarkCompleteInput{TeacherID: f.teacher.ID, EventID: event.ID})
	require.NoError(t, err)
	return res.Record
}

// approved completes and approves a fresh class of the fixture teacher
func (f *fixture) approved(t *testing.T, start time.Time, bonus int64) *models.AttendanceRecord {
	t.Helper()
	record, err := f.svc.Approve(f.ctx, f.admin, f.completed(t, start).ID, bonus)
	require.NoError(t, err)
	return record
}
