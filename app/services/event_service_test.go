package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

func TestCreateEventProjectsLecture(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	class := f.classEvent(t, f.teacher.ID, date(time.March, 20, 9))

	lecture, err := f.store.GetLectureByEvent(f.ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, lecture.TeacherID)
	assert.True(t, lecture.StartsAt.Equal(class.StartTime))

	holiday, err := f.svc.CreateEvent(f.ctx, f.admin, &models.CalendarEvent{
		Title:     "Heroes day",
		EventType: models.EventHoliday,
		StartTime: date(time.June, 9, 0),
		EndTime:   date(time.June, 9, 23),
		AllDay:    true,
	})
	require.NoError(t, err)
	_, err = f.store.GetLectureByEvent(f.ctx, holiday.ID)
	assert.ErrorIs(t, err, services.ErrRecordNotFound)
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	start := date(time.March, 20, 9)
	negative := int64(-5)

	tests := []struct {
		name  string
		event models.CalendarEvent
	}{
		{"missing title", models.CalendarEvent{EventType: models.EventClass, StartTime: start, EndTime: start.Add(time.Hour)}},
		{"bad type", models.CalendarEvent{Title: "x", EventType: "party", StartTime: start, EndTime: start.Add(time.Hour)}},
		{"ends before start", models.CalendarEvent{Title: "x", EventType: models.EventExam, StartTime: start, EndTime: start.Add(-time.Hour)}},
		{"missing times", models.CalendarEvent{Title: "x", EventType: models.EventExam}},
		{"negative payment", models.CalendarEvent{Title: "x", EventType: models.EventPayment, StartTime: start, EndTime: start, PaymentAmount: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			_, err := f.svc.CreateEvent(f.ctx, f.admin, &event)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	_, err := f.svc.CreateEvent(f.ctx, f.teacher, &models.CalendarEvent{
		Title: "x", EventType: models.EventExam, StartTime: start, EndTime: start,
	})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestListEventsFilters(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	other := newTeacher()
	f.classEvent(t, f.teacher.ID, date(time.March, 12, 9))
	f.classEvent(t, f.teacher.ID, date(time.March, 10, 9))
	f.classEvent(t, other.ID, date(time.March, 11, 9))

	mine, err := f.svc.ListEvents(f.ctx, f.teacher, models.EventFilter{TeacherID: f.teacher.ID, EventType: models.EventClass})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 10, mine[0].StartTime.Day())
	assert.Equal(t, 12, mine[1].StartTime.Day())

	from, to := date(time.March, 11, 0), date(time.March, 12, 0)
	window, err := f.svc.ListEvents(f.ctx, f.admin, models.EventFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, other.ID, *window[0].TeacherID)

	_, err = f.svc.ListEvents(f.ctx, f.admin, models.EventFilter{EventType: "party"})
	assert.ErrorIs(t, err, services.ErrValidation)

	student := &models.Actor{ID: "s1", Roles: []models.Role{models.RoleStudent}}
	all, err := f.svc.ListEvents(f.ctx, student, models.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateEventRefreshesLecture(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	event := f.classEvent(t, f.teacher.ID, date(time.March, 20, 9))

	moved := *event
	moved.StartTime = date(time.March, 21, 10)
	moved.EndTime = date(time.March, 21, 11)
	_, err := f.svc.UpdateEvent(f.ctx, f.admin, &moved)
	require.NoError(t, err)

	lecture, err := f.store.GetLectureByEvent(f.ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, lecture.StartsAt.Equal(moved.StartTime))

	exam := moved
	exam.EventType = models.EventExam
	_, err = f.svc.UpdateEvent(f.ctx, f.admin, &exam)
	require.NoError(t, err)
	_, err = f.store.GetLectureByEvent(f.ctx, event.ID)
	assert.ErrorIs(t, err, services.ErrRecordNotFound)

	missing := moved
	missing.ID = "missing"
	_, err = f.svc.UpdateEvent(f.ctx, f.admin, &missing)
	assert.ErrorIs(t, err, services.ErrEventNotFound)
}

func TestUpdateEventKeepsRecordedAttendance(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	record := f.completed(t, date(time.March, 14, 9))
	event, err := f.svc.GetEvent(f.ctx, f.admin, record.EventID)
	require.NoError(t, err)

	event.Title = "Mathematics P5 (make-up)"
	event.StartTime = date(time.March, 14, 11)
	event.EndTime = date(time.March, 14, 12)
	_, err = f.svc.UpdateEvent(f.ctx, f.admin, event)
	require.NoError(t, err)

	records, err := f.svc.ListAttendance(f.ctx, f.admin, models.AttendanceFilter{EventID: event.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 9, records[0].ClassDate.Hour())
	assert.Equal(t, "Mathematics P5 (make-up)", records[0].EventTitle)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	unused := f.classEvent(t, f.teacher.ID, date(time.March, 20, 9))
	record := f.completed(t, date(time.March, 14, 9))

	require.NoError(t, f.svc.DeleteEvent(f.ctx, f.admin, unused.ID))
	_, err := f.svc.GetEvent(f.ctx, f.admin, unused.ID)
	assert.ErrorIs(t, err, services.ErrEventNotFound)
	_, err = f.store.GetLectureByEvent(f.ctx, unused.ID)
	assert.ErrorIs(t, err, services.ErrRecordNotFound)

	err = f.svc.DeleteEvent(f.ctx, f.admin, record.EventID)
	assert.ErrorIs(t, err, services.ErrEventHasAttendance)
	_, err = f.svc.GetEvent(f.ctx, f.admin, record.EventID)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteEvent(f.ctx, f.admin, "missing"), services.ErrEventNotFound)
	assert.ErrorIs(t, f.svc.DeleteEvent(f.ctx, f.teacher, record.EventID), services.ErrForbidden)
}

func TestGenerateCourseEventsIsIdempotent(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	course := f.store.SeedCourse(models.Course{Title: "Chemistry S3", TeacherID: &f.teacher.ID})
	schedule := models.CourseSchedule{
		Weekdays:        []models.DayOfWeek{models.Monday, models.Wednesday},
		StartClock:      "09:00",
		DurationMinutes: 80,
		From:            date(time.March, 3, 0),
		To:              date(time.March, 16, 0),
	}

	first, err := f.svc.GenerateCourseEvents(f.ctx, f.admin, course.ID, schedule)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Created)
	assert.Zero(t, first.Existing)
	require.Len(t, first.Events, 4)

	var days []int
	for _, e := range first.Events {
		days = append(days, e.StartTime.Day())
		assert.Equal(t, 9, e.StartTime.Hour())
		assert.Equal(t, 80*time.Minute, e.EndTime.Sub(e.StartTime))
		require.NotNil(t, e.SourceKey)
		assert.Equal(t, services.SlotKey(course.ID, e.StartTime), *e.SourceKey)
		_, err := f.store.GetLectureByEvent(f.ctx, e.ID)
		assert.NoError(t, err)
	}
	assert.Equal(t, []int{3, 5, 10, 12}, days)

	// edited slots are not overwritten by a rerun
	edited := first.Events[0]
	edited.Title = "Chemistry S3 (lab)"
	_, err = f.svc.UpdateEvent(f.ctx, f.admin, &edited)
	require.NoError(t, err)

	schedule.To = date(time.March, 18, 0)
	second, err := f.svc.GenerateCourseEvents(f.ctx, f.admin, course.ID, schedule)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Created)
	assert.Equal(t, 4, second.Existing)

	events, err := f.svc.ListEvents(f.ctx, f.admin, models.EventFilter{CourseID: course.ID})
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, "Chemistry S3 (lab)", events[0].Title)

	// generated classes can be completed like any other
	res, err := f.svc.MarkComplete(f.ctx, f.teacher, services.MarkCompleteInput{TeacherID: f.teacher.ID, EventID: events[1].ID})
	require.NoError(t, err)
	require.NotNil(t, res.Record.CourseID)
	assert.Equal(t, course.ID, *res.Record.CourseID)
}

func TestGenerateCourseEventsValidation(t *testing.T) {
	f := newFixture(t, models.PayModelRetainerPlusPerClass)
	course := f.store.SeedCourse(models.Course{Title: "History S1"})
	valid := models.CourseSchedule{
		Weekdays:        []models.DayOfWeek{models.Friday},
		StartClock:      "14:00",
		DurationMinutes: 40,
		From:            date(time.March, 3, 0),
		To:              date(time.March, 31, 0),
	}

	tests := []struct {
		name   string
		mutate func(*models.CourseSchedule)
	}{
		{"bad clock", func(s *models.CourseSchedule) { s.StartClock = "2pm" }},
		{"no weekdays", func(s *models.CourseSchedule) { s.Weekdays = nil }},
		{"unknown weekday", func(s *models.CourseSchedule) { s.Weekdays = []models.DayOfWeek{"funday"} }},
		{"zero duration", func(s *models.CourseSchedule) { s.DurationMinutes = 0 }},
		{"reversed range", func(s *models.CourseSchedule) { s.From, s.To = s.To, s.From }},
		{"longer than a year", func(s *models.CourseSchedule) { s.To = s.From.AddDate(2, 0, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := valid
			tt.mutate(&schedule)
			_, err := f.svc.GenerateCourseEvents(f.ctx, f.admin, course.ID, schedule)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	_, err := f.svc.GenerateCourseEvents(f.ctx, f.admin, "missing", valid)
	assert.ErrorIs(t, err, services.ErrCourseNotFound)
	_, err = f.svc.GenerateCourseEvents(f.ctx, f.teacher, course.ID, valid)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// classes without a teacher are created but not projected
	summary, err := f.svc.GenerateCourseEvents(f.ctx, f.admin, course.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Created)
	_, err = f.store.GetLectureByEvent(f.ctx, summary.Events[0].ID)
	assert.ErrorIs(t, err, services.ErrRecordNotFound)
}
