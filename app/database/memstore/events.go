package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

func (r *repo) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	t, done := r.begin()
	defer done()
	insertEvent(t, event)
	return nil
}

func insertEvent(t *tables, event *models.CalendarEvent) {
	event.ID = uuid.NewString()
	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now
	t.events[event.ID] = *event
}

func (r *repo) InsertGeneratedEvent(ctx context.Context, event *models.CalendarEvent) (bool, error) {
	t, done := r.begin()
	defer done()
	if event.SourceKey != nil {
		for _, e := range t.events {
			if e.SourceKey != nil && *e.SourceKey == *event.SourceKey {
				return false, nil
			}
		}
	}
	insertEvent(t, event)
	return true, nil
}

func (r *repo) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	t, done := r.begin()
	defer done()
	current, ok := t.events[event.ID]
	if !ok {
		return services.ErrRecordNotFound
	}
	event.CreatedAt = current.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	t.events[event.ID] = *event
	return nil
}

func (r *repo) DeleteEvent(ctx context.Context, id string) error {
	t, done := r.begin()
	defer done()
	if _, ok := t.events[id]; !ok {
		return services.ErrRecordNotFound
	}
	delete(t.events, id)
	return nil
}

func (r *repo) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	t, done := r.begin()
	defer done()
	e, ok := t.events[id]
	if !ok {
		return nil, services.ErrRecordNotFound
	}
	return &e, nil
}

func (r *repo) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, error) {
	t, done := r.begin()
	defer done()
	events := make([]models.CalendarEvent, 0, len(t.events))
	for _, e := range t.events {
		if filter.TeacherID != "" && !e.AssignedTo(filter.TeacherID) {
			continue
		}
		if filter.CourseID != "" && (e.CourseID == nil || *e.CourseID != filter.CourseID) {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.From != nil && e.EndTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.StartTime.Before(*filter.To) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (r *repo) UpsertLecture(ctx context.Context, lecture *models.Lecture) error {
	t, done := r.begin()
	defer done()
	now := time.Now().UTC()
	if current, ok := t.lectures[lecture.EventID]; ok {
		lecture.ID = current.ID
		lecture.CreatedAt = current.CreatedAt
	} else {
		lecture.ID = uuid.NewString()
		lecture.CreatedAt = now
	}
	lecture.UpdatedAt = now
	t.lectures[lecture.EventID] = *lecture
	return nil
}

func (r *repo) GetLectureByEvent(ctx context.Context, eventID string) (*models.Lecture, error) {
	t, done := r.begin()
	defer done()
	l, ok := t.lectures[eventID]
	if !ok {
		return nil, services.ErrRecordNotFound
	}
	return &l, nil
}

func (r *repo) DeleteLectureByEvent(ctx context.Context, eventID string) error {
	t, done := r.begin()
	defer done()
	delete(t.lectures, eventID)
	return nil
}
