package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"swadiq-lms/app/models"
	"swadiq-lms/app/services"
)

func (r *repo) GetAttendance(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	t, done := r.begin()
	defer done()
	a, ok := t.attendance[id]
	if !ok {
		return nil, services.ErrRecordNotFound
	}
	return &a, nil
}

func (r *repo) GetAttendanceByTeacherEvent(ctx context.Context, teacherID, eventID string) (*models.AttendanceRecord, error) {
	t, done := r.begin()
	defer done()
	if a, ok := findAttendance(t, teacherID, eventID); ok {
		return &a, nil
	}
	return nil, services.ErrRecordNotFound
}

func findAttendance(t *tables, teacherID, eventID string) (models.AttendanceRecord, bool) {
	for _, a := range t.attendance {
		if a.TeacherID == teacherID && a.EventID == eventID {
			return a, true
		}
	}
	return models.AttendanceRecord{}, false
}

func (r *repo) InsertAttendance(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	t, done := r.begin()
	defer done()
	if _, ok := t.events[record.EventID]; !ok {
		return false, services.ErrEventNotFound
	}
	if _, exists := findAttendance(t, record.TeacherID, record.EventID); exists {
		return false, nil
	}
	record.ID = uuid.NewString()
	now := time.Now().UTC()
	record.CreatedAt, record.UpdatedAt = now, now
	t.attendance[record.ID] = *record
	return true, nil
}

func (r *repo) UpdateAttendance(ctx context.Context, record *models.AttendanceRecord, expected models.AttendanceStatus) (bool, error) {
	t, done := r.begin()
	defer done()
	current, ok := t.attendance[record.ID]
	if !ok || current.Status != expected {
		return false, nil
	}
	record.CreatedAt = current.CreatedAt
	record.UpdatedAt = time.Now().UTC()
	t.attendance[record.ID] = *record
	return true, nil
}

func (r *repo) ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	t, done := r.begin()
	defer done()
	records := make([]models.AttendanceRecord, 0)
	for _, a := range t.attendance {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.EventID != "" && a.EventID != filter.EventID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if (filter.ApprovedFrom != nil || filter.ApprovedTo != nil) && !approvedWithin(a, filter.ApprovedFrom, filter.ApprovedTo) {
			continue
		}
		records = append(records, a)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ClassDate.Equal(b.ClassDate) {
			return a.ClassDate.After(b.ClassDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func approvedWithin(a models.AttendanceRecord, from, to *time.Time) bool {
	if a.ApprovedAt == nil {
		return false
	}
	if from != nil && a.ApprovedAt.Before(*from) {
		return false
	}
	if to != nil && !a.ApprovedAt.Before(*to) {
		return false
	}
	return true
}

func (r *repo) SumAttendance(ctx context.Context, teacherID string, from, to time.Time) (models.MonthlyTotal, error) {
	t, done := r.begin()
	defer done()
	total := models.MonthlyTotal{TeacherID: teacherID}
	for _, a := range t.attendance {
		if a.TeacherID != teacherID || !a.Status.Payable() || !approvedWithin(a, &from, &to) {
			continue
		}
		addTo(&total, a)
	}
	return total, nil
}

func (r *repo) SumAttendanceByTeacher(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error) {
	t, done := r.begin()
	defer done()
	byTeacher := make(map[string]*models.MonthlyTotal)
	for _, a := range t.attendance {
		if !a.Status.Payable() || !approvedWithin(a, &from, &to) {
			continue
		}
		total, ok := byTeacher[a.TeacherID]
		if !ok {
			total = &models.MonthlyTotal{TeacherID: a.TeacherID}
			byTeacher[a.TeacherID] = total
		}
		addTo(total, a)
	}
	totals := make([]models.MonthlyTotal, 0, len(byTeacher))
	for _, total := range byTeacher {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].TeacherID < totals[j].TeacherID })
	return totals, nil
}

func addTo(total *models.MonthlyTotal, a models.AttendanceRecord) {
	total.Count++
	total.BaseAmount += a.BaseAmount
	total.BonusAmount += a.BonusAmount
	total.Sum += a.TotalAmount
}
