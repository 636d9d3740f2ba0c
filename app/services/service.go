package services

import (
	"time"

	"swadiq-lms/app/models"
)

// Options tune the payroll pipeline. Zero values fall back to defaults.
type Options struct {
	DefaultBaseAmount int64
	PayModel          models.PayModel
	Location          *time.Location
	Now               func() time.Time
	// HistoryLimit caps the attendance history returned with a salary overview
	HistoryLimit int
}

// Service implements the class-completion-to-payroll pipeline
type Service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) *Service {
	if opts.DefaultBaseAmount <= 0 {
		opts.DefaultBaseAmount = models.DefaultBaseAmount
	}
	if !opts.PayModel.Valid() {
		opts.PayModel = models.PayModelRetainerPlusPerClass
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}
	return &Service{store: store, opts: opts}
}

// PayModel returns the configured reconciliation model.
func (s *Service) PayModel() models.PayModel {
	return s.opts.PayModel
}

func (s *Service) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Service) monthBounds(month, year int) (time.Time, time.Time) {
	return models.MonthBounds(month, year, s.opts.Location)
}

func validMonth(month, year int) error {
	if month < 1 || month > 12 {
		return invalid("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return invalid("year out of range")
	}
	return nil
}

// Location is the time zone months and schedules are evaluated in.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}
