package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCloseSchedule runs the monthly close at 00:30 on the first day of each month
const DefaultCloseSchedule = "30 0 1 * *"

// StartScheduler starts the background payroll jobs. The returned cron must be
// stopped on shutdown.
func StartScheduler(svc *Service, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultCloseSchedule
	}
	c := cron.New(
		cron.WithLocation(svc.opts.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := svc.ClosePreviousMonth(ctx); err != nil {
			log.Printf("[SCHEDULER] monthly close failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SCHEDULER] started schedule=%q location=%s model=%s", spec, svc.opts.Location, svc.opts.PayModel)
	c.Start()
	return c, nil
}

// ClosePreviousMonth closes the calendar month before now as the system actor.
func (s *Service) ClosePreviousMonth(ctx context.Context) (*CloseSummary, error) {
	now := s.now()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location).AddDate(0, -1, 0)
	log.Printf("[SCHEDULER] closing payroll for %s", prev.Format("2006-01"))
	return s.CloseMonth(ctx, SystemActor, int(prev.Month()), prev.Year())
}
