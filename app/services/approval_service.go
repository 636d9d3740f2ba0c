package services

import (
	"context"
	"log"
	"strings"

	"github.com/pkg/errors"

	"swadiq-lms/app/models"
)

// Approve fixes the payable amount of a completed record.
func (s *Service) Approve(ctx context.Context, actor *models.Actor, attendanceID string, bonusAmount int64) (*models.AttendanceRecord, error) {
	if bonusAmount < 0 {
		return nil, invalid("bonus_amount must not be negative")
	}
	record, err := s.advance(ctx, actor, ActionReviewAttendance, attendanceID, models.AttendanceApproved, func(r *models.AttendanceRecord) {
		now := s.now()
		r.ApprovedAt = &now
		r.BonusAmount = bonusAmount
		r.TotalAmount = r.BaseAmount + r.BonusAmount
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYROLL] attendance %s approved by %s: %d + %d = %d",
		record.ID, actor.ID, record.BaseAmount, record.BonusAmount, record.TotalAmount)
	return record, nil
}

// Reject closes a completed record without pay.
func (s *Service) Reject(ctx context.Context, actor *models.Actor, attendanceID, reason string) (*models.AttendanceRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason is required")
	}
	record, err := s.advance(ctx, actor, ActionReviewAttendance, attendanceID, models.AttendanceRejected, func(r *models.AttendanceRecord) {
		r.RejectionReason = &reason
		r.TotalAmount = 0
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYROLL] attendance %s rejected by %s: %s", record.ID, actor.ID, reason)
	return record, nil
}

// MarkPaid settles an approved record. The monthly payroll run normally does
// this through PayMonthlySalary.
func (s *Service) MarkPaid(ctx context.Context, actor *models.Actor, attendanceID string) (*models.AttendanceRecord, error) {
	return s.advance(ctx, actor, ActionPayAttendance, attendanceID, models.AttendancePaid, func(r *models.AttendanceRecord) {
		now := s.now()
		r.PaidAt = &now
	})
}

// advance performs one state machine step as a conditional write: the update
// only lands if the stored status is still the one that was read.
func (s *Service) advance(
	ctx context.Context,
	actor *models.Actor,
	action Action,
	attendanceID string,
	next models.AttendanceStatus,
	apply func(*models.AttendanceRecord),
) (*models.AttendanceRecord, error) {
	attendanceID = strings.TrimSpace(attendanceID)
	if attendanceID == "" {
		return nil, invalid("attendance_id is required")
	}
	if err := authorize(actor, action, Resource{}); err != nil {
		return nil, err
	}

	var record *models.AttendanceRecord
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		record, err = tx.GetAttendance(ctx, attendanceID)
		if err != nil {
			return notFound(err, ErrAttendanceNotFound, "loading attendance")
		}
		return advanceRecord(ctx, tx, record, next, apply)
	})
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, record, nil)
	return record, nil
}

func advanceRecord(ctx context.Context, tx Repository, record *models.AttendanceRecord, next models.AttendanceStatus, apply func(*models.AttendanceRecord)) error {
	current := record.Status
	if !current.CanTransitionTo(next) {
		return transition(current, next)
	}
	apply(record)
	record.Status = next
	ok, err := tx.UpdateAttendance(ctx, record, current)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	if !ok {
		// someone else moved it first
		return transition(current, next)
	}
	return nil
}
