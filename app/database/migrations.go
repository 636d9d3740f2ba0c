package database

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type migration struct {
	name  string
	query string
}

// migrations are idempotent and applied in order on every start
var migrations = []migration{
	{"uuid extension", `CREATE EXTENSION IF NOT EXISTS "pgcrypto"`},
	{"courses table", `
		CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(255) NOT NULL,
			teacher_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"calendar_events table", `
		CREATE TABLE IF NOT EXISTS calendar_events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			event_type VARCHAR(20) NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			all_day BOOLEAN NOT NULL DEFAULT false,
			color VARCHAR(20) NOT NULL DEFAULT '',
			course_id UUID REFERENCES courses(id) ON DELETE SET NULL,
			teacher_id UUID,
			payment_amount BIGINT,
			source_key VARCHAR(128) UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (event_type IN ('class', 'assignment', 'exam', 'payment', 'holiday', 'other')),
			CHECK (end_time >= start_time)
		)`},
	{"lectures table", `
		CREATE TABLE IF NOT EXISTS lectures (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_id UUID NOT NULL UNIQUE REFERENCES calendar_events(id) ON DELETE CASCADE,
			course_id UUID,
			teacher_id UUID NOT NULL,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"class_attendance table", `
		CREATE TABLE IF NOT EXISTS class_attendance (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			teacher_id UUID NOT NULL,
			event_id UUID NOT NULL REFERENCES calendar_events(id) ON DELETE RESTRICT,
			course_id UUID,
			status VARCHAR(20) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			class_date TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			approved_at TIMESTAMPTZ,
			paid_at TIMESTAMPTZ,
			base_amount BIGINT NOT NULL DEFAULT 0,
			bonus_amount BIGINT NOT NULL DEFAULT 0,
			total_amount BIGINT NOT NULL DEFAULT 0,
			rejection_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (teacher_id, event_id),
			CHECK (status IN ('scheduled', 'completed', 'approved', 'rejected', 'paid')),
			CHECK (base_amount >= 0 AND bonus_amount >= 0),
			CHECK (status NOT IN ('approved', 'paid') OR (approved_at IS NOT NULL AND total_amount = base_amount + bonus_amount)),
			CHECK (status <> 'paid' OR paid_at IS NOT NULL)
		)`},
	{"class_attendance approved index", `
		CREATE INDEX IF NOT EXISTS idx_class_attendance_approved
		ON class_attendance (teacher_id, approved_at) WHERE status IN ('approved', 'paid')`},
	{"monthly_salaries table", `
		CREATE TABLE IF NOT EXISTS monthly_salaries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			teacher_id UUID NOT NULL,
			month INT NOT NULL CHECK (month BETWEEN 1 AND 12),
			year INT NOT NULL,
			total_classes INT NOT NULL DEFAULT 0,
			total_amount BIGINT NOT NULL DEFAULT 0,
			bonus_amount BIGINT NOT NULL DEFAULT 0,
			final_amount BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_date TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (teacher_id, month, year),
			CHECK (status IN ('pending', 'processing', 'paid', 'cancelled')),
			CHECK (final_amount = total_amount + bonus_amount)
		)`},
	{"pay_rates table", `
		CREATE TABLE IF NOT EXISTS pay_rates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			scope VARCHAR(20) NOT NULL CHECK (scope IN ('teacher', 'course')),
			scope_id UUID NOT NULL,
			amount BIGINT NOT NULL CHECK (amount >= 0),
			effective_from TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"pay_rates lookup index", `
		CREATE INDEX IF NOT EXISTS idx_pay_rates_scope
		ON pay_rates (scope, scope_id, effective_from DESC)`},
}

// RunMigrations checks and applies necessary schema updates
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	log.Println("Running database migrations...")

	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m.query); err != nil {
			log.Printf("Failed to run migration %d (%s): %v", i+1, m.name, err)
			return errors.Wrapf(err, "migration %q", m.name)
		}
		log.Printf("[MIGRATE] %d. %s ok", i+1, m.name)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
