package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS recognition_events (
		id              BIGSERIAL PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		direction       TEXT NOT NULL,
		vehicle_class   TEXT NOT NULL,
		captured_at     TIMESTAMPTZ NOT NULL,
		image_ref       TEXT,
		phone_number    TEXT,
		raw_detections  JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_recognition_events_captured_at ON recognition_events(captured_at);`,
	`CREATE INDEX IF NOT EXISTS idx_recognition_events_direction ON recognition_events(direction);`,
	`CREATE INDEX IF NOT EXISTS idx_recognition_events_vehicle_class ON recognition_events(vehicle_class);`,
	`CREATE TABLE IF NOT EXISTS work_sessions (
		id                  BIGSERIAL PRIMARY KEY,
		operator_id         TEXT NOT NULL,
		started_at          TIMESTAMPTZ NOT NULL,
		ended_at            TIMESTAMPTZ,
		entry_count         INT NOT NULL DEFAULT 0,
		exit_count          INT NOT NULL DEFAULT 0,
		current_occupancy   INT NOT NULL DEFAULT 0,
		total_fee           BIGINT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_work_sessions_open ON work_sessions(operator_id) WHERE ended_at IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_operator_started ON work_sessions(operator_id, started_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
