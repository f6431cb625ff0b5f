package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"parklot-service/internal/domain/parking"
)

type SessionGormRepository struct {
	db *gorm.DB
}

func NewSessionGormRepository(db *gorm.DB) *SessionGormRepository {
	return &SessionGormRepository{db: db}
}

type workSessionRow struct {
	ID               int64     `gorm:"primaryKey"`
	OperatorID       string    `gorm:"not null"`
	StartedAt        time.Time `gorm:"not null"`
	EndedAt          *time.Time
	EntryCount       int
	ExitCount        int
	CurrentOccupancy int
	TotalFee         int64
	CreatedAt        time.Time
}

func (workSessionRow) TableName() string {
	return "work_sessions"
}

func (row workSessionRow) toDomain() parking.WorkSession {
	return parking.WorkSession{
		ID:               row.ID,
		OperatorID:       row.OperatorID,
		StartedAt:        row.StartedAt,
		EndedAt:          row.EndedAt,
		EntryCount:       row.EntryCount,
		ExitCount:        row.ExitCount,
		CurrentOccupancy: row.CurrentOccupancy,
		TotalFee:         row.TotalFee,
		CreatedAt:        row.CreatedAt,
	}
}

func (r *SessionGormRepository) CreateOpen(ctx context.Context, session *parking.WorkSession) error {
	row := workSessionRow{
		OperatorID: session.OperatorID,
		StartedAt:  session.StartedAt,
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// The partial unique index on (operator_id) WHERE ended_at IS NULL
		// rejects a second open session.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: operator %s already has an open session", parking.ErrConflict, session.OperatorID)
		}
		return fmt.Errorf("%w: create work session: %v", parking.ErrStorage, err)
	}

	session.ID = row.ID
	session.CreatedAt = row.CreatedAt
	return nil
}

func (r *SessionGormRepository) FindOpen(ctx context.Context, operatorID string) (*parking.WorkSession, error) {
	var row workSessionRow
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND ended_at IS NULL", operatorID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no open session for operator %s", parking.ErrNotFound, operatorID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find open session: %v", parking.ErrStorage, err)
	}

	session := row.toDomain()
	return &session, nil
}

func (r *SessionGormRepository) CloseWithReport(ctx context.Context, session *parking.WorkSession, report parking.ShiftReport) error {
	result := r.db.WithContext(ctx).
		Model(&workSessionRow{}).
		Where("id = ? AND ended_at IS NULL", session.ID).
		Updates(map[string]interface{}{
			"ended_at":          session.EndedAt,
			"entry_count":       report.EntryCount,
			"exit_count":        report.ExitCount,
			"current_occupancy": report.CurrentOccupancy,
			"total_fee":         report.TotalFee,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: close work session: %v", parking.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race: another close already flipped the session.
		return fmt.Errorf("%w: session %d already closed", parking.ErrNotFound, session.ID)
	}

	session.EntryCount = report.EntryCount
	session.ExitCount = report.ExitCount
	session.CurrentOccupancy = report.CurrentOccupancy
	session.TotalFee = report.TotalFee
	return nil
}

func (r *SessionGormRepository) FindByOperator(ctx context.Context, operatorID string, page, pageSize int) ([]parking.WorkSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	base := r.db.WithContext(ctx).
		Model(&workSessionRow{}).
		Where("operator_id = ?", operatorID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count work sessions: %v", parking.ErrStorage, err)
	}

	var rows []workSessionRow
	err := base.
		Order("started_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: find work sessions: %v", parking.ErrStorage, err)
	}

	sessions := make([]parking.WorkSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, total, nil
}

func isUniqueViolation(err error) bool {
	// pgx surfaces SQLSTATE 23505 for unique violations.
	return err != nil && strings.Contains(err.Error(), "23505")
}
