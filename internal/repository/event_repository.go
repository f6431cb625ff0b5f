package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"parklot-service/internal/domain/parking"
)

type EventGormRepository struct {
	db *gorm.DB
}

func NewEventGormRepository(db *gorm.DB) *EventGormRepository {
	return &EventGormRepository{db: db}
}

type recognitionEventRow struct {
	ID            int64          `gorm:"primaryKey"`
	PlateNumber   string         `gorm:"not null"`
	Direction     string         `gorm:"not null"`
	VehicleClass  string         `gorm:"not null"`
	CapturedAt    time.Time      `gorm:"not null"`
	ImageRef      *string
	PhoneNumber   *string
	RawDetections datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

func (recognitionEventRow) TableName() string {
	return "recognition_events"
}

func (row recognitionEventRow) toDomain() parking.RecognitionEvent {
	return parking.RecognitionEvent{
		ID:            row.ID,
		PlateNumber:   row.PlateNumber,
		Direction:     parking.Direction(row.Direction),
		VehicleClass:  parking.VehicleClass(row.VehicleClass),
		CapturedAt:    row.CapturedAt,
		ImageRef:      row.ImageRef,
		PhoneNumber:   row.PhoneNumber,
		RawDetections: row.RawDetections,
		CreatedAt:     row.CreatedAt,
	}
}

func (r *EventGormRepository) Append(ctx context.Context, event *parking.RecognitionEvent) error {
	if event.CapturedAt.IsZero() {
		return fmt.Errorf("%w: captured_at is required", parking.ErrValidation)
	}
	switch event.Direction {
	case parking.DirectionEntry, parking.DirectionExit, parking.DirectionUnknown:
	default:
		return fmt.Errorf("%w: invalid direction %q", parking.ErrValidation, event.Direction)
	}
	switch event.VehicleClass {
	case parking.ClassNormal, parking.ClassLight, parking.ClassDisabled, parking.ClassIllegal:
	default:
		return fmt.Errorf("%w: invalid vehicle class %q", parking.ErrValidation, event.VehicleClass)
	}

	row := recognitionEventRow{
		PlateNumber:   event.PlateNumber,
		Direction:     string(event.Direction),
		VehicleClass:  string(event.VehicleClass),
		CapturedAt:    event.CapturedAt,
		ImageRef:      event.ImageRef,
		PhoneNumber:   event.PhoneNumber,
		RawDetections: event.RawDetections,
		CreatedAt:     time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: append recognition event: %v", parking.ErrStorage, err)
	}

	event.ID = row.ID
	event.CreatedAt = row.CreatedAt
	return nil
}

func (r *EventGormRepository) applyFilter(query *gorm.DB, filter parking.EventFilter) *gorm.DB {
	if filter.Direction != "" {
		query = query.Where("direction = ?", string(filter.Direction))
	}
	if filter.VehicleClass != "" {
		query = query.Where("vehicle_class = ?", string(filter.VehicleClass))
	}
	if !filter.From.IsZero() {
		query = query.Where("captured_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("captured_at < ?", filter.To)
	}
	if filter.PlateContains != "" {
		query = query.Where("plate_number LIKE ?", "%"+filter.PlateContains+"%")
	}
	return query
}

func (r *EventGormRepository) Find(ctx context.Context, filter parking.EventFilter) ([]parking.RecognitionEvent, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&recognitionEventRow{}), filter).
		Order("captured_at DESC").
		Order("id DESC")

	var rows []recognitionEventRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find recognition events: %v", parking.ErrStorage, err)
	}

	events := make([]parking.RecognitionEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, nil
}

func (r *EventGormRepository) FindPage(ctx context.Context, filter parking.EventFilter, page, pageSize int) ([]parking.RecognitionEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	base := r.applyFilter(r.db.WithContext(ctx).Model(&recognitionEventRow{}), filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count recognition events: %v", parking.ErrStorage, err)
	}

	var rows []recognitionEventRow
	err := base.
		Order("captured_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: find recognition events: %v", parking.ErrStorage, err)
	}

	events := make([]parking.RecognitionEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, total, nil
}
