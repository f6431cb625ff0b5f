package repository

import (
	"context"

	"parklot-service/internal/domain/parking"
)

// EventRepository is the append-only store of recognition events.
type EventRepository interface {
	// Append persists a new event and assigns its ID.
	Append(ctx context.Context, event *parking.RecognitionEvent) error
	// Find returns events matching the filter, ordered by captured_at
	// descending with id descending as tie-break.
	Find(ctx context.Context, filter parking.EventFilter) ([]parking.RecognitionEvent, error)
	// FindPage is Find with limit/offset pagination; total is the number
	// of matching rows before paging.
	FindPage(ctx context.Context, filter parking.EventFilter, page, pageSize int) (items []parking.RecognitionEvent, total int64, err error)
}

// SessionRepository owns work-session rows.
type SessionRepository interface {
	// CreateOpen inserts a new open session for the operator. Returns
	// parking.ErrConflict if an open session already exists.
	CreateOpen(ctx context.Context, session *parking.WorkSession) error
	// FindOpen returns the operator's open session or parking.ErrNotFound.
	FindOpen(ctx context.Context, operatorID string) (*parking.WorkSession, error)
	// CloseWithReport sets ended_at and the reconciled counters on the
	// session, guarded by a compare-and-set on the open state. Returns
	// parking.ErrNotFound if the session was already closed.
	CloseWithReport(ctx context.Context, session *parking.WorkSession, report parking.ShiftReport) error
	// FindByOperator lists the operator's sessions, newest first.
	FindByOperator(ctx context.Context, operatorID string, page, pageSize int) (items []parking.WorkSession, total int64, err error)
}
