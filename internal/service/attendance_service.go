package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/metrics"
	"parklot-service/internal/repository"
)

// AttendanceService manages operator work sessions and reconciles each
// shift window at close time.
type AttendanceService struct {
	sessions repository.SessionRepository
	events   repository.EventRepository
	policy   parking.BillingPolicy
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	// Per-operator locks serialize open/close so the check-then-write
	// sequence never interleaves for one operator. The repository's
	// partial unique index and CAS close back this up across processes.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAttendanceService(
	sessions repository.SessionRepository,
	events repository.EventRepository,
	policy parking.BillingPolicy,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		sessions: sessions,
		events:   events,
		policy:   policy,
		metrics:  m,
		log:      log,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *AttendanceService) operatorLock(operatorID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[operatorID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[operatorID] = lock
	}
	return lock
}

// Open starts a work session for the operator. Fails with ErrConflict if
// one is already open.
func (s *AttendanceService) Open(ctx context.Context, operatorID string) (*parking.WorkSession, error) {
	if operatorID == "" {
		return nil, fmt.Errorf("%w: operator id is required", parking.ErrValidation)
	}

	lock := s.operatorLock(operatorID)
	lock.Lock()
	defer lock.Unlock()

	session := &parking.WorkSession{
		OperatorID: operatorID,
		StartedAt:  s.now(),
	}
	if err := s.sessions.CreateOpen(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.IncOpened()
	s.log.Info().
		Int64("session_id", session.ID).
		Str("operator_id", operatorID).
		Time("started_at", session.StartedAt).
		Msg("work session opened")

	return session, nil
}

// Close ends the operator's open session. The shift window
// [started_at, ended_at) is reconciled and the computed counters are
// persisted atomically with ended_at; a session is never observable as
// closed but uncomputed. Fails with ErrNotFound if no session is open.
func (s *AttendanceService) Close(ctx context.Context, operatorID string) (*parking.WorkSession, error) {
	if operatorID == "" {
		return nil, fmt.Errorf("%w: operator id is required", parking.ErrValidation)
	}

	lock := s.operatorLock(operatorID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.FindOpen(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	endedAt := s.now()
	session.EndedAt = &endedAt

	report, err := s.reconcileWindow(ctx, session.StartedAt, endedAt)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.CloseWithReport(ctx, session, report); err != nil {
		return nil, err
	}

	s.metrics.IncClosed()
	s.log.Info().
		Int64("session_id", session.ID).
		Str("operator_id", operatorID).
		Int("entry_count", report.EntryCount).
		Int("exit_count", report.ExitCount).
		Int("current_occupancy", report.CurrentOccupancy).
		Int64("total_fee", report.TotalFee).
		Msg("work session closed")

	return session, nil
}

func (s *AttendanceService) reconcileWindow(ctx context.Context, from, to time.Time) (parking.ShiftReport, error) {
	entryEvents, err := s.events.Find(ctx, parking.EventFilter{
		Direction: parking.DirectionEntry,
		From:      from,
		To:        to,
	})
	if err != nil {
		return parking.ShiftReport{}, fmt.Errorf("load entry events: %w", err)
	}

	exitEvents, err := s.events.Find(ctx, parking.EventFilter{
		Direction: parking.DirectionExit,
		From:      from,
		To:        to,
	})
	if err != nil {
		return parking.ShiftReport{}, fmt.Errorf("load exit events: %w", err)
	}

	return Reconcile(entryEvents, exitEvents, to, s.policy), nil
}

// History lists the operator's past and current sessions, newest first.
func (s *AttendanceService) History(ctx context.Context, operatorID string, page, pageSize int) ([]parking.WorkSession, int, error) {
	if operatorID == "" {
		return nil, 0, fmt.Errorf("%w: operator id is required", parking.ErrValidation)
	}
	if pageSize < 1 {
		pageSize = 10
	}

	sessions, total, err := s.sessions.FindByOperator(ctx, operatorID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return sessions, totalPages, nil
}
