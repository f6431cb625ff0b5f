package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/ocr"
)

// memoryEventRepo is an in-memory EventRepository for service tests.
type memoryEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events []parking.RecognitionEvent

	appendErr error
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{nextID: 1}
}

func (r *memoryEventRepo) Append(ctx context.Context, event *parking.RecognitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.appendErr != nil {
		return r.appendErr
	}
	if event.CapturedAt.IsZero() {
		return fmt.Errorf("%w: captured_at is required", parking.ErrValidation)
	}

	event.ID = r.nextID
	r.nextID++
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryEventRepo) matches(e parking.RecognitionEvent, filter parking.EventFilter) bool {
	if filter.Direction != "" && e.Direction != filter.Direction {
		return false
	}
	if filter.VehicleClass != "" && e.VehicleClass != filter.VehicleClass {
		return false
	}
	if !filter.From.IsZero() && e.CapturedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !e.CapturedAt.Before(filter.To) {
		return false
	}
	if filter.PlateContains != "" && !strings.Contains(e.PlateNumber, filter.PlateContains) {
		return false
	}
	return true
}

func (r *memoryEventRepo) Find(ctx context.Context, filter parking.EventFilter) ([]parking.RecognitionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []parking.RecognitionEvent
	for _, e := range r.events {
		if r.matches(e, filter) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].CapturedAt.After(out[j].CapturedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memoryEventRepo) FindPage(ctx context.Context, filter parking.EventFilter, page, pageSize int) ([]parking.RecognitionEvent, int64, error) {
	all, err := r.Find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// memorySessionRepo is an in-memory SessionRepository.
type memorySessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions []parking.WorkSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{nextID: 1}
}

func (r *memorySessionRepo) CreateOpen(ctx context.Context, session *parking.WorkSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.OperatorID == session.OperatorID && s.EndedAt == nil {
			return fmt.Errorf("%w: operator %s already has an open session", parking.ErrConflict, session.OperatorID)
		}
	}

	session.ID = r.nextID
	r.nextID++
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *memorySessionRepo) FindOpen(ctx context.Context, operatorID string) (*parking.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.EndedAt == nil {
			found := s
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: no open session for operator %s", parking.ErrNotFound, operatorID)
}

func (r *memorySessionRepo) CloseWithReport(ctx context.Context, session *parking.WorkSession, report parking.ShiftReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sessions {
		if s.ID == session.ID && s.EndedAt == nil {
			r.sessions[i].EndedAt = session.EndedAt
			r.sessions[i].EntryCount = report.EntryCount
			r.sessions[i].ExitCount = report.ExitCount
			r.sessions[i].CurrentOccupancy = report.CurrentOccupancy
			r.sessions[i].TotalFee = report.TotalFee

			session.EntryCount = report.EntryCount
			session.ExitCount = report.ExitCount
			session.CurrentOccupancy = report.CurrentOccupancy
			session.TotalFee = report.TotalFee
			return nil
		}
	}
	return fmt.Errorf("%w: session %d already closed", parking.ErrNotFound, session.ID)
}

func (r *memorySessionRepo) FindByOperator(ctx context.Context, operatorID string, page, pageSize int) ([]parking.WorkSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []parking.WorkSession
	for _, s := range r.sessions {
		if s.OperatorID == operatorID {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// fakeEngine is a scripted OCR engine.
type fakeEngine struct {
	detections []ocr.Detection
	err        error
}

func (e *fakeEngine) Recognize(ctx context.Context, image []byte) ([]ocr.Detection, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.detections, nil
}

// fakeImageStore records saved images.
type fakeImageStore struct {
	saved int
	err   error
}

func (s *fakeImageStore) Save(category parking.Category, image []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	return fmt.Sprintf("%s/%d.jpg", category, s.saved), nil
}

func mustAppend(r *memoryEventRepo, plate string, direction parking.Direction, class parking.VehicleClass, at time.Time) {
	event := &parking.RecognitionEvent{
		PlateNumber:  plate,
		Direction:    direction,
		VehicleClass: class,
		CapturedAt:   at,
	}
	if err := r.Append(context.Background(), event); err != nil {
		panic(err)
	}
}
