package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/repository"
	"parklot-service/internal/utils"
)

// DefaultAlertWindow bounds the recent-alerts view when the caller does
// not pass one.
const DefaultAlertWindow = 3 * time.Hour

// QueryService is the read-side facade consumed by the rendering and
// export collaborators.
type QueryService struct {
	events repository.EventRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewQueryService(events repository.EventRepository, log zerolog.Logger) *QueryService {
	return &QueryService{
		events: events,
		now:    time.Now,
		log:    log,
	}
}

// EventPage is one page of a paginated event listing.
type EventPage struct {
	Items      []parking.RecognitionEvent `json:"items"`
	Page       int                        `json:"page"`
	TotalPages int                        `json:"total_pages"`
}

// ListByCategory pages through one capture category, newest first.
func (s *QueryService) ListByCategory(ctx context.Context, category parking.Category, page, pageSize int) (*EventPage, error) {
	direction, class, ok := parking.CategorySpec(category)
	if !ok {
		return nil, fmt.Errorf("%w: invalid category %q", parking.ErrValidation, category)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	items, total, err := s.events.FindPage(ctx, categoryFilter(direction, class), page, pageSize)
	if err != nil {
		return nil, err
	}

	return &EventPage{
		Items:      items,
		Page:       page,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// List pages through events matching an arbitrary filter.
func (s *QueryService) List(ctx context.Context, filter parking.EventFilter, page, pageSize int) (*EventPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	items, total, err := s.events.FindPage(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &EventPage{
		Items:      items,
		Page:       page,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// SearchByPlateFragment looks a plate fragment up across all capture
// categories. Only an exactly-four-digit fragment is searchable; any
// other shape yields an empty result without error.
func (s *QueryService) SearchByPlateFragment(ctx context.Context, fragment string) (map[parking.Category][]parking.RecognitionEvent, error) {
	results := make(map[parking.Category][]parking.RecognitionEvent)
	if !utils.IsPlateFragment(fragment) {
		return results, nil
	}

	for _, category := range parking.Categories {
		direction, class, _ := parking.CategorySpec(category)
		filter := categoryFilter(direction, class)
		filter.PlateContains = fragment

		events, err := s.events.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		results[category] = events
	}

	return results, nil
}

// RecentAlerts returns events captured within the trailing window.
func (s *QueryService) RecentAlerts(ctx context.Context, window time.Duration) ([]parking.RecognitionEvent, error) {
	if window <= 0 {
		window = DefaultAlertWindow
	}

	return s.events.Find(ctx, parking.EventFilter{
		From: s.now().Add(-window),
	})
}

// categoryFilter rebuilds the legacy per-category queries: directional
// categories filter on direction only, class categories on class only.
func categoryFilter(direction parking.Direction, class parking.VehicleClass) parking.EventFilter {
	filter := parking.EventFilter{}
	if direction != parking.DirectionUnknown {
		filter.Direction = direction
	}
	if class != parking.ClassNormal {
		filter.VehicleClass = class
	}
	return filter
}
