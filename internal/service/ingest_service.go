package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"parklot-service/internal/domain/parking"
	"parklot-service/internal/imagestore"
	"parklot-service/internal/metrics"
	"parklot-service/internal/ocr"
	"parklot-service/internal/repository"
)

// IngestService turns a captured image into a stored recognition event.
type IngestService struct {
	events  repository.EventRepository
	images  imagestore.Store
	engine  ocr.Engine
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewIngestService(
	events repository.EventRepository,
	images imagestore.Store,
	engine ocr.Engine,
	m *metrics.Metrics,
	log zerolog.Logger,
) *IngestService {
	return &IngestService{
		events:  events,
		images:  images,
		engine:  engine,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Ingest stores the image, runs OCR, and appends exactly one event.
// OCR failure or an empty detection list degrades to the unknown plate;
// image-store and event-store failures abort the call with nothing
// half-written (the image is persisted before the row so the ref always
// resolves).
func (s *IngestService) Ingest(ctx context.Context, image []byte, category parking.Category) (*parking.RecognitionEvent, error) {
	started := s.now()
	defer func() {
		s.metrics.ObserveIngest(time.Since(started))
	}()

	direction, class, ok := parking.CategorySpec(category)
	if !ok {
		return nil, fmt.Errorf("%w: invalid category %q", parking.ErrValidation, category)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image data is required", parking.ErrValidation)
	}

	imageRef, err := s.images.Save(category, image)
	if err != nil {
		s.log.Error().Err(err).Str("category", string(category)).Msg("failed to persist captured image")
		return nil, err
	}

	plate := parking.UnknownPlate
	var raw datatypes.JSON

	detections, err := s.engine.Recognize(ctx, image)
	switch {
	case err != nil:
		// Degraded recognition, not a failure: the event is still recorded.
		s.metrics.IncDegraded()
		s.log.Warn().Err(err).Str("category", string(category)).Msg("ocr failed, recording unknown plate")
	case len(detections) == 0:
		s.metrics.IncDegraded()
		s.log.Warn().Str("category", string(category)).Msg("ocr found no detections, recording unknown plate")
	default:
		best, _ := ocr.Best(detections)
		plate = best.Text
		raw = encodeDetections(detections)
	}

	event := &parking.RecognitionEvent{
		PlateNumber:   plate,
		Direction:     direction,
		VehicleClass:  class,
		CapturedAt:    s.now(),
		ImageRef:      &imageRef,
		RawDetections: raw,
	}

	if err := s.events.Append(ctx, event); err != nil {
		s.log.Error().
			Err(err).
			Str("category", string(category)).
			Str("image_ref", imageRef).
			Msg("failed to append recognition event")
		return nil, err
	}

	s.metrics.IncIngested(string(category))
	s.log.Info().
		Int64("event_id", event.ID).
		Str("plate", event.PlateNumber).
		Str("category", string(category)).
		Str("image_ref", imageRef).
		Time("captured_at", event.CapturedAt).
		Msg("recognition event ingested")

	return event, nil
}

func encodeDetections(detections []ocr.Detection) datatypes.JSON {
	data, err := json.Marshal(detections)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
