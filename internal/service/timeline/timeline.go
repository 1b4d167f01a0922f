// internal/service/timeline/timeline.go
package timeline

import (
	"context"
	"errors"
	"fmt"

	"dealer-crm-service/internal/domain/timeline"
	"dealer-crm-service/internal/metrics"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"go.uber.org/zap"
)

type EventRepository interface {
	Append(ctx context.Context, e timeline.Event) (timeline.Event, error)
	Filter(ctx context.Context, leadID string, c query.Criteria) ([]timeline.Event, error)
}

type LeadChecker interface {
	Exists(ctx context.Context, serial string) (bool, error)
}

type TimelineService struct {
	events EventRepository
	leads  LeadChecker
	logger *zap.Logger
}

func NewTimelineService(events EventRepository, leads LeadChecker, logger *zap.Logger) *TimelineService {
	return &TimelineService{
		events: events,
		leads:  leads,
		logger: logger,
	}
}

// RecordEvent appends an interaction to the lead's journey.
func (s *TimelineService) RecordEvent(ctx context.Context, leadID string, req timeline.RecordEventRequest, actor string) (timeline.Event, error) {
	e, err := s.events.Append(ctx, req.ToEvent(leadID, actor))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) || errors.Is(err, xerrors.ErrValidationFailed) {
			return timeline.Event{}, err
		}
		s.logger.Error("failed to record event", zap.String("lead_id", leadID), zap.Error(err))
		return timeline.Event{}, xerrors.Wrap(err, "failed to record event")
	}
	metrics.RecordTimelineEvent(string(e.Category))

	s.logger.Info("timeline event recorded",
		zap.String("lead_id", e.LeadID),
		zap.String("event_id", e.ID),
		zap.String("category", string(e.Category)),
		zap.String("actor", e.Actor),
	)
	return e, nil
}

// Journey returns the lead's events in time order, narrowed by c.
func (s *TimelineService) Journey(ctx context.Context, leadID string, c query.Criteria) ([]timeline.Event, error) {
	ok, err := s.leads.Exists(ctx, leadID)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to check lead")
	}
	if !ok {
		return nil, fmt.Errorf("lead %q: %w", leadID, xerrors.ErrNotFound)
	}

	events, err := s.events.Filter(ctx, leadID, c)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []timeline.Event{}
	}
	return events, nil
}
