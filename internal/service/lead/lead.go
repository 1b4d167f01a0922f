// internal/service/lead/lead.go
package lead

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	"dealer-crm-service/internal/metrics"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"go.uber.org/zap"
)

// LeadRepository is implemented by the memory and postgres lead stores.
type LeadRepository interface {
	Create(ctx context.Context, l lead.Lead) (lead.Lead, error)
	Get(ctx context.Context, serial string) (lead.Lead, error)
	Exists(ctx context.Context, serial string) (bool, error)
	// Replace returns the record it replaced and the stored result.
	Replace(ctx context.Context, serial string, fields lead.Lead) (lead.Lead, lead.Lead, error)
	List(ctx context.Context) (iter.Seq[lead.Lead], error)
}

// EventAppender records lifecycle events on the lead's timeline.
type EventAppender interface {
	Append(ctx context.Context, e timeline.Event) (timeline.Event, error)
}

type LeadService struct {
	leads  LeadRepository
	events EventAppender
	engine *query.Engine[lead.Lead]
	logger *zap.Logger
}

func NewLeadService(leads LeadRepository, events EventAppender, logger *zap.Logger) *LeadService {
	return &LeadService{
		leads:  leads,
		events: events,
		engine: lead.NewQueryEngine(),
		logger: logger,
	}
}

// CreateLead stores a new lead and records its "created" event.
func (s *LeadService) CreateLead(ctx context.Context, l lead.Lead, actor string) (lead.Lead, error) {
	created, err := s.leads.Create(ctx, l)
	if err != nil {
		if errors.Is(err, xerrors.ErrValidationFailed) {
			return lead.Lead{}, err
		}
		s.logger.Error("failed to create lead", zap.String("serial_number", l.SerialNumber), zap.Error(err))
		return lead.Lead{}, xerrors.Wrap(err, "failed to create lead")
	}
	metrics.RecordLeadCreated()

	s.record(ctx, timeline.Event{
		LeadID:          created.SerialNumber,
		Timestamp:       created.CreatedDateTime,
		Actor:           actor,
		Category:        timeline.CategoryCreated,
		Description:     fmt.Sprintf("Lead received via %s", orUnknown(created.LeadChannel)),
		ResultingStatus: created.LeadStatus,
	})

	s.logger.Info("lead created",
		zap.String("serial_number", created.SerialNumber),
		zap.String("lead_status", string(created.LeadStatus)),
		zap.String("lead_source", created.LeadSource),
	)
	return created, nil
}

func (s *LeadService) GetLead(ctx context.Context, serial string) (lead.Lead, error) {
	return s.leads.Get(ctx, serial)
}

// ReplaceLead commits the editable fields of serial. A status change is
// recorded on the timeline.
func (s *LeadService) ReplaceLead(ctx context.Context, serial string, fields lead.Lead, actor string) (lead.Lead, error) {
	previous, updated, err := s.leads.Replace(ctx, serial, fields)
	if err != nil {
		if errors.Is(err, xerrors.ErrValidationFailed) {
			metrics.RecordLeadCommit(metrics.ResultInvalid)
			s.logger.Info("lead replace rejected", zap.String("serial_number", serial), zap.Error(err))
			return lead.Lead{}, err
		}
		metrics.RecordLeadCommit(metrics.ResultError)
		if errors.Is(err, xerrors.ErrNotFound) {
			return lead.Lead{}, err
		}
		s.logger.Error("failed to replace lead", zap.String("serial_number", serial), zap.Error(err))
		return lead.Lead{}, xerrors.Wrap(err, "failed to replace lead")
	}
	metrics.RecordLeadCommit(metrics.ResultOK)

	if previous.LeadStatus != updated.LeadStatus || previous.LeadSubStatus != updated.LeadSubStatus {
		category := timeline.CategoryStatusChange
		if updated.OpenClosed == lead.Closed && previous.OpenClosed == lead.Open {
			category = timeline.CategoryClosed
		}
		s.record(ctx, timeline.Event{
			LeadID:          updated.SerialNumber,
			Actor:           actor,
			Category:        category,
			Description:     fmt.Sprintf("%s → %s", statusText(previous), statusText(updated)),
			ResultingStatus: updated.LeadStatus,
		})
	}

	s.logger.Info("lead updated",
		zap.String("serial_number", updated.SerialNumber),
		zap.String("lead_status", string(updated.LeadStatus)),
		zap.String("actor", actor),
	)
	return updated, nil
}

// ListLeads returns every lead matching c in insertion order.
func (s *LeadService) ListLeads(ctx context.Context, c query.Criteria) ([]lead.Lead, error) {
	if err := s.engine.Validate(c); err != nil {
		return nil, err
	}
	all, err := s.leads.List(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to list leads")
	}
	out := slices.Collect(s.engine.Filter(all, c))
	if out == nil {
		out = []lead.Lead{}
	}
	return out, nil
}

// record appends a lifecycle event. The lead is already committed, so a
// failure here is logged rather than returned.
func (s *LeadService) record(ctx context.Context, e timeline.Event) {
	if s.events == nil {
		return
	}
	appended, err := s.events.Append(ctx, e)
	if err != nil {
		s.logger.Warn("failed to record timeline event",
			zap.String("lead_id", e.LeadID),
			zap.String("category", string(e.Category)),
			zap.Error(err),
		)
		return
	}
	metrics.RecordTimelineEvent(string(appended.Category))
}

func statusText(l lead.Lead) string {
	if l.LeadSubStatus == "" {
		return string(l.LeadStatus)
	}
	return fmt.Sprintf("%s (%s)", l.LeadStatus, l.LeadSubStatus)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown channel"
	}
	return s
}
