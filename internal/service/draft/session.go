// Package draft stages edits to one lead before committing them.
package draft

import (
	"context"
	"fmt"
	"sync"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/metrics"
	xerrors "dealer-crm-service/internal/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
	StateSaving State = "saving"
)

// LeadCommitter reads and commits leads; LeadService implements it.
type LeadCommitter interface {
	GetLead(ctx context.Context, serial string) (lead.Lead, error)
	ReplaceLead(ctx context.Context, serial string, fields lead.Lead, actor string) (lead.Lead, error)
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	SessionID string     `json:"sessionId,omitempty"`
	State     State      `json:"state"`
	LeadID    string     `json:"leadId,omitempty"`
	Actor     string     `json:"actor,omitempty"`
	Dirty     bool       `json:"dirty"`
	Draft     *lead.Lead `json:"draft,omitempty"`
}

// Session holds at most one draft at a time.
type Session struct {
	mu     sync.Mutex
	leads  LeadCommitter
	logger *zap.Logger

	id     string
	state  State
	leadID string
	actor  string
	draft  lead.Lead
	dirty  bool
}

func NewSession(leads LeadCommitter, logger *zap.Logger) *Session {
	return &Session{
		leads:  leads,
		logger: logger,
		state:  StateClosed,
	}
}

// Open starts editing a copy of leadID. An open draft is discarded first,
// unless the lead cannot be loaded, in which case it is kept.
func (s *Session) Open(ctx context.Context, leadID, actor string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSaving {
		return Snapshot{}, fmt.Errorf("draft for lead %q is being saved: %w", s.leadID, xerrors.ErrSessionNotOpen)
	}

	l, err := s.leads.GetLead(ctx, leadID)
	if err != nil {
		return Snapshot{}, err
	}

	if s.state == StateOpen {
		s.logger.Info("draft discarded", zap.String("session_id", s.id), zap.String("lead_id", s.leadID))
		metrics.RecordDraft(metrics.DraftCancelled)
	}

	s.id = uuid.NewString()
	s.state = StateOpen
	s.leadID = l.SerialNumber
	s.actor = actor
	s.draft = l.Clone()
	s.dirty = false
	metrics.RecordDraft(metrics.DraftOpened)

	s.logger.Info("draft opened",
		zap.String("session_id", s.id),
		zap.String("lead_id", s.leadID),
		zap.String("actor", actor),
	)
	return s.snapshot(), nil
}

// SetField stages a single field value. No cross-field checks happen until Save.
func (s *Session) SetField(name string, value any) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return Snapshot{}, xerrors.ErrSessionNotOpen
	}
	if err := s.draft.SetField(name, value); err != nil {
		return Snapshot{}, err
	}
	s.dirty = true
	return s.snapshot(), nil
}

// Save commits the draft on behalf of actor. On failure the session stays
// open with the draft and dirty flag as they were.
func (s *Session) Save(ctx context.Context, actor string) (lead.Lead, error) {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return lead.Lead{}, xerrors.ErrSessionNotOpen
	}
	s.state = StateSaving
	id, leadID, draft := s.id, s.leadID, s.draft.Clone()
	s.mu.Unlock()

	saved, err := s.leads.ReplaceLead(ctx, leadID, draft, actor)

	s.mu.Lock()
	defer s.mu.Unlock()

	// a Cancel during the commit already closed the session
	current := s.id == id && s.state == StateSaving

	if err != nil {
		if current {
			s.state = StateOpen
		}
		metrics.RecordDraft(metrics.DraftFailed)
		s.logger.Info("draft save failed", zap.String("session_id", id), zap.String("lead_id", leadID), zap.Error(err))
		return lead.Lead{}, err
	}

	if current {
		s.reset()
	}
	metrics.RecordDraft(metrics.DraftSaved)
	s.logger.Info("draft saved", zap.String("session_id", id), zap.String("lead_id", leadID), zap.String("actor", actor))
	return saved, nil
}

// Cancel discards any draft. It never touches the store.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateOpen {
		metrics.RecordDraft(metrics.DraftCancelled)
		s.logger.Info("draft cancelled", zap.String("session_id", s.id), zap.String("lead_id", s.leadID))
	}
	s.reset()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) LeadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leadID
}

// Draft returns a copy of the staged lead; ok is false when no draft is open.
func (s *Session) Draft() (lead.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return lead.Lead{}, false
	}
	return s.draft.Clone(), true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{State: s.state}
	if s.state == StateClosed {
		return snap
	}
	d := s.draft.Clone()
	snap.SessionID = s.id
	snap.LeadID = s.leadID
	snap.Actor = s.actor
	snap.Dirty = s.dirty
	snap.Draft = &d
	return snap
}

func (s *Session) reset() {
	s.id = ""
	s.state = StateClosed
	s.leadID = ""
	s.actor = ""
	s.draft = lead.Lead{}
	s.dirty = false
}
