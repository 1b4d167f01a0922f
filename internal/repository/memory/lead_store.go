// Package memory holds the in-process lead store and timeline log.
package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"dealer-crm-service/internal/domain/lead"
	xerrors "dealer-crm-service/internal/pkg/errors"
)

type LeadStore struct {
	mu    sync.RWMutex
	order []string
	leads map[string]lead.Lead
	now   func() time.Time
}

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[string]lead.Lead),
		now:   time.Now,
	}
}

// Create stores a new lead. A zero creation time is stamped with now.
func (s *LeadStore) Create(_ context.Context, l lead.Lead) (lead.Lead, error) {
	l = l.Clone()
	l.Normalize()
	if l.CreatedDateTime.IsZero() {
		l.CreatedDateTime = s.now().UTC()
	}
	if err := l.Validate(); err != nil {
		return lead.Lead{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[l.SerialNumber]; exists {
		verr := &xerrors.ValidationError{Cause: xerrors.ErrDuplicateEntry}
		verr.Add(lead.FieldSerialNumber, "%q already exists", l.SerialNumber)
		return lead.Lead{}, verr
	}

	s.leads[l.SerialNumber] = l
	s.order = append(s.order, l.SerialNumber)
	return l.Clone(), nil
}

func (s *LeadStore) Get(_ context.Context, serial string) (lead.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[strings.TrimSpace(serial)]
	if !ok {
		return lead.Lead{}, fmt.Errorf("lead %q: %w", serial, xerrors.ErrNotFound)
	}
	return l.Clone(), nil
}

func (s *LeadStore) Exists(_ context.Context, serial string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.leads[strings.TrimSpace(serial)]
	return ok, nil
}

// Replace overwrites every editable field of a lead with those of fields
// and returns the record it replaced alongside the new one. The write is
// rejected whole when the result breaks an invariant.
func (s *LeadStore) Replace(_ context.Context, serial string, fields lead.Lead) (lead.Lead, lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.leads[strings.TrimSpace(serial)]
	if !ok {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("lead %q: %w", serial, xerrors.ErrNotFound)
	}

	next := current.WithEditable(fields)
	if err := next.Validate(); err != nil {
		return lead.Lead{}, lead.Lead{}, err
	}

	s.leads[next.SerialNumber] = next
	return current.Clone(), next.Clone(), nil
}

// List yields copies of all leads in insertion order. Every range over the
// sequence reads the store afresh.
func (s *LeadStore) List(_ context.Context) (iter.Seq[lead.Lead], error) {
	return func(yield func(lead.Lead) bool) {
		s.mu.RLock()
		keys := slices.Clone(s.order)
		s.mu.RUnlock()

		for _, k := range keys {
			s.mu.RLock()
			l, ok := s.leads[k]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(l.Clone()) {
				return
			}
		}
	}, nil
}
