package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

// LeadChecker answers whether a lead exists.
type LeadChecker interface {
	Exists(ctx context.Context, serial string) (bool, error)
}

// TimelineLog is an append-only event log per lead, kept ordered by
// timestamp and then append sequence.
type TimelineLog struct {
	mu      sync.RWMutex
	leads   LeadChecker
	events  map[string][]timeline.Event
	seq     uint64
	entropy io.Reader
	engine  *query.Engine[timeline.Event]
	now     func() time.Time
}

func NewTimelineLog(leads LeadChecker) *TimelineLog {
	return &TimelineLog{
		leads:   leads,
		events:  make(map[string][]timeline.Event),
		entropy: ulid.Monotonic(rand.Reader, 0),
		engine:  timeline.NewQueryEngine(),
		now:     time.Now,
	}
}

// Append records e against its lead and returns it with id and sequence set.
func (l *TimelineLog) Append(ctx context.Context, e timeline.Event) (timeline.Event, error) {
	if err := e.Prepare(l.now().UTC()); err != nil {
		return timeline.Event{}, err
	}

	ok, err := l.leads.Exists(ctx, e.LeadID)
	if err != nil {
		return timeline.Event{}, fmt.Errorf("failed to check lead: %w", err)
	}
	if !ok {
		return timeline.Event{}, fmt.Errorf("lead %q: %w", e.LeadID, xerrors.ErrNotFound)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(l.now()), l.entropy)
	if err != nil {
		return timeline.Event{}, fmt.Errorf("failed to generate event id: %w", err)
	}
	l.seq++
	e.ID = id.String()
	e.Sequence = l.seq

	list := l.events[e.LeadID]
	pos, _ := slices.BinarySearchFunc(list, e, func(have, want timeline.Event) int {
		if have.Before(want) {
			return -1
		}
		return 1
	})
	l.events[e.LeadID] = slices.Insert(list, pos, e)

	return e, nil
}

// EventsFor yields the events of a lead in time order. An unknown lead
// yields nothing.
func (l *TimelineLog) EventsFor(_ context.Context, leadID string) (iter.Seq[timeline.Event], error) {
	leadID = strings.TrimSpace(leadID)
	return func(yield func(timeline.Event) bool) {
		l.mu.RLock()
		list := slices.Clone(l.events[leadID])
		l.mu.RUnlock()

		for _, e := range list {
			if !yield(e) {
				return
			}
		}
	}, nil
}

// Filter narrows the events of a lead with c without touching the log.
func (l *TimelineLog) Filter(ctx context.Context, leadID string, c query.Criteria) ([]timeline.Event, error) {
	if err := l.engine.Validate(c); err != nil {
		return nil, err
	}
	seq, err := l.EventsFor(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return slices.Collect(l.engine.Filter(seq, c)), nil
}
