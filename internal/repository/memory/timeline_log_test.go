package memory

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T, serials ...string) *TimelineLog {
	t.Helper()
	store := NewLeadStore()
	for _, s := range serials {
		_, err := store.Create(context.Background(), newLead(s, lead.StatusActive))
		require.NoError(t, err)
	}
	return NewTimelineLog(store)
}

func collect(t *testing.T, log *TimelineLog, leadID string) []timeline.Event {
	t.Helper()
	seq, err := log.EventsFor(context.Background(), leadID)
	require.NoError(t, err)
	return slices.Collect(seq)
}

func TestTimelineLog_AppendKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	log := newLog(t, "010")

	first, err := log.Append(ctx, timeline.Event{LeadID: "010", Category: timeline.CategoryContacted, Actor: "Amira"})
	require.NoError(t, err)
	second, err := log.Append(ctx, timeline.Event{LeadID: "010", Category: timeline.CategoryQuotation, Actor: "Hala"})
	require.NoError(t, err)

	events := collect(t, log, "010")
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0])
	assert.Equal(t, second, events[1])
	assert.Equal(t, "Amira", events[0].Actor)
	assert.Equal(t, "Hala", events[1].Actor)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.Sequence, second.Sequence)
}

func TestTimelineLog_AppendUnknownLead(t *testing.T) {
	log := newLog(t, "010")
	_, err := log.Append(context.Background(), timeline.Event{LeadID: "404", Category: timeline.CategoryNote})
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
	assert.Empty(t, collect(t, log, "404"))
}

func TestTimelineLog_AppendRejectsBadCategory(t *testing.T) {
	log := newLog(t, "010")
	_, err := log.Append(context.Background(), timeline.Event{LeadID: "010", Category: "phoned"})
	assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))
	assert.Empty(t, collect(t, log, "010"))
}

func TestTimelineLog_BackdatedEventSortsByTimestamp(t *testing.T) {
	ctx := context.Background()
	log := newLog(t, "010")
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{base, base.Add(2 * time.Hour), base.Add(time.Hour), base.Add(time.Hour)} {
		_, err := log.Append(ctx, timeline.Event{LeadID: "010", Category: timeline.CategoryNote, Timestamp: at})
		require.NoError(t, err)
	}

	events := collect(t, log, "010")
	require.Len(t, events, 4)
	assert.True(t, slices.IsSortedFunc(events, func(a, b timeline.Event) int {
		if a.Before(b) {
			return -1
		}
		return 1
	}))
	assert.Equal(t, []uint64{1, 3, 4, 2}, []uint64{events[0].Sequence, events[1].Sequence, events[2].Sequence, events[3].Sequence})
}

func TestTimelineLog_AppendedEventsNeverChange(t *testing.T) {
	ctx := context.Background()
	log := newLog(t, "010", "011")

	var appended []timeline.Event
	for i := 0; i < 20; i++ {
		leadID := "010"
		if i%3 == 0 {
			leadID = "011"
		}
		e, err := log.Append(ctx, timeline.Event{LeadID: leadID, Category: timeline.CategoryFollowUp})
		require.NoError(t, err)
		if leadID == "010" {
			appended = append(appended, e)
		}

		got := collect(t, log, "010")
		require.Len(t, got, len(appended))
		for j, want := range appended {
			assert.Equal(t, want, got[j])
		}
	}
}

func TestTimelineLog_Filter(t *testing.T) {
	ctx := context.Background()
	log := newLog(t, "010")
	for _, e := range []timeline.Event{
		{LeadID: "010", Category: timeline.CategoryContacted, Actor: "Amira", Description: "First call"},
		{LeadID: "010", Category: timeline.CategoryTestDrive, Actor: "Hala", Description: "Patrol test drive"},
		{LeadID: "010", Category: timeline.CategoryContacted, Actor: "Hala", Description: "Follow-up call"},
	} {
		_, err := log.Append(ctx, e)
		require.NoError(t, err)
	}

	got, err := log.Filter(ctx, "010", query.Criteria{Discrete: map[string]string{"category": "contacted"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = log.Filter(ctx, "010", query.Criteria{Query: "CALL", Discrete: map[string]string{"actor": "Hala"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Follow-up call", got[0].Description)

	_, err = log.Filter(ctx, "010", query.Criteria{Discrete: map[string]string{"category": "phoned"}})
	assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))

	assert.Len(t, collect(t, log, "010"), 3)
}
