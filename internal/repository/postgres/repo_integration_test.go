//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, time.February, 2, 8, 0, 0, 0, time.UTC)

// testDB applies the schema inside a throwaway Postgres schema of the
// database named by TEST_DATABASE_URL:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	name := "crm_test_" + strings.ToLower(ulid.Make().String())
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+name+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = name
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := NewDB(pool)
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func seedLead(t *testing.T, repo *LeadRepository, serial string, status lead.Status) lead.Lead {
	t.Helper()
	l, err := repo.Create(context.Background(), lead.Lead{
		SerialNumber:    serial,
		CreatedDateTime: created,
		FirstName:       "Amira",
		City:            "Abu Dhabi",
		LeadStatus:      status,
	})
	require.NoError(t, err)
	return l
}

func TestLeadRepository_CreateDuplicate(t *testing.T) {
	repo := NewLeadRepository(testDB(t))
	seedLead(t, repo, "010", lead.StatusActive)

	_, err := repo.Create(context.Background(), lead.Lead{SerialNumber: "010", CreatedDateTime: created, LeadStatus: lead.StatusFollowUp})
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))
	assert.True(t, errors.Is(err, xerrors.ErrDuplicateEntry))
	assert.Equal(t, []string{lead.FieldSerialNumber}, fieldNames(err))

	got, err := repo.Get(context.Background(), "010")
	require.NoError(t, err)
	assert.Equal(t, lead.StatusActive, got.LeadStatus)
}

func TestLeadRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository(testDB(t))
	seedLead(t, repo, "010", lead.StatusActive)

	fields := lead.Lead{
		SerialNumber:    "ignored",
		CreatedDateTime: created.Add(48 * time.Hour),
		FirstName:       "Amira",
		City:            "Dubai",
		Trim:            "Platinum",
		LeadStatus:      lead.StatusConverted,
		LeadSubStatus:   lead.SubStatusSold,
	}
	previous, updated, err := repo.Replace(ctx, "010", fields)
	require.NoError(t, err)
	assert.Equal(t, lead.StatusActive, previous.LeadStatus)
	assert.Equal(t, "Abu Dhabi", previous.City)
	assert.Equal(t, "010", updated.SerialNumber)
	assert.True(t, created.Equal(updated.CreatedDateTime))
	assert.Equal(t, lead.Closed, updated.OpenClosed)

	stored, err := repo.Get(ctx, "010")
	require.NoError(t, err)
	assert.Equal(t, "Dubai", stored.City)
	assert.Equal(t, "Platinum", stored.Trim)
	assert.Equal(t, lead.SubStatusSold, stored.LeadSubStatus)
	assert.True(t, created.Equal(stored.CreatedDateTime))
}

func TestLeadRepository_ReplaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository(testDB(t))
	seedLead(t, repo, "010", lead.StatusActive)

	early := created.Add(-time.Hour)
	fields := lead.Lead{
		City:                   "Sharjah",
		LeadStatus:             lead.StatusActive,
		LeadSubStatus:          lead.SubStatusDelivered,
		FirstContactedDateTime: &early,
	}
	_, _, err := repo.Replace(ctx, "010", fields)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))
	assert.Equal(t, []string{lead.FieldLeadSubStatus, lead.FieldFirstContactedDateTime}, fieldNames(err))

	stored, err := repo.Get(ctx, "010")
	require.NoError(t, err)
	assert.Equal(t, "Abu Dhabi", stored.City)
	assert.Empty(t, stored.LeadSubStatus)
	assert.Nil(t, stored.FirstContactedDateTime)

	_, _, err = repo.Replace(ctx, "404", fields)
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestLeadRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository(testDB(t))
	for _, serial := range []string{"003", "001", "002"} {
		seedLead(t, repo, serial, lead.StatusActive)
	}

	seq, err := repo.List(ctx)
	require.NoError(t, err)
	var got []string
	for l := range seq {
		got = append(got, l.SerialNumber)
	}
	assert.Equal(t, []string{"003", "001", "002"}, got)
}

func TestTimelineRepository_AppendUnknownLead(t *testing.T) {
	repo := NewTimelineRepository(testDB(t))

	_, err := repo.Append(context.Background(), timeline.Event{LeadID: "404", Category: timeline.CategoryNote})
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestTimelineRepository_FilterByCategory(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedLead(t, NewLeadRepository(db), "010", lead.StatusActive)
	repo := NewTimelineRepository(db)

	for i, c := range []timeline.Category{
		timeline.CategoryCreated, timeline.CategoryContacted, timeline.CategoryNote, timeline.CategoryContacted,
	} {
		e, err := repo.Append(ctx, timeline.Event{
			LeadID:    "010",
			Timestamp: created.Add(time.Duration(i) * time.Hour),
			Actor:     "Hala",
			Category:  c,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.NotZero(t, e.Sequence)
	}

	got, err := repo.Filter(ctx, "010", query.Criteria{Discrete: map[string]string{"category": "Contacted"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, timeline.CategoryContacted, e.Category)
	}
	assert.True(t, got[0].Before(got[1]))

	got, err = repo.Filter(ctx, "010", query.Criteria{Discrete: map[string]string{"category": query.All}})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	seq, err := repo.EventsFor(ctx, "010")
	require.NoError(t, err)
	all := slices.Collect(seq)
	require.Len(t, all, 4)
	assert.Equal(t, timeline.CategoryCreated, all[0].Category)
}

func fieldNames(err error) []string {
	var out []string
	for _, f := range xerrors.FieldsOf(err) {
		out = append(out, f.Field)
	}
	return out
}
