package lead

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

func validLead() Lead {
	l := Lead{
		SerialNumber:    "010",
		CreatedDateTime: created,
		FirstName:       "Fatima",
		LastName:        "Khan",
		LeadStatus:      StatusActive,
	}
	l.Normalize()
	return l
}

func fieldNames(err error) []string {
	var out []string
	for _, f := range xerrors.FieldsOf(err) {
		out = append(out, f.Field)
	}
	return out
}

func TestStatus_SubStatusSetsAreDisjoint(t *testing.T) {
	seen := map[SubStatus]Status{}
	for _, s := range Statuses() {
		for _, sub := range s.SubStatuses() {
			owner, dup := seen[sub]
			assert.False(t, dup, "%q listed under %q and %q", sub, owner, s)
			seen[sub] = s
		}
	}
	assert.Len(t, seen, len(allSubStatuses()))
}

func TestStatus_OpenClosed(t *testing.T) {
	for _, s := range Statuses() {
		want := Open
		if s == StatusClosed || s == StatusConverted {
			want = Closed
		}
		assert.Equal(t, want, s.OpenClosed(), string(s))
	}
	assert.Equal(t, Open, Status("Unknown").OpenClosed())
}

func TestStatus_Allows(t *testing.T) {
	assert.True(t, StatusActive.Allows(SubStatusHot))
	assert.True(t, StatusActive.Allows(""))
	assert.False(t, StatusActive.Allows(SubStatusSold))
	assert.True(t, StatusConverted.Allows(SubStatusSold))
	assert.False(t, Status("Nope").Allows(SubStatusHot))
}

func TestVocabulary(t *testing.T) {
	v := Vocabulary()
	require.Len(t, v, 5)
	assert.Equal(t, StatusActive, v[0].Status)
	assert.Equal(t, Closed, v[4].OpenClosed)
	assert.Contains(t, v[1].SubStatuses, SubStatusNegotiating)
}

func TestLead_Validate(t *testing.T) {
	before := created.Add(-time.Hour)
	after := created.Add(time.Hour)

	tests := []struct {
		name   string
		mutate func(*Lead)
		fields []string
	}{
		{"valid", func(*Lead) {}, nil},
		{"first contact after creation", func(l *Lead) { l.FirstContactedDateTime = &after }, nil},
		{"sub-status within status", func(l *Lead) { l.LeadSubStatus = SubStatusWarm }, nil},
		{"missing serial", func(l *Lead) { l.SerialNumber = " " }, []string{FieldSerialNumber}},
		{"unknown status", func(l *Lead) { l.LeadStatus = "Pending"; l.Normalize() }, []string{FieldLeadStatus}},
		{
			"unknown status with sub-status",
			func(l *Lead) {
				l.LeadStatus = "Pending"
				l.LeadSubStatus = SubStatusSold
				l.Normalize()
			},
			[]string{FieldLeadStatus, FieldLeadSubStatus},
		},
		{"sub-status of another status", func(l *Lead) { l.LeadSubStatus = SubStatusSold }, []string{FieldLeadSubStatus}},
		{"stale openClosed", func(l *Lead) { l.LeadStatus = StatusClosed }, []string{FieldOpenClosed}},
		{"first contact before creation", func(l *Lead) { l.FirstContactedDateTime = &before }, []string{FieldFirstContactedDateTime}},
		{
			"every violation reported",
			func(l *Lead) {
				l.LeadSubStatus = SubStatusBooked
				l.FirstContactedDateTime = &before
			},
			[]string{FieldLeadSubStatus, FieldFirstContactedDateTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLead()
			tt.mutate(&l)
			err := l.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))
			assert.Equal(t, tt.fields, fieldNames(err))
		})
	}
}

func TestLead_CloneIsDeep(t *testing.T) {
	contacted := created.Add(time.Hour)
	score := 72.5
	l := validLead()
	l.FirstContactedDateTime = &contacted
	l.AIScore = &score

	c := l.Clone()
	*c.FirstContactedDateTime = created.Add(48 * time.Hour)
	*c.AIScore = 10

	assert.Equal(t, contacted, *l.FirstContactedDateTime)
	assert.Equal(t, 72.5, *l.AIScore)
}

func TestLead_WithEditableKeepsIdentity(t *testing.T) {
	stored := validLead()
	incoming := validLead()
	incoming.SerialNumber = "999"
	incoming.CreatedDateTime = created.Add(24 * time.Hour)
	incoming.LeadStatus = StatusConverted
	incoming.OpenClosed = Open
	incoming.City = "Dubai"

	got := stored.WithEditable(incoming)
	assert.Equal(t, "010", got.SerialNumber)
	assert.Equal(t, created, got.CreatedDateTime)
	assert.Equal(t, Closed, got.OpenClosed)
	assert.Equal(t, "Dubai", got.City)
}

func TestLead_SetField(t *testing.T) {
	l := validLead()

	require.NoError(t, l.SetField(FieldLeadSubStatus, "Sold"))
	assert.Equal(t, SubStatusSold, l.LeadSubStatus, "stored verbatim even when inconsistent")

	require.NoError(t, l.SetField(FieldCity, "Abu Dhabi"))
	require.NoError(t, l.SetField(FieldFirstContactedDateTime, "2025-01-11T08:30:00Z"))
	require.NoError(t, l.SetField(FieldAIScore, json.Number("81.5")))
	require.NoError(t, l.SetField(FieldComment, nil))

	assert.Equal(t, "Abu Dhabi", l.City)
	assert.Equal(t, time.Date(2025, time.January, 11, 8, 30, 0, 0, time.UTC), *l.FirstContactedDateTime)
	assert.Equal(t, 81.5, *l.AIScore)
	assert.Empty(t, l.Comment)

	require.NoError(t, l.SetField(FieldFirstContactedDateTime, ""))
	assert.Nil(t, l.FirstContactedDateTime)
}

func TestLead_SetFieldRejects(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"serial is immutable", FieldSerialNumber, "011"},
		{"created is immutable", FieldCreatedDateTime, time.Now()},
		{"openClosed is derived", FieldOpenClosed, "Closed"},
		{"unknown field", "favouriteColour", "red"},
		{"wrong type", FieldCity, 42},
		{"bad timestamp", FieldFirstContactedDateTime, "yesterday"},
		{"bad score", FieldAIScore, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLead()
			before := l.Clone()
			err := l.SetField(tt.field, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))
			assert.Equal(t, before, l)
		})
	}
}

func TestCreateLeadRequest_ToLeadDefaultsStatus(t *testing.T) {
	l := CreateLeadRequest{SerialNumber: "021", FirstName: "Omar"}.ToLead()
	assert.Equal(t, StatusActive, l.LeadStatus)
	assert.True(t, l.CreatedDateTime.IsZero())

	l = CreateLeadRequest{SerialNumber: "022", LeadStatus: StatusConverted, CreatedDateTime: &created}.ToLead()
	assert.Equal(t, StatusConverted, l.LeadStatus)
	assert.Equal(t, created, l.CreatedDateTime)
}

func TestLeadListFilters_ToCriteria(t *testing.T) {
	c, err := LeadListFilters{
		Query:       "fatima",
		LeadSource:  "Referral",
		City:        "all",
		CreatedFrom: "2025-01-01",
		CreatedTo:   "2025-01-31",
	}.ToCriteria()
	require.NoError(t, err)

	assert.Equal(t, "fatima", c.Query)
	assert.Equal(t, "Referral", c.Discrete[FieldLeadSource])
	require.Contains(t, c.Dates, FieldCreatedDateTime)
	assert.NotContains(t, c.Dates, FieldFirstContactedDateTime)

	r := c.Dates[FieldCreatedDateTime]
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *r.From)
	assert.Equal(t, time.Date(2025, time.January, 31, 23, 59, 59, 999999999, time.UTC), *r.To)

	_, err = LeadListFilters{FirstContactedTo: "31/01/2025"}.ToCriteria()
	require.Error(t, err)
	assert.Equal(t, []string{FieldFirstContactedDateTime}, fieldNames(err))
}

func TestQueryEngine_ReferralAndText(t *testing.T) {
	leads := []Lead{
		{SerialNumber: "001", FirstName: "Fatima", LastName: "Al Zahra", LeadSource: "Website", LeadStatus: StatusActive},
		{SerialNumber: "002", FirstName: "Fatima", LastName: "Khan", LeadSource: "Referral", LeadStatus: StatusActive},
		{SerialNumber: "003", FirstName: "Omar", LastName: "Haddad", LeadSource: "Referral", LeadStatus: StatusFollowUp},
	}

	e := NewQueryEngine()
	c := query.Criteria{Query: "Fatima", Discrete: map[string]string{FieldLeadSource: "Referral"}}
	require.NoError(t, e.Validate(c))

	got := e.Apply(leads, c)
	require.Len(t, got, 1)
	assert.Equal(t, "002", got[0].SerialNumber)
}

func TestQueryEngine_RejectsUnknownStatus(t *testing.T) {
	err := NewQueryEngine().Validate(query.Criteria{Discrete: map[string]string{FieldLeadStatus: "Pending"}})
	require.Error(t, err)
	assert.Equal(t, []string{FieldLeadStatus}, fieldNames(err))

	assert.NoError(t, NewQueryEngine().Validate(query.Criteria{Discrete: map[string]string{FieldLeadStatus: "follow-up"}}))
}
