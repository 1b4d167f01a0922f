package query

import (
	"errors"
	"slices"
	"testing"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name   string
	Phone  string
	Source string
	City   string
	Met    *time.Time
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 10, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func newEngine() *Engine[contact] {
	return New(Config[contact]{
		Searchable: []Field[contact]{
			{Name: "name", Value: func(c contact) string { return c.Name }},
			{Name: "phone", Value: func(c contact) string { return c.Phone }},
		},
		Discrete: []Dimension[contact]{
			{Name: "source", Value: func(c contact) string { return c.Source }, Allowed: []string{"Referral", "Website", "Walk-in"}},
			{Name: "city", Value: func(c contact) string { return c.City }},
		},
		Dates: []DateField[contact]{
			{Name: "met", Value: func(c contact) (time.Time, bool) {
				if c.Met == nil {
					return time.Time{}, false
				}
				return *c.Met, true
			}},
		},
	})
}

func fixtures() []contact {
	return []contact{
		{Name: "Fatima Al Zahra", Phone: "0501112222", Source: "Website", City: "Dubai", Met: ptr(day(1))},
		{Name: "Fatima Khan", Phone: "0503334444", Source: "Referral", City: "Sharjah", Met: ptr(day(5))},
		{Name: "Omar Haddad", Phone: "0505556666", Source: "Referral", City: "Dubai"},
	}
}

func names(cs []contact) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestEngine_TextAndDiscreteCompose(t *testing.T) {
	e := newEngine()
	got := e.Apply(fixtures(), Criteria{
		Query:    "Fatima",
		Discrete: map[string]string{"source": "Referral"},
	})
	assert.Equal(t, []string{"Fatima Khan"}, names(got))
}

func TestEngine_Match(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"empty criteria matches all", Criteria{}, []string{"Fatima Al Zahra", "Fatima Khan", "Omar Haddad"}},
		{"query is case insensitive", Criteria{Query: "  oMaR "}, []string{"Omar Haddad"}},
		{"query matches phone substring", Criteria{Query: "3334"}, []string{"Fatima Khan"}},
		{"all sentinel", Criteria{Discrete: map[string]string{"source": "ALL", "city": ""}}, []string{"Fatima Al Zahra", "Fatima Khan", "Omar Haddad"}},
		{"discrete is case insensitive", Criteria{Discrete: map[string]string{"city": "dubai"}}, []string{"Fatima Al Zahra", "Omar Haddad"}},
		{"unknown dimension matches nothing", Criteria{Discrete: map[string]string{"agent": "Hala"}}, []string{}},
		{"inclusive date bounds", Criteria{Dates: map[string]DateRange{"met": {From: ptr(day(1)), To: ptr(day(5))}}}, []string{"Fatima Al Zahra", "Fatima Khan"}},
		{"open lower bound", Criteria{Dates: map[string]DateRange{"met": {To: ptr(day(2))}}}, []string{"Fatima Al Zahra"}},
		{"inactive range ignored", Criteria{Dates: map[string]DateRange{"met": {}}}, []string{"Fatima Al Zahra", "Fatima Khan", "Omar Haddad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(e.Apply(fixtures(), tt.c)))
		})
	}
}

func TestEngine_FilterIsIdempotentAndOrderPreserving(t *testing.T) {
	e := newEngine()
	criteria := []Criteria{
		{},
		{Query: "fatima"},
		{Discrete: map[string]string{"source": "Referral"}},
		{Query: "05", Dates: map[string]DateRange{"met": {From: ptr(day(2))}}},
	}

	for _, c := range criteria {
		once := e.Apply(fixtures(), c)
		twice := e.Apply(once, c)
		assert.Equal(t, once, twice)

		// relative order of the input is preserved
		idx := -1
		for _, got := range once {
			pos := slices.IndexFunc(fixtures(), func(f contact) bool { return f.Name == got.Name })
			assert.Greater(t, pos, idx)
			idx = pos
		}
	}
}

func TestEngine_FilterIsLazyAndRestartable(t *testing.T) {
	e := newEngine()
	seq := e.Filter(slices.Values(fixtures()), Criteria{Discrete: map[string]string{"source": "Referral"}})

	var first []contact
	for c := range seq {
		first = append(first, c)
		break
	}
	require.Len(t, first, 1)
	assert.Equal(t, "Fatima Khan", first[0].Name)

	assert.Len(t, slices.Collect(seq), 2)
	assert.Len(t, slices.Collect(seq), 2)
}

func TestEngine_Validate(t *testing.T) {
	e := newEngine()

	require.NoError(t, e.Validate(Criteria{Discrete: map[string]string{"source": "referral", "city": "Anywhere"}}))
	require.NoError(t, e.Validate(Criteria{Discrete: map[string]string{"source": "all"}}))

	err := e.Validate(Criteria{
		Discrete: map[string]string{"source": "Billboard", "agent": "Hala"},
		Dates: map[string]DateRange{
			"met":     {From: ptr(day(9)), To: ptr(day(1))},
			"created": {From: ptr(day(1))},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerrors.ErrValidationFailed))

	fields := xerrors.FieldsOf(err)
	got := make([]string, 0, len(fields))
	for _, f := range fields {
		got = append(got, f.Field)
	}
	assert.Equal(t, []string{"agent", "source", "created", "met"}, got)
}
