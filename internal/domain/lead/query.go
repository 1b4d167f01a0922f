package lead

import (
	"time"

	"dealer-crm-service/internal/pkg/query"
)

func statusNames() []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// NewQueryEngine configures the lead table's search and filters.
func NewQueryEngine() *query.Engine[Lead] {
	text := func(name string, fn func(Lead) string) query.Field[Lead] {
		return query.Field[Lead]{Name: name, Value: fn}
	}
	dim := func(name string, fn func(Lead) string, allowed ...string) query.Dimension[Lead] {
		return query.Dimension[Lead]{Name: name, Value: fn, Allowed: allowed}
	}

	return query.New(query.Config[Lead]{
		Searchable: []query.Field[Lead]{
			text("name", Lead.FullName),
			text(FieldPhone, func(l Lead) string { return l.Phone }),
			text(FieldEmail, func(l Lead) string { return l.Email }),
			text(FieldLeadChannel, func(l Lead) string { return l.LeadChannel }),
			text(FieldLeadSource, func(l Lead) string { return l.LeadSource }),
		},
		Discrete: []query.Dimension[Lead]{
			dim(FieldLeadStatus, func(l Lead) string { return string(l.LeadStatus) }, statusNames()...),
			dim(FieldLeadSubStatus, func(l Lead) string { return string(l.LeadSubStatus) }, allSubStatuses()...),
			dim(FieldOpenClosed, func(l Lead) string { return string(l.OpenClosed) }, string(Open), string(Closed)),
			dim(FieldLeadSource, func(l Lead) string { return l.LeadSource }),
			dim(FieldLeadChannel, func(l Lead) string { return l.LeadChannel }),
			dim(FieldCity, func(l Lead) string { return l.City }),
			dim(FieldAssignedAgent, func(l Lead) string { return l.AssignedAgent }),
			dim(FieldSalesConsultant, func(l Lead) string { return l.SalesConsultant }),
			dim(FieldRequestType, func(l Lead) string { return l.RequestType }),
		},
		Dates: []query.DateField[Lead]{
			{Name: FieldCreatedDateTime, Value: func(l Lead) (time.Time, bool) {
				return l.CreatedDateTime, !l.CreatedDateTime.IsZero()
			}},
			{Name: FieldFirstContactedDateTime, Value: func(l Lead) (time.Time, bool) {
				if l.FirstContactedDateTime == nil {
					return time.Time{}, false
				}
				return *l.FirstContactedDateTime, true
			}},
		},
	})
}
