package timeline

import (
	"time"

	"dealer-crm-service/internal/pkg/query"
)

// NewQueryEngine configures journey filtering over category, actor, text
// and timestamp.
func NewQueryEngine() *query.Engine[Event] {
	categories := make([]string, 0, len(categoryLabels))
	for _, c := range Categories() {
		categories = append(categories, string(c))
	}

	return query.New(query.Config[Event]{
		Searchable: []query.Field[Event]{
			{Name: "action", Value: func(e Event) string { return e.Action }},
			{Name: "description", Value: func(e Event) string { return e.Description }},
			{Name: "actor", Value: func(e Event) string { return e.Actor }},
		},
		Discrete: []query.Dimension[Event]{
			{Name: "category", Value: func(e Event) string { return string(e.Category) }, Allowed: categories},
			{Name: "actor", Value: func(e Event) string { return e.Actor }},
		},
		Dates: []query.DateField[Event]{
			{Name: "timestamp", Value: func(e Event) (time.Time, bool) { return e.Timestamp, true }},
		},
	})
}
