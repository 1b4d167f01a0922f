// internal/domain/timeline/dto.go
package timeline

import (
	"strings"
	"time"

	"dealer-crm-service/internal/domain/lead"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"
)

type RecordEventRequest struct {
	Category        Category    `json:"category" binding:"required"`
	Action          string      `json:"action" binding:"max=120"`
	Description     string      `json:"description"`
	Timestamp       *time.Time  `json:"timestamp"`
	ResultingStatus lead.Status `json:"resultingStatus"`
}

// ToEvent builds an event for leadID. actor comes from the caller's identity.
func (r RecordEventRequest) ToEvent(leadID, actor string) Event {
	e := Event{
		LeadID:          leadID,
		Actor:           actor,
		Action:          r.Action,
		Description:     r.Description,
		Category:        r.Category,
		ResultingStatus: r.ResultingStatus,
	}
	if r.Timestamp != nil {
		e.Timestamp = *r.Timestamp
	}
	return e
}

type JourneyFilters struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	Actor    string `form:"actor"`
	From     string `form:"from"`
	To       string `form:"to"`
}

func (f JourneyFilters) ToCriteria() (query.Criteria, error) {
	c := query.Criteria{
		Query:    f.Query,
		Discrete: map[string]string{"category": f.Category, "actor": f.Actor},
	}

	verr := &xerrors.ValidationError{}
	var r query.DateRange
	if s := strings.TrimSpace(f.From); s != "" {
		t, err := lead.ParseTime(s)
		if err != nil {
			verr.Add("from", "%v", err)
		} else {
			r.From = &t
		}
	}
	if s := strings.TrimSpace(f.To); s != "" {
		t, err := lead.ParseTime(s)
		if err != nil {
			verr.Add("to", "%v", err)
		} else {
			if len(s) == len(time.DateOnly) {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			r.To = &t
		}
	}
	if r.Active() {
		c.Dates = map[string]query.DateRange{"timestamp": r}
	}
	return c, verr.OrNil()
}
