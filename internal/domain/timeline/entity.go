// internal/domain/timeline/entity.go
package timeline

import (
	"strings"
	"time"

	"dealer-crm-service/internal/domain/lead"
	xerrors "dealer-crm-service/internal/pkg/errors"
)

type Category string

const (
	CategoryCreated      Category = "created"
	CategoryContacted    Category = "contacted"
	CategoryTestDrive    Category = "test_drive"
	CategoryQuotation    Category = "quotation"
	CategoryFollowUp     Category = "follow_up"
	CategoryStatusChange Category = "status_change"
	CategoryNote         Category = "note"
	CategoryClosed       Category = "closed"
)

// SystemActor is recorded when no user is attached to an event.
const SystemActor = "System"

var categoryLabels = map[Category]string{
	CategoryCreated:      "Lead Created",
	CategoryContacted:    "Customer Contacted",
	CategoryTestDrive:    "Test Drive",
	CategoryQuotation:    "Quotation Sent",
	CategoryFollowUp:     "Follow-up",
	CategoryStatusChange: "Status Changed",
	CategoryNote:         "Note Added",
	CategoryClosed:       "Lead Closed",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the default action text for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

func Categories() []Category {
	return []Category{
		CategoryCreated, CategoryContacted, CategoryTestDrive, CategoryQuotation,
		CategoryFollowUp, CategoryStatusChange, CategoryNote, CategoryClosed,
	}
}

// Event is an immutable fact about a lead. ID and Sequence are assigned by
// the log on append.
type Event struct {
	ID              string      `json:"id" db:"id"`
	Sequence        uint64      `json:"sequence" db:"seq"`
	LeadID          string      `json:"leadId" db:"lead_id"`
	Timestamp       time.Time   `json:"timestamp" db:"occurred_at"`
	Actor           string      `json:"actor" db:"actor"`
	Action          string      `json:"action" db:"action"`
	Description     string      `json:"description,omitempty" db:"description"`
	Category        Category    `json:"category" db:"category"`
	ResultingStatus lead.Status `json:"resultingStatus,omitempty" db:"resulting_status"`
}

// Before orders events by timestamp, then by append sequence.
func (e Event) Before(other Event) bool {
	if !e.Timestamp.Equal(other.Timestamp) {
		return e.Timestamp.Before(other.Timestamp)
	}
	return e.Sequence < other.Sequence
}

// Prepare fills defaults and checks the event before it is appended.
func (e *Event) Prepare(now time.Time) error {
	e.LeadID = strings.TrimSpace(e.LeadID)
	e.Actor = strings.TrimSpace(e.Actor)
	if e.Actor == "" {
		e.Actor = SystemActor
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if strings.TrimSpace(e.Action) == "" {
		e.Action = e.Category.Label()
	}

	verr := &xerrors.ValidationError{}
	if e.LeadID == "" {
		verr.Add("leadId", "is required")
	}
	if !e.Category.Valid() {
		verr.Add("category", "%q is not a known category", e.Category)
	}
	if e.ResultingStatus != "" && !e.ResultingStatus.Valid() {
		verr.Add("resultingStatus", "%q is not a known status", e.ResultingStatus)
	}
	return verr.OrNil()
}
