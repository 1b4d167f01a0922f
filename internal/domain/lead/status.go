package lead

import "slices"

type Status string

const (
	StatusActive    Status = "Active"
	StatusFollowUp  Status = "Follow-up"
	StatusInactive  Status = "Inactive"
	StatusClosed    Status = "Closed"
	StatusConverted Status = "Converted"
)

type SubStatus string

const (
	SubStatusHot  SubStatus = "Hot Lead"
	SubStatusWarm SubStatus = "Warm Lead"
	SubStatusCold SubStatus = "Cold Lead"

	SubStatusQualified          SubStatus = "Qualified"
	SubStatusNegotiating        SubStatus = "Negotiating"
	SubStatusTestDriveScheduled SubStatus = "Test Drive Scheduled"
	SubStatusAwaitingResponse   SubStatus = "Awaiting Response"

	SubStatusUnqualified  SubStatus = "Unqualified"
	SubStatusNotReachable SubStatus = "Not Reachable"
	SubStatusLostInterest SubStatus = "Lost Interest"

	SubStatusLostToCompetitor   SubStatus = "Lost to Competitor"
	SubStatusPurchasedElsewhere SubStatus = "Purchased Elsewhere"
	SubStatusDuplicate          SubStatus = "Duplicate"

	SubStatusBooked    SubStatus = "Booked"
	SubStatusSold      SubStatus = "Sold"
	SubStatusDelivered SubStatus = "Delivered"
)

type OpenClosed string

const (
	Open   OpenClosed = "Open"
	Closed OpenClosed = "Closed"
)

// statuses keeps display order; subStatuses holds the disjoint set allowed
// under each status.
var (
	statuses = []Status{StatusActive, StatusFollowUp, StatusInactive, StatusClosed, StatusConverted}

	subStatuses = map[Status][]SubStatus{
		StatusActive:    {SubStatusHot, SubStatusWarm, SubStatusCold},
		StatusFollowUp:  {SubStatusQualified, SubStatusNegotiating, SubStatusTestDriveScheduled, SubStatusAwaitingResponse},
		StatusInactive:  {SubStatusUnqualified, SubStatusNotReachable, SubStatusLostInterest},
		StatusClosed:    {SubStatusLostToCompetitor, SubStatusPurchasedElsewhere, SubStatusDuplicate},
		StatusConverted: {SubStatusBooked, SubStatusSold, SubStatusDelivered},
	}
)

// Statuses returns every lead status in display order.
func Statuses() []Status {
	return slices.Clone(statuses)
}

func (s Status) Valid() bool {
	_, ok := subStatuses[s]
	return ok
}

// SubStatuses returns the sub-statuses allowed under s, nil for an unknown status.
func (s Status) SubStatuses() []SubStatus {
	return slices.Clone(subStatuses[s])
}

// Allows reports whether sub may accompany s. An empty sub-status is always allowed.
func (s Status) Allows(sub SubStatus) bool {
	if sub == "" {
		return true
	}
	return slices.Contains(subStatuses[s], sub)
}

// OpenClosed derives the open/closed bucket of a status.
func (s Status) OpenClosed() OpenClosed {
	if s == StatusClosed || s == StatusConverted {
		return Closed
	}
	return Open
}

// StatusOption is one entry of the status vocabulary served to edit forms.
type StatusOption struct {
	Status      Status      `json:"status"`
	OpenClosed  OpenClosed  `json:"openClosed"`
	SubStatuses []SubStatus `json:"subStatuses"`
}

func Vocabulary() []StatusOption {
	out := make([]StatusOption, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusOption{Status: s, OpenClosed: s.OpenClosed(), SubStatuses: s.SubStatuses()})
	}
	return out
}

func allSubStatuses() []string {
	var out []string
	for _, s := range statuses {
		for _, sub := range subStatuses[s] {
			out = append(out, string(sub))
		}
	}
	return out
}
