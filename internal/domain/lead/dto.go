// internal/domain/lead/dto.go
package lead

import (
	"strings"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"
)

// CreateLeadRequest is the intake payload. leadStatus defaults to Active.
type CreateLeadRequest struct {
	SerialNumber           string     `json:"serialNumber" binding:"required,max=64"`
	CreatedDateTime        *time.Time `json:"createdDateTime"`
	FirstContactedDateTime *time.Time `json:"firstContactedDateTime"`

	FirstName  string `json:"firstName" binding:"max=100"`
	MiddleName string `json:"middleName" binding:"max=100"`
	LastName   string `json:"lastName" binding:"max=100"`
	Phone      string `json:"phone" binding:"max=32"`
	Email      string `json:"email" binding:"omitempty,email,max=255"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Branch     string `json:"branch"`

	LeadStatus    Status    `json:"leadStatus"`
	LeadSubStatus SubStatus `json:"leadSubStatus"`

	LeadChannel          string `json:"leadChannel"`
	LeadSource           string `json:"leadSource"`
	CampaignName         string `json:"campaignName"`
	CampaignSource       string `json:"campaignSource"`
	SocialOrganicChannel string `json:"socialOrganicChannel"`

	ModelOfInterest string `json:"modelOfInterest"`
	Trim            string `json:"trim"`
	ModelYear       string `json:"modelYear"`
	Category        string `json:"category"`
	RequestType     string `json:"requestType"`
	CurrentVehicle  string `json:"currentVehicle"`
	IncomeRange     string `json:"incomeRange"`
	PurchasePeriod  string `json:"purchasePeriod"`
	PaymentMethod   string `json:"paymentMethod"`

	AssignedAgent   string   `json:"assignedAgent"`
	SalesConsultant string   `json:"salesConsultant"`
	AIScore         *float64 `json:"aiScore"`
	Comment         string   `json:"comment"`
}

// ToLead builds the record to store. A missing creation time is left zero
// for the store to stamp.
func (r CreateLeadRequest) ToLead() Lead {
	l := Lead{
		SerialNumber:           r.SerialNumber,
		FirstContactedDateTime: r.FirstContactedDateTime,
		FirstName:              r.FirstName,
		MiddleName:             r.MiddleName,
		LastName:               r.LastName,
		Phone:                  r.Phone,
		Email:                  r.Email,
		Address:                r.Address,
		City:                   r.City,
		Branch:                 r.Branch,
		LeadStatus:             r.LeadStatus,
		LeadSubStatus:          r.LeadSubStatus,
		LeadChannel:            r.LeadChannel,
		LeadSource:             r.LeadSource,
		CampaignName:           r.CampaignName,
		CampaignSource:         r.CampaignSource,
		SocialOrganicChannel:   r.SocialOrganicChannel,
		ModelOfInterest:        r.ModelOfInterest,
		Trim:                   r.Trim,
		ModelYear:              r.ModelYear,
		Category:               r.Category,
		RequestType:            r.RequestType,
		CurrentVehicle:         r.CurrentVehicle,
		IncomeRange:            r.IncomeRange,
		PurchasePeriod:         r.PurchasePeriod,
		PaymentMethod:          r.PaymentMethod,
		AssignedAgent:          r.AssignedAgent,
		SalesConsultant:        r.SalesConsultant,
		AIScore:                r.AIScore,
		Comment:                r.Comment,
	}
	if r.CreatedDateTime != nil {
		l.CreatedDateTime = *r.CreatedDateTime
	}
	if l.LeadStatus == "" {
		l.LeadStatus = StatusActive
	}
	return l.Clone()
}

// LeadListFilters binds the lead table's search bar and filter dropdowns.
type LeadListFilters struct {
	Query           string `form:"q"`
	LeadStatus      string `form:"leadStatus"`
	LeadSubStatus   string `form:"leadSubStatus"`
	OpenClosed      string `form:"openClosed"`
	LeadSource      string `form:"leadSource"`
	LeadChannel     string `form:"leadChannel"`
	City            string `form:"city"`
	AssignedAgent   string `form:"assignedAgent"`
	SalesConsultant string `form:"salesConsultant"`
	RequestType     string `form:"requestType"`

	CreatedFrom        string `form:"createdFrom"`
	CreatedTo          string `form:"createdTo"`
	FirstContactedFrom string `form:"firstContactedFrom"`
	FirstContactedTo   string `form:"firstContactedTo"`
}

// ToCriteria converts bound filters into engine criteria. A date-only upper
// bound covers the whole day.
func (f LeadListFilters) ToCriteria() (query.Criteria, error) {
	c := query.Criteria{
		Query: f.Query,
		Discrete: map[string]string{
			FieldLeadStatus:      f.LeadStatus,
			FieldLeadSubStatus:   f.LeadSubStatus,
			FieldOpenClosed:      f.OpenClosed,
			FieldLeadSource:      f.LeadSource,
			FieldLeadChannel:     f.LeadChannel,
			FieldCity:            f.City,
			FieldAssignedAgent:   f.AssignedAgent,
			FieldSalesConsultant: f.SalesConsultant,
			FieldRequestType:     f.RequestType,
		},
		Dates: map[string]query.DateRange{},
	}

	verr := &xerrors.ValidationError{}
	ranges := []struct {
		field    string
		from, to string
	}{
		{FieldCreatedDateTime, f.CreatedFrom, f.CreatedTo},
		{FieldFirstContactedDateTime, f.FirstContactedFrom, f.FirstContactedTo},
	}
	for _, r := range ranges {
		from, err := parseBound(r.from, false)
		if err != nil {
			verr.Add(r.field, "invalid range start: %v", err)
		}
		to, err := parseBound(r.to, true)
		if err != nil {
			verr.Add(r.field, "invalid range end: %v", err)
		}
		if from != nil || to != nil {
			c.Dates[r.field] = query.DateRange{From: from, To: to}
		}
	}

	return c, verr.OrNil()
}

func parseBound(s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	if upper && len(s) == len(time.DateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
