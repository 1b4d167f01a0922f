// internal/domain/lead/entity.go
package lead

import (
	"strings"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"
)

type Lead struct {
	SerialNumber           string     `json:"serialNumber" db:"serial_number"`
	CreatedDateTime        time.Time  `json:"createdDateTime" db:"created_at"`
	FirstContactedDateTime *time.Time `json:"firstContactedDateTime,omitempty" db:"first_contacted_at"`

	// Contact
	FirstName  string `json:"firstName" db:"first_name"`
	MiddleName string `json:"middleName,omitempty" db:"middle_name"`
	LastName   string `json:"lastName" db:"last_name"`
	Phone      string `json:"phone" db:"phone"`
	Email      string `json:"email,omitempty" db:"email"`
	Address    string `json:"address,omitempty" db:"address"`
	City       string `json:"city,omitempty" db:"city"`
	Branch     string `json:"branch,omitempty" db:"branch"`

	// Classification
	LeadStatus    Status     `json:"leadStatus" db:"lead_status"`
	LeadSubStatus SubStatus  `json:"leadSubStatus,omitempty" db:"lead_sub_status"`
	OpenClosed    OpenClosed `json:"openClosed" db:"open_closed"`

	// Sourcing
	LeadChannel          string `json:"leadChannel,omitempty" db:"lead_channel"`
	LeadSource           string `json:"leadSource,omitempty" db:"lead_source"`
	CampaignName         string `json:"campaignName,omitempty" db:"campaign_name"`
	CampaignSource       string `json:"campaignSource,omitempty" db:"campaign_source"`
	SocialOrganicChannel string `json:"socialOrganicChannel,omitempty" db:"social_organic_channel"`

	// Interest
	ModelOfInterest string `json:"modelOfInterest,omitempty" db:"model_of_interest"`
	Trim            string `json:"trim,omitempty" db:"trim_level"`
	ModelYear       string `json:"modelYear,omitempty" db:"model_year"`
	Category        string `json:"category,omitempty" db:"category"`
	RequestType     string `json:"requestType,omitempty" db:"request_type"`
	CurrentVehicle  string `json:"currentVehicle,omitempty" db:"current_vehicle"`
	IncomeRange     string `json:"incomeRange,omitempty" db:"income_range"`
	PurchasePeriod  string `json:"purchasePeriod,omitempty" db:"purchase_period"`
	PaymentMethod   string `json:"paymentMethod,omitempty" db:"payment_method"`

	// Assignment
	AssignedAgent   string `json:"assignedAgent,omitempty" db:"assigned_agent"`
	SalesConsultant string `json:"salesConsultant,omitempty" db:"sales_consultant"`

	// Supplied by an external scoring system, never computed here
	AIScore *float64 `json:"aiScore,omitempty" db:"ai_score"`

	Comment string `json:"comment,omitempty" db:"comment"`
}

// Clone returns a deep copy of l.
func (l Lead) Clone() Lead {
	out := l
	if l.FirstContactedDateTime != nil {
		t := *l.FirstContactedDateTime
		out.FirstContactedDateTime = &t
	}
	if l.AIScore != nil {
		s := *l.AIScore
		out.AIScore = &s
	}
	return out
}

// Normalize re-derives computed fields. openClosed only ever follows leadStatus.
func (l *Lead) Normalize() {
	l.SerialNumber = strings.TrimSpace(l.SerialNumber)
	l.OpenClosed = l.LeadStatus.OpenClosed()
}

// WithEditable returns from's editable fields on top of l's identity.
func (l Lead) WithEditable(from Lead) Lead {
	out := from.Clone()
	out.SerialNumber = l.SerialNumber
	out.CreatedDateTime = l.CreatedDateTime
	out.Normalize()
	return out
}

// FullName joins the non-empty name parts.
func (l Lead) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.FirstName, l.MiddleName, l.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks every record invariant and reports all violations at once.
func (l Lead) Validate() error {
	verr := &xerrors.ValidationError{}

	if strings.TrimSpace(l.SerialNumber) == "" {
		verr.Add(FieldSerialNumber, "is required")
	}
	if l.CreatedDateTime.IsZero() {
		verr.Add(FieldCreatedDateTime, "is required")
	}

	if !l.LeadStatus.Valid() {
		verr.Add(FieldLeadStatus, "%q is not a known status", l.LeadStatus)
	}
	// An unknown status allows no sub-status.
	if !l.LeadStatus.Allows(l.LeadSubStatus) {
		verr.Add(FieldLeadSubStatus, "%q is not allowed for status %q", l.LeadSubStatus, l.LeadStatus)
	}

	if l.OpenClosed != l.LeadStatus.OpenClosed() {
		verr.Add(FieldOpenClosed, "must be %q for status %q", l.LeadStatus.OpenClosed(), l.LeadStatus)
	}

	if l.FirstContactedDateTime != nil && !l.CreatedDateTime.IsZero() &&
		l.FirstContactedDateTime.Before(l.CreatedDateTime) {
		verr.Add(FieldFirstContactedDateTime, "must not be earlier than createdDateTime")
	}

	return verr.OrNil()
}
