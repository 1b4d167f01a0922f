package lead

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"
)

// Field names follow the JSON representation of Lead.
const (
	FieldSerialNumber           = "serialNumber"
	FieldCreatedDateTime        = "createdDateTime"
	FieldFirstContactedDateTime = "firstContactedDateTime"
	FieldFirstName              = "firstName"
	FieldMiddleName             = "middleName"
	FieldLastName               = "lastName"
	FieldPhone                  = "phone"
	FieldEmail                  = "email"
	FieldAddress                = "address"
	FieldCity                   = "city"
	FieldBranch                 = "branch"
	FieldLeadStatus             = "leadStatus"
	FieldLeadSubStatus          = "leadSubStatus"
	FieldOpenClosed             = "openClosed"
	FieldLeadChannel            = "leadChannel"
	FieldLeadSource             = "leadSource"
	FieldCampaignName           = "campaignName"
	FieldCampaignSource         = "campaignSource"
	FieldSocialOrganicChannel   = "socialOrganicChannel"
	FieldModelOfInterest        = "modelOfInterest"
	FieldTrim                   = "trim"
	FieldModelYear              = "modelYear"
	FieldCategory               = "category"
	FieldRequestType            = "requestType"
	FieldCurrentVehicle         = "currentVehicle"
	FieldIncomeRange            = "incomeRange"
	FieldPurchasePeriod         = "purchasePeriod"
	FieldPaymentMethod          = "paymentMethod"
	FieldAssignedAgent          = "assignedAgent"
	FieldSalesConsultant        = "salesConsultant"
	FieldAIScore                = "aiScore"
	FieldComment                = "comment"
)

func (l *Lead) stringFields() map[string]*string {
	return map[string]*string{
		FieldFirstName:            &l.FirstName,
		FieldMiddleName:           &l.MiddleName,
		FieldLastName:             &l.LastName,
		FieldPhone:                &l.Phone,
		FieldEmail:                &l.Email,
		FieldAddress:              &l.Address,
		FieldCity:                 &l.City,
		FieldBranch:               &l.Branch,
		FieldLeadChannel:          &l.LeadChannel,
		FieldLeadSource:           &l.LeadSource,
		FieldCampaignName:         &l.CampaignName,
		FieldCampaignSource:       &l.CampaignSource,
		FieldSocialOrganicChannel: &l.SocialOrganicChannel,
		FieldModelOfInterest:      &l.ModelOfInterest,
		FieldTrim:                 &l.Trim,
		FieldModelYear:            &l.ModelYear,
		FieldCategory:             &l.Category,
		FieldRequestType:          &l.RequestType,
		FieldCurrentVehicle:       &l.CurrentVehicle,
		FieldIncomeRange:          &l.IncomeRange,
		FieldPurchasePeriod:       &l.PurchasePeriod,
		FieldPaymentMethod:        &l.PaymentMethod,
		FieldAssignedAgent:        &l.AssignedAgent,
		FieldSalesConsultant:      &l.SalesConsultant,
		FieldComment:              &l.Comment,
	}
}

// SetField assigns one editable field by its JSON name. Values are stored
// as given after type coercion; record invariants are not checked here.
func (l *Lead) SetField(name string, value any) error {
	switch name {
	case FieldSerialNumber, FieldCreatedDateTime, FieldOpenClosed:
		return xerrors.Invalid(name, "field is not editable")
	case FieldLeadStatus:
		s, err := asString(name, value)
		if err != nil {
			return err
		}
		l.LeadStatus = Status(s)
		return nil
	case FieldLeadSubStatus:
		s, err := asString(name, value)
		if err != nil {
			return err
		}
		l.LeadSubStatus = SubStatus(s)
		return nil
	case FieldFirstContactedDateTime:
		t, err := asTime(name, value)
		if err != nil {
			return err
		}
		l.FirstContactedDateTime = t
		return nil
	case FieldAIScore:
		f, err := asFloat(name, value)
		if err != nil {
			return err
		}
		l.AIScore = f
		return nil
	}

	target, ok := l.stringFields()[name]
	if !ok {
		return xerrors.Invalid(name, "unknown field")
	}
	s, err := asString(name, value)
	if err != nil {
		return err
	}
	*target = s
	return nil
}

func asString(name string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case Status:
		return string(v), nil
	case SubStatus:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", xerrors.Invalid(name, "expected a string, got %T", value)
	}
}

func asTime(name string, value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return &v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		t := *v
		return &t, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		t, err := ParseTime(v)
		if err != nil {
			return nil, xerrors.Invalid(name, "%v", err)
		}
		return &t, nil
	default:
		return nil, xerrors.Invalid(name, "expected a timestamp, got %T", value)
	}
}

func asFloat(name string, value any) (*float64, error) {
	var f float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, xerrors.Invalid(name, "%q is not a number", v)
		}
		f = parsed
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, xerrors.Invalid(name, "%q is not a number", v)
		}
		f = parsed
	default:
		return nil, xerrors.Invalid(name, "expected a number, got %T", value)
	}
	return &f, nil
}

// ParseTime accepts RFC 3339 timestamps and plain dates.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	return t, nil
}
