package view

import "dealer-crm-service/internal/domain/lead"

// LeadTable is the id of the main leads table.
const LeadTable = "leads"

// DefaultLeadColumns is the initial column layout of the leads table.
func DefaultLeadColumns() []string {
	return []string{
		ColumnAction,
		lead.FieldSerialNumber,
		lead.FieldCreatedDateTime,
		lead.FieldFirstName,
		lead.FieldLastName,
		lead.FieldPhone,
		lead.FieldEmail,
		lead.FieldCity,
		lead.FieldLeadStatus,
		lead.FieldLeadSubStatus,
		lead.FieldOpenClosed,
		lead.FieldLeadChannel,
		lead.FieldLeadSource,
		lead.FieldModelOfInterest,
		lead.FieldAssignedAgent,
		lead.FieldSalesConsultant,
		lead.FieldAIScore,
		lead.FieldFirstContactedDateTime,
		ColumnLeadJourney,
	}
}
