// internal/app/seed.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	leadservice "dealer-crm-service/internal/service/lead"
	timelineservice "dealer-crm-service/internal/service/timeline"

	"go.uber.org/zap"
)

type demoLead struct {
	lead   lead.Lead
	events []timeline.RecordEventRequest
}

func demoTime(day, hour int) time.Time {
	return time.Date(2025, time.January, day, hour, 0, 0, 0, time.UTC)
}

func demoLeads() []demoLead {
	contacted := func(day, hour int) *time.Time {
		t := demoTime(day, hour)
		return &t
	}
	event := func(c timeline.Category, desc string, day, hour int) timeline.RecordEventRequest {
		return timeline.RecordEventRequest{Category: c, Description: desc, Timestamp: contacted(day, hour)}
	}

	return []demoLead{
		{
			lead: lead.Lead{
				SerialNumber: "001", CreatedDateTime: demoTime(2, 9), FirstContactedDateTime: contacted(2, 11),
				FirstName: "Fatima", LastName: "Al Zahra", Phone: "+971501234001", Email: "fatima.alzahra@example.ae",
				City: "Dubai", Branch: "Sheikh Zayed Road",
				LeadStatus: lead.StatusActive, LeadSubStatus: lead.SubStatusWarm,
				LeadChannel: "Website", LeadSource: "Website", ModelOfInterest: "Patrol", Trim: "LE Platinum",
				ModelYear: "2025", RequestType: "Test Drive", AssignedAgent: "Sara Ahmed", SalesConsultant: "Omar Haddad",
			},
			events: []timeline.RecordEventRequest{
				event(timeline.CategoryContacted, "Introductory call, interested in the Patrol", 2, 11),
			},
		},
		{
			lead: lead.Lead{
				SerialNumber: "002", CreatedDateTime: demoTime(4, 10), FirstContactedDateTime: contacted(4, 12),
				FirstName: "Fatima", LastName: "Khan", Phone: "+971501234002", Email: "fatima.khan@example.ae",
				City: "Abu Dhabi", Branch: "Mussafah",
				LeadStatus: lead.StatusFollowUp, LeadSubStatus: lead.SubStatusTestDriveScheduled,
				LeadChannel: "Phone", LeadSource: "Referral", ModelOfInterest: "X-Trail", ModelYear: "2025",
				RequestType: "Test Drive", PaymentMethod: "Finance", AssignedAgent: "Hala Nasser", SalesConsultant: "Omar Haddad",
			},
			events: []timeline.RecordEventRequest{
				event(timeline.CategoryContacted, "Referred by an existing customer", 4, 12),
				event(timeline.CategoryTestDrive, "Test drive booked for Saturday", 6, 15),
			},
		},
		{
			lead: lead.Lead{
				SerialNumber: "003", CreatedDateTime: demoTime(5, 14),
				FirstName: "Khalid", LastName: "Mansour", Phone: "+971501234003",
				City: "Sharjah", Branch: "Industrial Area",
				LeadStatus: lead.StatusInactive, LeadSubStatus: lead.SubStatusNotReachable,
				LeadChannel: "WhatsApp", LeadSource: "Social Media", CampaignName: "New Year Offers",
				SocialOrganicChannel: "Instagram", ModelOfInterest: "Sunny", RequestType: "Quotation",
				AssignedAgent: "Sara Ahmed",
			},
			events: []timeline.RecordEventRequest{
				event(timeline.CategoryFollowUp, "No answer on two attempts", 7, 10),
			},
		},
		{
			lead: lead.Lead{
				SerialNumber: "004", CreatedDateTime: demoTime(8, 9), FirstContactedDateTime: contacted(8, 9),
				FirstName: "Amira", LastName: "Saleh", Phone: "+971501234004", Email: "amira.saleh@example.ae",
				City: "Dubai", Branch: "Deira",
				LeadStatus: lead.StatusConverted, LeadSubStatus: lead.SubStatusSold,
				LeadChannel: "Walk-in", LeadSource: "Showroom", ModelOfInterest: "Kicks", Trim: "SV",
				ModelYear: "2024", RequestType: "Purchase", PaymentMethod: "Cash",
				AssignedAgent: "Hala Nasser", SalesConsultant: "Yousef Darwish",
			},
			events: []timeline.RecordEventRequest{
				event(timeline.CategoryQuotation, "Quotation for Kicks SV", 8, 11),
				event(timeline.CategoryNote, "Customer paid in full", 10, 16),
			},
		},
	}
}

// SeedDemoData loads sample leads and their journeys. Leads that already
// exist are left alone.
func SeedDemoData(ctx context.Context, leads *leadservice.LeadService, journeys *timelineservice.TimelineService, logger *zap.Logger) error {
	seeded := 0
	for _, d := range demoLeads() {
		if _, err := leads.CreateLead(ctx, d.lead, timeline.SystemActor); err != nil {
			if errors.Is(err, xerrors.ErrDuplicateEntry) {
				continue
			}
			return fmt.Errorf("failed to seed lead %s: %w", d.lead.SerialNumber, err)
		}
		for _, e := range d.events {
			actor := d.lead.AssignedAgent
			if _, err := journeys.RecordEvent(ctx, d.lead.SerialNumber, e, actor); err != nil {
				return fmt.Errorf("failed to seed event for lead %s: %w", d.lead.SerialNumber, err)
			}
		}
		seeded++
	}

	logger.Info("demo data seeded", zap.Int("leads", seeded))
	return nil
}
