// internal/handlers/lead/lead.go
package lead

import (
	"net/http"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	"dealer-crm-service/internal/middleware"
	"dealer-crm-service/internal/pkg/response"
	leadservice "dealer-crm-service/internal/service/lead"
	timelineservice "dealer-crm-service/internal/service/timeline"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService     *leadservice.LeadService
	timelineService *timelineservice.TimelineService
}

func NewLeadHandler(leadService *leadservice.LeadService, timelineService *timelineservice.TimelineService) *LeadHandler {
	return &LeadHandler{
		leadService:     leadService,
		timelineService: timelineService,
	}
}

// ListLeads applies the table's search text and filters.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	var filters lead.LeadListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	criteria, err := filters.ToCriteria()
	if err != nil {
		response.FromError(c, "invalid filters", err)
		return
	}

	leads, err := h.leadService.ListLeads(c.Request.Context(), criteria)
	if err != nil {
		response.FromError(c, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved successfully", gin.H{
		"leads": leads,
		"total": len(leads),
	})
}

func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.leadService.CreateLead(c.Request.Context(), req.ToLead(), middleware.GetActor(c))
	if err != nil {
		response.FromError(c, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created successfully", result)
}

func (h *LeadHandler) GetLead(c *gin.Context) {
	result, err := h.leadService.GetLead(c.Request.Context(), c.Param("serial"))
	if err != nil {
		response.FromError(c, "lead not found", err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved successfully", result)
}

// GetStatuses returns the status vocabulary for the edit form.
func (h *LeadHandler) GetStatuses(c *gin.Context) {
	response.Success(c, http.StatusOK, "statuses retrieved successfully", lead.Vocabulary())
}

// GetJourney returns the lead's timeline, oldest first.
func (h *LeadHandler) GetJourney(c *gin.Context) {
	var filters timeline.JourneyFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	criteria, err := filters.ToCriteria()
	if err != nil {
		response.FromError(c, "invalid filters", err)
		return
	}

	events, err := h.timelineService.Journey(c.Request.Context(), c.Param("serial"), criteria)
	if err != nil {
		response.FromError(c, "failed to load journey", err)
		return
	}

	response.Success(c, http.StatusOK, "journey retrieved successfully", gin.H{
		"leadId": c.Param("serial"),
		"events": events,
	})
}

func (h *LeadHandler) RecordEvent(c *gin.Context) {
	var req timeline.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	event, err := h.timelineService.RecordEvent(c.Request.Context(), c.Param("serial"), req, middleware.GetActor(c))
	if err != nil {
		response.FromError(c, "failed to record event", err)
		return
	}

	response.Success(c, http.StatusCreated, "event recorded successfully", event)
}
