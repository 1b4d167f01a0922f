// internal/app/router.go
package app

import (
	"net/http"

	leadHandler "dealer-crm-service/internal/handlers/lead"
	tableHandler "dealer-crm-service/internal/handlers/table"
	"dealer-crm-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	LeadHandler     *leadHandler.LeadHandler
	TableHandler    *tableHandler.TableHandler
	ActorMiddleware *middleware.ActorMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	api.Use(h.ActorMiddleware.Handle())

	// ==================== Leads ====================
	leads := api.Group("/leads")
	{
		leads.GET("", h.LeadHandler.ListLeads)
		leads.POST("", h.LeadHandler.CreateLead)
		leads.GET("/statuses", h.LeadHandler.GetStatuses)
		leads.GET("/:serial", h.LeadHandler.GetLead)
		leads.GET("/:serial/journey", h.LeadHandler.GetJourney)
		leads.POST("/:serial/events", h.LeadHandler.RecordEvent)
	}

	// ==================== Tables ====================
	tables := api.Group("/tables/:table")
	{
		tables.GET("/columns", h.TableHandler.GetColumns)
		tables.POST("/columns/:column/toggle", h.TableHandler.ToggleColumn)

		tables.GET("/draft", h.TableHandler.GetDraft)
		tables.POST("/draft", h.TableHandler.OpenDraft)
		tables.PATCH("/draft", h.TableHandler.SetField)
		tables.DELETE("/draft", h.TableHandler.CancelDraft)
		tables.POST("/draft/save", h.TableHandler.SaveDraft)
	}
}
