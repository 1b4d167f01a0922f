// internal/handlers/table/table.go
package table

import (
	"net/http"

	"dealer-crm-service/internal/middleware"
	"dealer-crm-service/internal/pkg/response"
	tableservice "dealer-crm-service/internal/service/table"

	"github.com/gin-gonic/gin"
)

type OpenDraftRequest struct {
	LeadID string `json:"leadId" binding:"required"`
}

type SetFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

type TableHandler struct {
	registry *tableservice.Registry
}

func NewTableHandler(registry *tableservice.Registry) *TableHandler {
	return &TableHandler{registry: registry}
}

func (h *TableHandler) table(c *gin.Context) (*tableservice.Table, bool) {
	t, err := h.registry.Table(c.Request.Context(), c.Param("table"))
	if err != nil {
		response.FromError(c, "table not found", err)
		return nil, false
	}
	return t, true
}

func (h *TableHandler) GetColumns(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, "columns retrieved successfully", gin.H{
		"columns": t.View.Columns(),
		"visible": t.View.VisibleColumns(),
	})
}

func (h *TableHandler) ToggleColumn(c *gin.Context) {
	columns, err := h.registry.ToggleColumn(c.Request.Context(), c.Param("table"), c.Param("column"))
	if err != nil {
		response.FromError(c, "failed to toggle column", err)
		return
	}

	response.Success(c, http.StatusOK, "column toggled successfully", gin.H{"columns": columns})
}

func (h *TableHandler) GetDraft(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "draft retrieved successfully", t.Draft.Snapshot())
}

// OpenDraft selects a row for editing, discarding any unsaved draft.
func (h *TableHandler) OpenDraft(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}

	var req OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	snap, err := t.Draft.Open(c.Request.Context(), req.LeadID, middleware.GetActor(c))
	if err != nil {
		response.FromError(c, "failed to open draft", err)
		return
	}

	response.Success(c, http.StatusOK, "draft opened successfully", snap)
}

func (h *TableHandler) SetField(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}

	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	snap, err := t.Draft.SetField(req.Field, req.Value)
	if err != nil {
		response.FromError(c, "failed to update draft", err)
		return
	}

	response.Success(c, http.StatusOK, "draft updated successfully", snap)
}

func (h *TableHandler) SaveDraft(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}

	saved, err := t.Draft.Save(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.FromError(c, "failed to save draft", err)
		return
	}

	response.Success(c, http.StatusOK, "lead saved successfully", saved)
}

func (h *TableHandler) CancelDraft(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}

	t.Draft.Cancel()
	response.Success(c, http.StatusOK, "draft cancelled", t.Draft.Snapshot())
}
