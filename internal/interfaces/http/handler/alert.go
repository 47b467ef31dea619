package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	alertingapp "github.com/shopline/backend/internal/application/alerting"
)

// AlertHandler handles admin alert API endpoints
type AlertHandler struct {
	BaseHandler
	alertService *alertingapp.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *alertingapp.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// List godoc
// @Summary      List alerts
// @Description  Retrieve alerts newest first, optionally limited to unseen ones
// @Tags         alerts
// @Produce      json
// @Param        unseen query bool false "Only return unseen alerts"
// @Param        limit query int false "Maximum number of alerts to return" default(50)
// @Success      200 {object} dto.Response{data=[]alertingapp.AlertResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	var filter alertingapp.AlertListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	alerts, err := h.alertService.List(c.Request.Context(), filter.Unseen, filter.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, alerts)
}

// CountUnseen godoc
// @Summary      Count unseen alerts
// @Description  Returns the number of alerts not yet acknowledged, for the admin badge
// @Tags         alerts
// @Produce      json
// @Success      200 {object} dto.Response{data=map[string]int64}
// @Router       /admin/alerts/unseen-count [get]
func (h *AlertHandler) CountUnseen(c *gin.Context) {
	count, err := h.alertService.CountUnseen(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"count": count})
}

// MarkSeen godoc
// @Summary      Mark an alert as seen
// @Description  Acknowledge a single alert
// @Tags         alerts
// @Produce      json
// @Param        id path string true "Alert ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/alerts/{id}/seen [put]
func (h *AlertHandler) MarkSeen(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID format")
		return
	}

	if err := h.alertService.MarkSeen(c.Request.Context(), alertID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// MarkSeenBatch godoc
// @Summary      Mark alerts as seen in batch
// @Description  Acknowledge a list of alerts, or every unseen alert when all is set
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        request body alertingapp.MarkSeenRequest true "Alert IDs, or all"
// @Success      200 {object} dto.Response{data=map[string]int64}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/alerts/seen [put]
func (h *AlertHandler) MarkSeenBatch(c *gin.Context) {
	var req alertingapp.MarkSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.All {
		updated, err := h.alertService.MarkAllSeen(c.Request.Context())
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, gin.H{"updated": updated})
		return
	}

	var updated int64
	for _, raw := range req.IDs {
		alertID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid alert ID format")
			return
		}
		if err := h.alertService.MarkSeen(c.Request.Context(), alertID); err != nil {
			h.HandleDomainError(c, err)
			return
		}
		updated++
	}

	h.Success(c, gin.H{"updated": updated})
}

// RegisterRoutes registers all alert routes
func (h *AlertHandler) RegisterRoutes(rg *gin.RouterGroup) {
	alerts := rg.Group("/admin/alerts")
	{
		alerts.GET("", h.List)
		alerts.GET("/unseen-count", h.CountUnseen)
		alerts.PUT("/seen", h.MarkSeenBatch)
		alerts.PUT("/:id/seen", h.MarkSeen)
	}
}
