package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

// AlertsHandler exposes rule registration, alert queries, and
// acknowledgement.
type AlertsHandler struct {
	monitor *usecase.MonitorService
}

func NewAlertsHandler(monitor *usecase.MonitorService) *AlertsHandler {
	return &AlertsHandler{monitor: monitor}
}

// AddRule registers a threshold rule. Structural validation happens here,
// not at evaluation time.
func (h *AlertsHandler) AddRule(c *gin.Context) {
	var req AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	rule, err := h.monitor.AddRule(c.Request.Context(), domain.AlertRule{
		MetricName: req.MetricName,
		Comparator: domain.Comparator(req.Comparator),
		Threshold:  req.Threshold,
		Severity:   domain.Severity(req.Severity),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrInvalidRuleDefinition, Status: http.StatusBadRequest, Message: "invalid alert rule definition"},
		}, http.StatusInternalServerError, "failed to register rule")
		return
	}

	c.JSON(http.StatusCreated, AlertRulePayload{
		ID:         rule.ID,
		MetricName: rule.MetricName,
		Comparator: string(rule.Comparator),
		Threshold:  rule.Threshold,
		Severity:   string(rule.Severity),
	})
}

// Query returns alerts matching the optional severity, acknowledged, and
// since filters, oldest first.
func (h *AlertsHandler) Query(c *gin.Context) {
	var filter domain.AlertFilter

	if raw := c.Query("severity"); raw != "" {
		severity := domain.Severity(raw)
		if !severity.Valid() {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown severity"))
			return
		}
		filter.Severity = &severity
	}

	if raw := c.Query("acknowledged"); raw != "" {
		switch raw {
		case "true":
			v := true
			filter.Acknowledged = &v
		case "false":
			v := false
			filter.Acknowledged = &v
		default:
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "acknowledged must be true or false"))
			return
		}
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "since must be RFC3339"))
			return
		}
		filter.Since = &since
	}

	alerts, err := h.monitor.QueryAlerts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to query alerts"))
		return
	}

	payloads := make([]AlertPayload, 0, len(alerts))
	for _, alert := range alerts {
		payloads = append(payloads, newAlertPayload(alert))
	}

	c.JSON(http.StatusOK, AlertListResponse{Alerts: payloads, Total: len(payloads)})
}

// Acknowledge marks an alert acknowledged. Re-acknowledging is a success;
// an unknown id is not.
func (h *AlertsHandler) Acknowledge(c *gin.Context) {
	alertID := c.Param("id")
	if alertID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "alert id is required"))
		return
	}

	if err := h.monitor.AcknowledgeAlert(c.Request.Context(), alertID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrAlertNotFound, Status: http.StatusNotFound, Message: "alert not found"},
		}, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "alert acknowledged"})
}
