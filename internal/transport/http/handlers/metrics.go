package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

// MetricsHandler exposes observation ingestion and range queries.
type MetricsHandler struct {
	monitor *usecase.MonitorService
}

func NewMetricsHandler(monitor *usecase.MonitorService) *MetricsHandler {
	return &MetricsHandler{monitor: monitor}
}

// Record ingests an externally-pushed observation.
func (h *MetricsHandler) Record(c *gin.Context) {
	var req MetricRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	metric := domain.Metric{
		Name:  req.Name,
		Value: req.Value,
		Unit:  req.Unit,
		Tags:  req.Tags,
	}
	if req.Timestamp != nil {
		metric.Timestamp = *req.Timestamp
	}

	if err := h.monitor.Record(c.Request.Context(), metric); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to record metric"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "metric recorded"})
}

// Range returns observations for a name inside an inclusive window. The
// bounds default to the last hour.
func (h *MetricsHandler) Range(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "metric name is required"))
		return
	}

	end := time.Now()
	start := end.Add(-time.Hour)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "start must be RFC3339"))
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "end must be RFC3339"))
			return
		}
		end = parsed
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "range end precedes start"))
		return
	}

	metrics, err := h.monitor.Metrics(c.Request.Context(), name, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to query metrics"))
		return
	}

	payloads := make([]MetricPayload, 0, len(metrics))
	for _, metric := range metrics {
		payloads = append(payloads, newMetricPayload(metric))
	}

	c.JSON(http.StatusOK, MetricListResponse{Name: name, Metrics: payloads, Total: len(payloads)})
}
