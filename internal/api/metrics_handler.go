package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"postureai/internal"
	"postureai/internal/cache"
	"postureai/internal/export"
	"postureai/internal/metrics"
)

const dateLayout = "2006-01-02"

// MetricsHandler exposes usage rollups, per-report cost and cache
// administration.
type MetricsHandler struct {
	metrics       *metrics.Service
	cache         *cache.Service
	promptVersion string
	log           *internal.Logger
}

// NewMetricsHandler creates a metrics handler. Cache pruning keeps only
// entries tagged with promptVersion.
func NewMetricsHandler(metricsService *metrics.Service, cacheService *cache.Service, promptVersion string, log *internal.Logger) *MetricsHandler {
	return &MetricsHandler{
		metrics:       metricsService,
		cache:         cacheService,
		promptVersion: promptVersion,
		log:           log.Component("MetricsHandler"),
	}
}

// GetDaily recomputes and returns the rollup for one date (default today)
func (h *MetricsHandler) GetDaily(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	daily, err := h.metrics.AggregateDaily(c.Request.Context(), date)
	if err != nil {
		h.log.Error("failed to aggregate daily metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate metrics"})
		return
	}
	c.JSON(http.StatusOK, daily)
}

// GetDailyRange returns stored rollups between from and to inclusive
func (h *MetricsHandler) GetDailyRange(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	rows, err := h.metrics.DailyRange(c.Request.Context(), from, to)
	if err != nil {
		h.log.Error("failed to list daily metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": rows})
}

// ExportDailyRange downloads the rollup range as a spreadsheet
func (h *MetricsHandler) ExportDailyRange(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	rows, err := h.metrics.DailyRange(c.Request.Context(), from, to)
	if err != nil {
		h.log.Error("failed to list daily metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list metrics"})
		return
	}

	data, err := export.DailyMetricsXLSX(rows)
	if err != nil {
		h.log.Error("failed to build metrics export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := "ai-metrics-" + from.Format(dateLayout) + "-" + to.Format(dateLayout) + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetReportCost returns the spend breakdown for one report
func (h *MetricsHandler) GetReportCost(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	breakdown, err := h.metrics.ReportCost(c.Request.Context(), reportID)
	if err != nil {
		h.log.Error("failed to compute report cost: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute report cost"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetCacheStats returns entry count, hit totals and estimated cost saved
func (h *MetricsHandler) GetCacheStats(c *gin.Context) {
	stats, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		h.log.Error("failed to read cache stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cache stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PruneCache drops every cache entry from older prompt versions
func (h *MetricsHandler) PruneCache(c *gin.Context) {
	pruned, err := h.cache.Prune(c.Request.Context(), h.promptVersion)
	if err != nil {
		h.log.Error("failed to prune cache: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prune cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pruned": pruned, "prompt_version": h.promptVersion})
}

func (h *MetricsHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
