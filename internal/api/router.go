// Package api exposes the HTTP surface: report generation, intake
// recommendations and the operator admin endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers into a gin engine
func NewRouter(credentials *CredentialHandler, metrics *MetricsHandler, reports *ReportHandler, intakes *IntakeHandler) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/intake/recommend", intakes.Recommend)
		api.GET("/intake/sessions", intakes.ListSessions)
		api.GET("/intake/sessions/:id", intakes.GetSession)

		api.POST("/reports/generate", reports.GenerateReport)
		api.GET("/reports/:reportId/artifacts", reports.GetReportArtifacts)
		api.GET("/reports/:reportId/preview", reports.PreviewReport)
	}

	admin := router.Group("/admin")
	{
		admin.GET("/credentials", credentials.ListCredentials)
		admin.POST("/credentials", credentials.AddCredential)
		admin.POST("/credentials/test", credentials.TestRawKey)
		admin.POST("/credentials/:id/toggle", credentials.ToggleCredential)
		admin.POST("/credentials/:id/test", credentials.TestCredential)
		admin.DELETE("/credentials/:id", credentials.DeleteCredential)
		admin.GET("/diagnostics", credentials.Diagnostics)

		admin.GET("/metrics/daily", metrics.GetDaily)
		admin.GET("/metrics/range", metrics.GetDailyRange)
		admin.GET("/metrics/export", metrics.ExportDailyRange)
		admin.GET("/metrics/reports/:reportId/cost", metrics.GetReportCost)

		admin.GET("/cache/stats", metrics.GetCacheStats)
		admin.POST("/cache/prune", metrics.PruneCache)
	}

	return router
}
