package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"postureai/app"
	"postureai/domain/assess"
	"postureai/domain/core"
	"postureai/internal"
	"postureai/internal/report"
	"postureai/ports"
)

// ReportHandler drives report generation and artifact retrieval
type ReportHandler struct {
	reports   *app.ReportService
	artifacts ports.ArtifactRepository
	renderer  *report.Renderer
	structure assess.Structure
	log       *internal.Logger
}

// NewReportHandler creates a report handler. An empty structure disables
// generation; retrieval of previously stored artifacts still works.
func NewReportHandler(reports *app.ReportService, artifacts ports.ArtifactRepository, renderer *report.Renderer, structure assess.Structure, log *internal.Logger) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		artifacts: artifacts,
		renderer:  renderer,
		structure: structure,
		log:       log.Component("ReportHandler"),
	}
}

type generateReportRequest struct {
	ReportID   string            `json:"report_id"`
	Responses  []assess.Response `json:"responses" binding:"required"`
	SectionIDs []string          `json:"section_ids"`
}

// GenerateReport runs the section pipeline and synthesis for a submission
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	if len(h.structure.Sections) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Question library not configured"})
		return
	}

	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "responses are required"})
		return
	}

	reportID := uuid.New()
	if req.ReportID != "" {
		parsed, err := uuid.Parse(req.ReportID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
			return
		}
		reportID = parsed
	}

	responses := make(map[core.QuestionID]assess.Response, len(req.Responses))
	for _, r := range req.Responses {
		responses[r.QuestionID] = r
	}

	sectionIDs := make([]core.SectionID, 0, len(req.SectionIDs))
	for _, id := range req.SectionIDs {
		sectionIDs = append(sectionIDs, core.SectionID(id))
	}

	result, err := h.reports.Generate(c.Request.Context(), app.ReportRequest{
		ReportID:   reportID,
		Structure:  h.structure,
		Responses:  responses,
		SectionIDs: sectionIDs,
	})
	if err != nil {
		h.log.Error("report generation failed for %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report generation failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReportArtifacts returns the stored section and synthesis artifacts
func (h *ReportHandler) GetReportArtifacts(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	sections, err := h.artifacts.ListSections(c.Request.Context(), reportID)
	if err != nil {
		h.log.Error("failed to list section artifacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artifacts"})
		return
	}
	if len(sections) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	// Synthesis may be absent for partially generated reports
	synthesis, err := h.artifacts.GetSynthesis(c.Request.Context(), reportID)
	if err != nil {
		synthesis = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"report_id": reportID,
		"sections":  sections,
		"synthesis": synthesis,
	})
}

// PreviewReport renders the stored artifacts as an HTML document
func (h *ReportHandler) PreviewReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	sections, err := h.artifacts.ListSections(c.Request.Context(), reportID)
	if err != nil {
		h.log.Error("failed to list section artifacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artifacts"})
		return
	}
	if len(sections) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	synthesis, err := h.artifacts.GetSynthesis(c.Request.Context(), reportID)
	if err != nil {
		synthesis = nil
	}

	html, err := h.renderer.HTML(sections, synthesis, nil)
	if err != nil {
		h.log.Error("failed to render report %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
