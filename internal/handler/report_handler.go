package handler

import (
	"net/http"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create handles POST /reports/:id where id names the reported trail.
func (h *ReportHandler) Create(c *gin.Context) {
	var req service.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// List accepts ?state=a,b as well as repeated state parameters.
func (h *ReportHandler) List(c *gin.Context) {
	states := strings.Join(c.QueryArray("state"), ",")

	reports, err := h.reportService.List(c.Request.Context(), states)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportList(reports))
}

func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reportService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Update(c *gin.Context) {
	var req service.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	report, err := h.reportService.Update(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reportService.Delete(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReportHandler) ListByTrail(c *gin.Context) {
	reports, err := h.reportService.ListByTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportList(reports))
}

func (h *ReportHandler) ListByUser(c *gin.Context) {
	reports, err := h.reportService.ListByUser(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportList(reports))
}

func reportList(reports []models.Report) []models.Report {
	if reports == nil {
		return []models.Report{}
	}
	return reports
}
