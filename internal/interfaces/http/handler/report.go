package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/pos/backend/internal/application/report"
)

// DownloadURLHeader carries the presigned URL of a stored export
const DownloadURLHeader = "X-Download-URL"

// ReportHandler handles dashboard and export endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// TopProductsQuery holds the query parameters of the product ranking
type TopProductsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Dashboard godoc
// @Summary      Get the dashboard
// @Description  Revenue, profit, expenses and stock figures. Defaults to the current month.
// @Tags         reports
// @Produce      json
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=reportapp.DashboardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var filter reportapp.DateRangeFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// TopProducts godoc
// @Summary      Rank products by revenue
// @Tags         reports
// @Produce      json
// @Param        limit query int false "Number of products" default(10)
// @Success      200 {object} dto.Response{data=[]reportapp.ProductRankingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/top-products [get]
func (h *ReportHandler) TopProducts(c *gin.Context) {
	var query TopProductsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	ranking, err := h.reportService.TopProducts(c.Request.Context(), query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ranking)
}

// DailySales godoc
// @Summary      Daily sales totals
// @Tags         reports
// @Produce      json
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]reportapp.DailySalesResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/daily-sales [get]
func (h *ReportHandler) DailySales(c *gin.Context) {
	var filter reportapp.DateRangeFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	days, err := h.reportService.DailySales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, days)
}

// Export godoc
// @Summary      Export sales or products
// @Description  Streams a CSV or PDF file. When object storage is configured the file is also stored and its presigned URL is returned in X-Download-URL.
// @Tags         reports
// @Accept       json
// @Produce      text/csv
// @Produce      application/pdf
// @Param        request body reportapp.ExportRequest true "Export request"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/exports [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req reportapp.ExportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.reportService.Export(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.DownloadURL != "" {
		c.Header(DownloadURLHeader, result.DownloadURL)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
